package handler

import (
	"log/slog"
	"net/http"

	"workspacemanager/internal/events"
	"workspacemanager/internal/handler/sse"
	"workspacemanager/internal/httputil"
)

// EventsHandler streams workspace change events to the host UI
type EventsHandler struct {
	broadcaster *events.Broadcaster
	config      *sse.Config
	logger      *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(broadcaster *events.Broadcaster, config *sse.Config, logger *slog.Logger) *EventsHandler {
	if config == nil {
		config = sse.DefaultConfig()
	}
	return &EventsHandler{
		broadcaster: broadcaster,
		config:      config,
		logger:      logger,
	}
}

// Stream sends events until the client disconnects
// GET /api/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.RespondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	ch := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(ch)

	writer := sse.NewEventWriter(w, flusher)
	if err := writer.WriteComment("connected"); err != nil {
		return
	}

	keepAlive := sse.NewTickerKeepAlive(h.config.KeepAliveInterval)
	keepAliveDone := keepAlive.Start(writer, h.logger)
	defer keepAlive.Stop()

	h.logger.Info("SSE client connected",
		"remote_addr", r.RemoteAddr,
		"subscribers", h.broadcaster.Count(),
	)

	for {
		select {
		case <-r.Context().Done():
			h.logger.Info("SSE client disconnected", "remote_addr", r.RemoteAddr)
			return
		case <-keepAliveDone:
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := writer.WriteEvent(event); err != nil {
				h.logger.Debug("SSE write failed", "error", err)
				return
			}
		}
	}
}

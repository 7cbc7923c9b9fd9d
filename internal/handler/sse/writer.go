package sse

import (
	"fmt"
	"net/http"
	"sync"

	"workspacemanager/internal/events"
)

// EventWriter serializes event frames and keep-alive comments onto one stream
type EventWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewEventWriter creates a writer; w must support flushing
func NewEventWriter(w http.ResponseWriter, flusher http.Flusher) *EventWriter {
	return &EventWriter{w: w, flusher: flusher}
}

// WriteEvent writes one "event:/data:" frame and flushes
func (e *EventWriter) WriteEvent(event events.Event) error {
	data, err := events.MarshalEvent(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := fmt.Fprintf(e.w, "event: %s\ndata: %s\n\n", event.Type, data); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	e.flusher.Flush()
	return nil
}

// WriteComment writes an SSE comment line, ignored by clients
func (e *EventWriter) WriteComment(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := fmt.Fprintf(e.w, ": %s\n\n", text); err != nil {
		return fmt.Errorf("write comment: %w", err)
	}
	e.flusher.Flush()
	return nil
}

// WriteKeepAlive implements KeepAliveWriter
func (e *EventWriter) WriteKeepAlive() error {
	return e.WriteComment("keepalive")
}

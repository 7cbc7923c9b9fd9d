package handler

import (
	"net/http"

	"workspacemanager/internal/metrics"
)

// Handlers groups the HTTP handlers served by the API
type Handlers struct {
	Tree     *TreeHandler
	Profiles *ProfileHandler
	Events   *EventsHandler
}

// RegisterRoutes mounts every API route on mux
func RegisterRoutes(mux *http.ServeMux, h *Handlers) {
	mux.HandleFunc("GET /health", HealthCheck)
	mux.Handle("GET /metrics", metrics.Handler())

	// Tree routes
	mux.HandleFunc("GET /api/tree/children", h.Tree.GetChildren)
	mux.HandleFunc("GET /api/tree/node", h.Tree.GetNode)
	mux.HandleFunc("POST /api/tree/show", h.Tree.Show)
	mux.HandleFunc("POST /api/tree/hide", h.Tree.Hide)
	mux.HandleFunc("POST /api/tree/hide-siblings", h.Tree.HideSiblings)
	mux.HandleFunc("POST /api/tree/reset", h.Tree.Reset)
	mux.HandleFunc("POST /api/tree/refresh", h.Tree.Refresh)
	mux.HandleFunc("PUT /api/tree/filter", h.Tree.SetFilter)
	mux.HandleFunc("POST /api/tree/deleted", h.Tree.Deleted)
	mux.HandleFunc("GET /api/excludes", h.Tree.GetExcludes)

	// Profile routes
	mux.HandleFunc("GET /api/profiles", h.Profiles.ListProfiles)
	mux.HandleFunc("POST /api/profiles", h.Profiles.CreateProfile)
	mux.HandleFunc("GET /api/profiles/{id}", h.Profiles.GetProfile)
	mux.HandleFunc("POST /api/profiles/{id}/switch", h.Profiles.SwitchProfile)
	mux.HandleFunc("POST /api/profiles/{id}/copy", h.Profiles.CopyProfile)
	mux.HandleFunc("DELETE /api/profiles/{id}", h.Profiles.DeleteProfile)

	// Change events (SSE)
	mux.HandleFunc("GET /api/events", h.Events.Stream)
}

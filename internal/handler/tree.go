package handler

import (
	"log/slog"
	"net/http"

	"workspacemanager/internal/domain/services"
	"workspacemanager/internal/httputil"
)

// TreeHandler handles the file tree and hide/show requests
type TreeHandler struct {
	service services.VisibilityService
	logger  *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(service services.VisibilityService, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		service: service,
		logger:  logger,
	}
}

// filterRequest is the body of PUT /api/tree/filter
type filterRequest struct {
	ShowHidden *bool `json:"show_hidden"`
}

// GetChildren returns the children of a node
// GET /api/tree/children?path=
func (h *TreeHandler) GetChildren(w http.ResponseWriter, r *http.Request) {
	children, err := h.service.Children(r.Context(), &services.NodeRequest{
		Path: r.URL.Query().Get("path"),
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, children)
}

// GetNode returns a single node
// GET /api/tree/node?path=
func (h *TreeHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	node, err := h.service.Node(r.Context(), &services.NodeRequest{
		Path: r.URL.Query().Get("path"),
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, node)
}

// Show makes a node visible
// POST /api/tree/show
func (h *TreeHandler) Show(w http.ResponseWriter, r *http.Request) {
	var req services.NodeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.ShowFile(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// Hide hides a node and its subtree
// POST /api/tree/hide
func (h *TreeHandler) Hide(w http.ResponseWriter, r *http.Request) {
	var req services.NodeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.HideFile(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// HideSiblings hides every sibling of a node
// POST /api/tree/hide-siblings
func (h *TreeHandler) HideSiblings(w http.ResponseWriter, r *http.Request) {
	var req services.NodeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.HideSiblings(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// Reset clears every path entry
// POST /api/tree/reset
func (h *TreeHandler) Reset(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Reset(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// Refresh reloads hidden state from the settings store
// POST /api/tree/refresh
func (h *TreeHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Refresh(r.Context()); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetFilter toggles whether hidden nodes are listed
// PUT /api/tree/filter
func (h *TreeHandler) SetFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ShowHidden == nil {
		httputil.RespondError(w, http.StatusBadRequest, "show_hidden is required")
		return
	}

	if err := h.service.SetShowHidden(r.Context(), *req.ShowHidden); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]bool{"show_hidden": *req.ShowHidden})
}

// Deleted tells the tree a filesystem entry was removed
// POST /api/tree/deleted
func (h *TreeHandler) Deleted(w http.ResponseWriter, r *http.Request) {
	var req services.NodeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	parent, err := h.service.Deleted(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Debug("node deleted", "path", req.Path)
	httputil.RespondJSON(w, http.StatusOK, parent)
}

// GetExcludes returns the live exclude map
// GET /api/excludes
func (h *TreeHandler) GetExcludes(w http.ResponseWriter, r *http.Request) {
	excludes, err := h.service.Excludes(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, excludes)
}

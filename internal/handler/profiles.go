package handler

import (
	"log/slog"
	"net/http"

	"workspacemanager/internal/domain/services"
	"workspacemanager/internal/httputil"
)

// ProfileHandler handles the profile panel requests
type ProfileHandler struct {
	service services.ProfileService
	logger  *slog.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(service services.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		logger:  logger,
	}
}

type createProfileRequest struct {
	ID string `json:"id"`
}

// ListProfiles returns all profiles and the selection
// GET /api/profiles
func (h *ProfileHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListProfiles(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, list)
}

// CreateProfile switches to a new, empty profile
// POST /api/profiles
func (h *ProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, err := h.service.CreateProfile(r.Context(), req.ID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, profile)
}

// GetProfile returns one profile snapshot
// GET /api/profiles/{id}
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.GetProfile(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, profile)
}

// SwitchProfile selects a profile, creating it when unknown
// POST /api/profiles/{id}/switch
func (h *ProfileHandler) SwitchProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.SwitchProfile(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, profile)
}

// CopyProfile duplicates a profile under a new id
// POST /api/profiles/{id}/copy
func (h *ProfileHandler) CopyProfile(w http.ResponseWriter, r *http.Request) {
	var req services.CopyProfileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.SourceID = r.PathValue("id")

	profile, err := h.service.CopyProfile(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, profile)
}

// DeleteProfile removes a profile
// DELETE /api/profiles/{id}
func (h *ProfileHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProfile(r.Context(), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

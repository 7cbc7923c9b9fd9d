package handler

import (
	"errors"
	"net/http"

	"workspacemanager/internal/domain"
	"workspacemanager/internal/httputil"
)

// handleError maps domain errors to Problem Details responses.
// Lookup and conflict errors name the resource they failed on.
func handleError(w http.ResponseWriter, err error) {
	var (
		httpErr     domain.HTTPError
		notFound    *domain.NotFoundError
		conflictErr *domain.ConflictError
	)

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &notFound):
		httputil.RespondErrorWithExtras(w, http.StatusNotFound, err.Error(),
			resourceExtras(notFound.ResourceType, notFound.ResourceID))
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, err.Error(),
			resourceExtras(conflictErr.ResourceType, conflictErr.ResourceID))
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &httpErr):
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// resourceExtras returns the problem extensions for a failed lookup, e.g.
// {"resource": "node", "path": "src/a"} or {"resource": "profile", "profile_id": "focus"}
func resourceExtras(resource, id string) map[string]interface{} {
	if resource == "" {
		return nil
	}
	extras := map[string]interface{}{"resource": resource}
	switch resource {
	case "node", "directory":
		extras["path"] = id
	case "profile":
		extras["profile_id"] = id
	default:
		extras["id"] = id
	}
	return extras
}

package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"

	"workspacemanager/internal/config"
)

// ParseJSON decodes JSON from the request body into the given destination.
// Bodies are capped at config.MaxRequestBodyBytes and unknown fields are rejected.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxRequestBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}

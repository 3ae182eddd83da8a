package services

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gigbridge/backend/models"
)

// Shared helpers for the resource endpoints.

// callerFromContext returns the authenticated user placed in the request
// context by the auth middleware.
func callerFromContext(r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value("user").(*models.User)
	return user, ok
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeServiceError maps a typed service error to its HTTP status. Anything
// unrecognized is a dependency failure and surfaces as a generic 500.
func writeServiceError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("Operation failed", "error", err)
		http.Error(w, "Internal server error", status)
		return
	}
	http.Error(w, err.Error(), status)
}

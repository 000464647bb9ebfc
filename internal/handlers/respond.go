package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lifeline-project/lifeline-api/internal/models"
	"github.com/sirupsen/logrus"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.WithError(err).Error("Failed to encode response")
	}
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Validation problems carry their message to the caller; not-found stays
// generic so ownership information never leaks.
func writeServiceError(w http.ResponseWriter, err error) {
	var validation *models.ValidationError
	switch {
	case errors.As(err, &validation):
		http.Error(w, validation.Message, http.StatusBadRequest)
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	default:
		logrus.WithError(err).Error("Unhandled service error")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

package handlers

import (
	"net/http"

	"github.com/lifeline-project/lifeline-api/internal/services"
	"github.com/lifeline-project/lifeline-api/pkg/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportHandler serves the read-only reporting queries.
type ReportHandler struct {
	Service *services.ReportService
}

// NewReportHandler creates a new instance of ReportHandler.
func NewReportHandler(service *services.ReportService) *ReportHandler {
	return &ReportHandler{Service: service}
}

func (h *ReportHandler) callerID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return primitive.NilObjectID, false
	}
	return userID, true
}

// TimelineHandler returns the cumulative goal count by creation date.
func (h *ReportHandler) TimelineHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	timeline, err := h.Service.Timeline(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, timeline)
}

// StatusHandler returns the goal count per status.
func (h *ReportHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	distribution, err := h.Service.StatusDistribution(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, distribution)
}

// CategoriesHandler returns the goal count per category.
func (h *ReportHandler) CategoriesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	distribution, err := h.Service.CategoryDistribution(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, distribution)
}

// CompletionsHandler returns completed vs. pending goal counts.
func (h *ReportHandler) CompletionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	summary, err := h.Service.Completions(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

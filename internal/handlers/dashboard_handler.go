package handlers

import (
	"net/http"

	"github.com/lifeline-project/lifeline-api/internal/services"
	"github.com/lifeline-project/lifeline-api/pkg/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DashboardHandler handles the dashboard read model.
type DashboardHandler struct {
	Service *services.DashboardService
}

// NewDashboardHandler creates a new instance of DashboardHandler.
func NewDashboardHandler(service *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{Service: service}
}

// GetDashboardHandler returns the caller's dashboard summary.
func (h *DashboardHandler) GetDashboardHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	summary, err := h.Service.Summarize(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

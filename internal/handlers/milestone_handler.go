package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/lifeline-project/lifeline-api/internal/models"
	"github.com/lifeline-project/lifeline-api/internal/services"
	"github.com/lifeline-project/lifeline-api/pkg/middleware"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MilestoneHandler handles HTTP requests related to milestones.
type MilestoneHandler struct {
	Service *services.MilestoneService
}

// NewMilestoneHandler creates a new instance of MilestoneHandler.
func NewMilestoneHandler(service *services.MilestoneService) *MilestoneHandler {
	return &MilestoneHandler{Service: service}
}

// GetMilestonesHandler returns the full catalog flagged with the caller's
// unlock state.
func (h *MilestoneHandler) GetMilestonesHandler(w http.ResponseWriter, r *http.Request) {
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

	statuses, err := h.Service.ListMilestones(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if statuses == nil {
		statuses = []models.MilestoneStatus{}
	}
	writeJSON(w, http.StatusOK, statuses)
}

// CreateMilestoneHandler adds a rule definition to the catalog (admin only).
func (h *MilestoneHandler) CreateMilestoneHandler(w http.ResponseWriter, r *http.Request) {
	var milestone models.Milestone
	if err := json.NewDecoder(r.Body).Decode(&milestone); err != nil {
		logrus.WithError(err).Warn("Invalid milestone payload")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	created, err := h.Service.CreateMilestone(r.Context(), &milestone)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	logrus.WithField("milestoneID", created.ID.Hex()).Info("Milestone created by administrator")
	writeJSON(w, http.StatusCreated, created)
}

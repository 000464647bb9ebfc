package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lifeline-project/lifeline-api/internal/models"
	"github.com/lifeline-project/lifeline-api/internal/services"
	"github.com/lifeline-project/lifeline-api/pkg/middleware"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GoalHandler handles HTTP requests related to goals.
type GoalHandler struct {
	Service *services.GoalService
}

// NewGoalHandler creates a new instance of GoalHandler.
func NewGoalHandler(service *services.GoalService) *GoalHandler {
	return &GoalHandler{Service: service}
}

// CreateGoalHandler handles the creation of a new goal.
func (h *GoalHandler) CreateGoalHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input services.CreateGoalInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		logrus.WithError(err).Warn("Invalid request payload during goal creation")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		logrus.WithError(err).Error("Failed to convert user ID")
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	goal, err := h.Service.CreateGoal(r.Context(), userID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"userID": claims.UserID,
		"goalID": goal.ID.Hex(),
	}).Info("Goal successfully created")
	writeJSON(w, http.StatusCreated, goal)
}

// GetGoalHandler handles fetching a single owned goal by its ID.
func (h *GoalHandler) GetGoalHandler(w http.ResponseWriter, r *http.Request) {
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

	goal, err := h.Service.GetGoal(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

// UpdateGoalProgressHandler applies a progress update to an owned goal.
// A missing or malformed progress value keeps the prior value instead of
// failing; out-of-range values are clamped downstream.
func (h *GoalHandler) UpdateGoalProgressHandler(w http.ResponseWriter, r *http.Request) {
	goalID := mux.Vars(r)["id"]
	log := logrus.WithField("goalID", goalID)

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		log.Warn("Unauthorized access")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	var payload struct {
		Progress *int `json:"progress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.WithError(err).Warn("Malformed progress payload, retaining prior value")
		payload.Progress = nil
	}
	defer r.Body.Close()

	goal, err := h.Service.SetProgress(r.Context(), userID, goalID, payload.Progress)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	log.WithField("progress", goal.Progress).Info("Goal progress successfully updated")
	writeJSON(w, http.StatusOK, goal)
}

// GetGoalProgressHandler returns the progress history of an owned goal.
func (h *GoalHandler) GetGoalProgressHandler(w http.ResponseWriter, r *http.Request) {
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

	entries, err := h.Service.ProgressHistory(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []models.GoalProgressLog{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// GetGoalsHandler lists the caller's goals with optional search, category
// and status filters. "All" (or an absent parameter) means no constraint.
func (h *GoalHandler) GetGoalsHandler(w http.ResponseWriter, r *http.Request) {
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

	query := r.URL.Query()
	filter := models.GoalFilter{
		Search:   query.Get("search"),
		Category: withoutAllSentinel(query.Get("category")),
		Status:   withoutAllSentinel(query.Get("status")),
	}

	list, err := h.Service.ListGoals(r.Context(), userID, filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if list.Goals == nil {
		list.Goals = []models.Goal{}
	}
	if list.Categories == nil {
		list.Categories = []string{}
	}
	writeJSON(w, http.StatusOK, list)
}

// DeleteGoalHandler handles deleting an owned goal by its ID.
func (h *GoalHandler) DeleteGoalHandler(w http.ResponseWriter, r *http.Request) {
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

	if err := h.Service.DeleteGoal(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminDeleteGoalHandler deletes any user's goal (privileged override).
func (h *GoalHandler) AdminDeleteGoalHandler(w http.ResponseWriter, r *http.Request) {
	goalID := mux.Vars(r)["id"]

	if err := h.Service.AdminDeleteGoal(r.Context(), goalID); err != nil {
		writeServiceError(w, err)
		return
	}

	logrus.WithField("goalID", goalID).Info("Goal deleted by administrator")
	w.WriteHeader(http.StatusNoContent)
}

// AdminListUserGoalsHandler lists every goal of an arbitrary user.
func (h *GoalHandler) AdminListUserGoalsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	goals, err := h.Service.AdminListUserGoals(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if goals == nil {
		goals = []models.Goal{}
	}
	writeJSON(w, http.StatusOK, goals)
}

// withoutAllSentinel maps the public "All" filter value onto the internal
// "no constraint" case.
func withoutAllSentinel(value string) string {
	if value == models.FilterAll {
		return ""
	}
	return value
}

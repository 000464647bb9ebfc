package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/lifeline-project/lifeline-api/internal/models"
	"github.com/lifeline-project/lifeline-api/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// targetDateLayout is the calendar-date format accepted at the boundary.
const targetDateLayout = "2006-01-02"

// maxTargetDateDays is how far in the future a target date may lie.
const maxTargetDateDays = 365

// CreateGoalInput carries the user-supplied fields for a new goal.
type CreateGoalInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	TargetDate  string `json:"target_date"`
}

// GoalService owns the goal lifecycle: creation, progress mutation with
// status derivation, listing/filtering, and deletion. Every committed
// progress mutation is followed by a milestone evaluation for the owner.
type GoalService struct {
	goals     GoalStore
	logs      ProgressLogStore
	evaluator *MilestoneService
	now       func() time.Time
}

// NewGoalService creates a new instance of GoalService.
func NewGoalService(goals GoalStore, logs ProgressLogStore, evaluator *MilestoneService) *GoalService {
	return &GoalService{
		goals:     goals,
		logs:      logs,
		evaluator: evaluator,
		now:       time.Now,
	}
}

// CreateGoal validates the input and stores a new goal for the user.
// Progress starts at 0 and status is derived from it. An unusable target
// date (malformed, in the past, or more than a year out) is discarded
// rather than rejected.
func (s *GoalService) CreateGoal(ctx context.Context, userID primitive.ObjectID, input CreateGoalInput) (*models.Goal, error) {
	if input.Title == "" {
		return nil, models.NewValidationError("title", "title is required")
	}
	if input.Description == "" {
		return nil, models.NewValidationError("description", "description is required")
	}

	category := input.Category
	if category == "" {
		category = models.DefaultCategory
	}
	if _, ok := models.AllowedCategories[category]; !ok {
		return nil, models.NewValidationError("category", "unknown category")
	}

	goal := &models.Goal{
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Category:    category,
		Progress:    0,
		Status:      models.StatusForProgress(0),
		CreatedAt:   s.now(),
		TargetDate:  s.parseTargetDate(input.TargetDate),
	}

	created, err := s.goals.CreateGoal(ctx, goal)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	// Creation changes the total/category aggregates, so the catalog is
	// re-evaluated just like after a progress mutation.
	if err := s.evaluator.Evaluate(ctx, userID); err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Milestone evaluation failed after goal creation")
	}

	logger.Log.WithFields(map[string]interface{}{
		"user_id": userID.Hex(),
		"goal_id": created.ID.Hex(),
	}).Info("Goal created in service layer")
	return created, nil
}

// parseTargetDate keeps a target date only when it parses as a calendar
// date inside [today, today+365]; anything else is stored as absent.
func (s *GoalService) parseTargetDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}

	parsed, err := time.Parse(targetDateLayout, raw)
	if err != nil {
		logger.Log.WithField("target_date", raw).Warn("Discarding malformed target date")
		return nil
	}

	today, err := time.Parse(targetDateLayout, s.now().Format(targetDateLayout))
	if err != nil {
		return nil
	}
	if parsed.Before(today) || parsed.After(today.AddDate(0, 0, maxTargetDateDays)) {
		logger.Log.WithField("target_date", raw).Warn("Discarding out-of-window target date")
		return nil
	}
	return &parsed
}

// SetProgress applies a progress update to an owned goal. A nil newValue
// (absent or malformed input) retains the prior progress; anything else is
// clamped into [0,100]. Status is recomputed, the mutation is persisted
// and logged, and the owner's milestones are re-evaluated.
func (s *GoalService) SetProgress(ctx context.Context, userID primitive.ObjectID, goalID string, newValue *int) (*models.Goal, error) {
	goal, err := s.ownedGoal(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	progress := goal.Progress
	if newValue != nil {
		progress = models.ClampProgress(*newValue)
	}
	status := models.StatusForProgress(progress)

	updated, err := s.goals.UpdateGoalProgress(ctx, goal.ID, progress, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update goal progress: %w", err)
	}

	entry := &models.GoalProgressLog{
		GoalID:    goal.ID,
		Progress:  progress,
		CreatedAt: s.now(),
	}
	if err := s.logs.AppendEntry(ctx, entry); err != nil {
		// History is best-effort; the mutation itself is already committed.
		logger.Log.WithError(err).WithField("goal_id", goal.ID.Hex()).Warn("Failed to append progress history")
	}

	// Evaluation runs after the commit. A failure here is not surfaced to
	// the caller: unlocks are idempotent and the daily reconciler re-runs
	// the evaluation, so a missed unlock heals on the next pass.
	if err := s.evaluator.Evaluate(ctx, userID); err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Milestone evaluation failed after progress update")
	}

	return updated, nil
}

// GetGoal fetches a goal the user owns. A goal that exists but belongs to
// someone else is reported as not found.
func (s *GoalService) GetGoal(ctx context.Context, userID primitive.ObjectID, goalID string) (*models.Goal, error) {
	return s.ownedGoal(ctx, userID, goalID)
}

// ProgressHistory returns the append-only progress log of an owned goal,
// oldest entry first.
func (s *GoalService) ProgressHistory(ctx context.Context, userID primitive.ObjectID, goalID string) ([]models.GoalProgressLog, error) {
	goal, err := s.ownedGoal(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	entries, err := s.logs.EntriesByGoal(ctx, goal.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch progress history: %w", err)
	}
	return entries, nil
}

// ListGoals returns the user's goals matching the filter, plus the
// distinct categories present in the filtered result (not in the full
// catalog: filtering happens first, then distinct).
func (s *GoalService) ListGoals(ctx context.Context, userID primitive.ObjectID, filter models.GoalFilter) (*models.GoalList, error) {
	goals, err := s.goals.FindGoals(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}

	seen := make(map[string]struct{})
	var categories []string
	for _, goal := range goals {
		if _, ok := seen[goal.Category]; !ok {
			seen[goal.Category] = struct{}{}
			categories = append(categories, goal.Category)
		}
	}
	sort.Strings(categories)

	return &models.GoalList{Goals: goals, Categories: categories}, nil
}

// DeleteGoal removes an owned goal together with its progress history.
// Milestone unlocks already granted are never retracted.
func (s *GoalService) DeleteGoal(ctx context.Context, userID primitive.ObjectID, goalID string) error {
	goal, err := s.ownedGoal(ctx, userID, goalID)
	if err != nil {
		return err
	}
	return s.removeGoal(ctx, goal)
}

// AdminDeleteGoal removes any user's goal regardless of ownership.
func (s *GoalService) AdminDeleteGoal(ctx context.Context, goalID string) error {
	objID, err := primitive.ObjectIDFromHex(goalID)
	if err != nil {
		return models.ErrNotFound
	}

	goal, err := s.goals.GetGoalByID(ctx, objID)
	if err != nil {
		return err
	}
	return s.removeGoal(ctx, goal)
}

// GoalOwners returns the distinct users that currently own goals, used by
// the reconciliation sweep.
func (s *GoalService) GoalOwners(ctx context.Context) ([]primitive.ObjectID, error) {
	owners, err := s.goals.GoalOwners(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list goal owners: %w", err)
	}
	return owners, nil
}

// AdminListUserGoals returns every goal of the given user.
func (s *GoalService) AdminListUserGoals(ctx context.Context, userID primitive.ObjectID) ([]models.Goal, error) {
	goals, err := s.goals.FindGoals(ctx, userID, models.GoalFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list user goals: %w", err)
	}
	return goals, nil
}

func (s *GoalService) removeGoal(ctx context.Context, goal *models.Goal) error {
	if err := s.goals.DeleteGoal(ctx, goal.ID); err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	if err := s.logs.DeleteByGoal(ctx, goal.ID); err != nil {
		logger.Log.WithError(err).WithField("goal_id", goal.ID.Hex()).Warn("Failed to purge progress history")
	}

	logger.Log.WithFields(map[string]interface{}{
		"user_id": goal.UserID.Hex(),
		"goal_id": goal.ID.Hex(),
	}).Info("Goal deleted in service layer")
	return nil
}

// ownedGoal resolves a goal id and enforces ownership, collapsing both
// "absent" and "not yours" into ErrNotFound.
func (s *GoalService) ownedGoal(ctx context.Context, userID primitive.ObjectID, goalID string) (*models.Goal, error) {
	objID, err := primitive.ObjectIDFromHex(goalID)
	if err != nil {
		return nil, models.ErrNotFound
	}

	goal, err := s.goals.GetGoalByID(ctx, objID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, models.ErrNotFound
	}
	return goal, nil
}

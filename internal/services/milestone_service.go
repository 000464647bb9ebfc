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

// MilestoneService evaluates the milestone catalog against a user's goal
// aggregate and answers ledger queries over the resulting unlocks.
type MilestoneService struct {
	milestones MilestoneStore
	unlocks    UnlockStore
	goals      GoalStore
	now        func() time.Time
}

// NewMilestoneService creates a new instance of MilestoneService.
func NewMilestoneService(milestones MilestoneStore, unlocks UnlockStore, goals GoalStore) *MilestoneService {
	return &MilestoneService{
		milestones: milestones,
		unlocks:    unlocks,
		goals:      goals,
		now:        time.Now,
	}
}

// Evaluate scans the full catalog for the user and unlocks every milestone
// whose condition their current goals satisfy. It is safe to call
// redundantly: already-unlocked milestones are skipped and the unlock
// write itself is conditional, so a milestone can never unlock twice or
// have its unlocked_at rewritten.
func (s *MilestoneService) Evaluate(ctx context.Context, userID primitive.ObjectID) error {
	catalog, err := s.milestones.AllMilestones(ctx)
	if err != nil {
		return fmt.Errorf("failed to load milestone catalog: %w", err)
	}
	if len(catalog) == 0 {
		return nil
	}

	goals, err := s.goals.FindGoals(ctx, userID, models.GoalFilter{})
	if err != nil {
		return fmt.Errorf("failed to load goals for evaluation: %w", err)
	}

	records, err := s.recordsByMilestone(ctx, userID)
	if err != nil {
		return err
	}

	completed := 0
	for _, goal := range goals {
		if goal.Status == models.StatusCompleted {
			completed++
		}
	}

	for _, milestone := range catalog {
		if record, ok := records[milestone.ID]; ok && record.Unlocked {
			continue
		} else if !ok {
			// First time this user is evaluated against the milestone:
			// materialize the locked record so it persists across calls.
			if err := s.unlocks.EnsureRecord(ctx, userID, milestone.ID); err != nil {
				return err
			}
		}

		if !milestoneAchieved(milestone, goals, completed) {
			continue
		}

		unlocked, err := s.unlocks.Unlock(ctx, userID, milestone.ID, s.now())
		if err != nil {
			return fmt.Errorf("failed to unlock milestone: %w", err)
		}
		if unlocked {
			logger.Log.WithFields(map[string]interface{}{
				"user_id":      userID.Hex(),
				"milestone_id": milestone.ID.Hex(),
				"title":        milestone.Title,
			}).Info("Milestone unlocked for user")
		}
	}

	return nil
}

// milestoneAchieved tests the type-specific predicate against the user's
// current goals. CategoryCount counts every goal in the category
// regardless of progress; an earlier revision only counted started goals,
// the count-all behavior is the authoritative one.
func milestoneAchieved(m models.Milestone, goals []models.Goal, completed int) bool {
	switch m.MilestoneType {
	case models.MilestoneTotalGoals:
		return len(goals) >= m.RequiredValue

	case models.MilestoneCompletedGoals:
		return completed >= m.RequiredValue

	case models.MilestoneProgress:
		for _, goal := range goals {
			if goal.Progress < m.RequiredValue {
				continue
			}
			if m.Category == "" || goal.Category == m.Category {
				return true
			}
		}
		return false

	case models.MilestoneCategory:
		if m.Category == "" {
			return false
		}
		count := 0
		for _, goal := range goals {
			if goal.Category == m.Category {
				count++
			}
		}
		return count >= m.RequiredValue

	default:
		logger.Log.WithField("milestone_type", m.MilestoneType).Warn("Unknown milestone type, skipping")
		return false
	}
}

// ListMilestones returns the full catalog flagged with the user's unlock state.
func (s *MilestoneService) ListMilestones(ctx context.Context, userID primitive.ObjectID) ([]models.MilestoneStatus, error) {
	catalog, err := s.milestones.AllMilestones(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load milestone catalog: %w", err)
	}

	records, err := s.recordsByMilestone(ctx, userID)
	if err != nil {
		return nil, err
	}

	statuses := make([]models.MilestoneStatus, 0, len(catalog))
	for _, milestone := range catalog {
		status := models.MilestoneStatus{Milestone: milestone}
		if record, ok := records[milestone.ID]; ok && record.Unlocked {
			status.Unlocked = true
			status.UnlockedAt = record.UnlockedAt
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// RecentUnlocks returns up to limit unlocked milestones, most recent
// first. Ties on the unlock timestamp are broken by milestone id ascending
// so the ordering is deterministic.
func (s *MilestoneService) RecentUnlocks(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.UnlockRecord, error) {
	unlocked, err := s.unlockedRecords(ctx, userID)
	if err != nil {
		return nil, err
	}

	catalog, err := s.milestones.AllMilestones(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load milestone catalog: %w", err)
	}
	byID := make(map[primitive.ObjectID]models.Milestone, len(catalog))
	for _, milestone := range catalog {
		byID[milestone.ID] = milestone
	}

	sort.Slice(unlocked, func(i, j int) bool {
		a, b := unlocked[i], unlocked[j]
		if !a.UnlockedAt.Equal(*b.UnlockedAt) {
			return a.UnlockedAt.After(*b.UnlockedAt)
		}
		return a.MilestoneID.Hex() < b.MilestoneID.Hex()
	})

	results := make([]models.UnlockRecord, 0, limit)
	for _, record := range unlocked {
		milestone, ok := byID[record.MilestoneID]
		if !ok {
			// Milestone was removed from the catalog; the unlock stands
			// but there is nothing to show for it.
			continue
		}
		results = append(results, models.UnlockRecord{
			Milestone:  milestone,
			UnlockedAt: *record.UnlockedAt,
		})
		if len(results) == limit {
			break
		}
	}
	return results, nil
}

// CountUnlocks returns the user's total number of unlocked milestones.
func (s *MilestoneService) CountUnlocks(ctx context.Context, userID primitive.ObjectID) (int, error) {
	unlocked, err := s.unlockedRecords(ctx, userID)
	if err != nil {
		return 0, err
	}
	return len(unlocked), nil
}

// UnlockedDates returns the set of UTC calendar dates (YYYY-MM-DD) on
// which the user unlocked at least one milestone.
func (s *MilestoneService) UnlockedDates(ctx context.Context, userID primitive.ObjectID) (map[string]struct{}, error) {
	unlocked, err := s.unlockedRecords(ctx, userID)
	if err != nil {
		return nil, err
	}

	dates := make(map[string]struct{}, len(unlocked))
	for _, record := range unlocked {
		dates[record.UnlockedAt.UTC().Format("2006-01-02")] = struct{}{}
	}
	return dates, nil
}

// CreateMilestone validates and stores an administered rule definition.
func (s *MilestoneService) CreateMilestone(ctx context.Context, milestone *models.Milestone) (*models.Milestone, error) {
	if milestone.Title == "" {
		return nil, models.NewValidationError("title", "title is required")
	}
	if milestone.RequiredValue <= 0 {
		return nil, models.NewValidationError("required_value", "required value must be a positive integer")
	}
	switch milestone.MilestoneType {
	case models.MilestoneTotalGoals, models.MilestoneCompletedGoals, models.MilestoneProgress:
	case models.MilestoneCategory:
		if milestone.Category == "" {
			return nil, models.NewValidationError("category", "category is required for category milestones")
		}
	default:
		return nil, models.NewValidationError("milestone_type", "unknown milestone type")
	}
	if milestone.Category != "" {
		if _, ok := models.AllowedCategories[milestone.Category]; !ok {
			return nil, models.NewValidationError("category", "unknown category")
		}
	}

	created, err := s.milestones.CreateMilestone(ctx, milestone)
	if err != nil {
		return nil, fmt.Errorf("failed to create milestone: %w", err)
	}
	return created, nil
}

func (s *MilestoneService) recordsByMilestone(ctx context.Context, userID primitive.ObjectID) (map[primitive.ObjectID]models.UserMilestone, error) {
	records, err := s.unlocks.RecordsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load milestone records: %w", err)
	}

	byMilestone := make(map[primitive.ObjectID]models.UserMilestone, len(records))
	for _, record := range records {
		byMilestone[record.MilestoneID] = record
	}
	return byMilestone, nil
}

func (s *MilestoneService) unlockedRecords(ctx context.Context, userID primitive.ObjectID) ([]models.UserMilestone, error) {
	records, err := s.unlocks.RecordsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load milestone records: %w", err)
	}

	var unlocked []models.UserMilestone
	for _, record := range records {
		if record.Unlocked && record.UnlockedAt != nil {
			unlocked = append(unlocked, record)
		}
	}
	return unlocked, nil
}

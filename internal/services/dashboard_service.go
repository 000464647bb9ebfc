package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/lifeline-project/lifeline-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// recentLimit caps the recent goals / recent achievements lists.
const recentLimit = 3

// DashboardService composes the per-user dashboard read model. It only
// reads; it never mutates goals or the ledger.
type DashboardService struct {
	goals  GoalStore
	ledger *MilestoneService
	now    func() time.Time
}

// NewDashboardService creates a new instance of DashboardService.
func NewDashboardService(goals GoalStore, ledger *MilestoneService) *DashboardService {
	return &DashboardService{
		goals:  goals,
		ledger: ledger,
		now:    time.Now,
	}
}

// Summarize builds the dashboard statistics for one user.
func (s *DashboardService) Summarize(ctx context.Context, userID primitive.ObjectID) (*models.DashboardSummary, error) {
	statusCounts, err := s.goals.CountGoalsByStatus(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count goals: %w", err)
	}

	summary := &models.DashboardSummary{
		CompletedGoals:  statusCounts[models.StatusCompleted],
		InProgressGoals: statusCounts[models.StatusInProgress],
		NotStartedGoals: statusCounts[models.StatusNotStarted],
	}
	summary.TotalGoals = summary.CompletedGoals + summary.InProgressGoals + summary.NotStartedGoals
	summary.CompletionRate = completionRate(summary.CompletedGoals, summary.TotalGoals)

	recentGoals, err := s.goals.RecentGoals(ctx, userID, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent goals: %w", err)
	}
	summary.RecentGoals = recentGoals

	count, err := s.ledger.CountUnlocks(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary.AchievementsCount = count

	recentUnlocks, err := s.ledger.RecentUnlocks(ctx, userID, recentLimit)
	if err != nil {
		return nil, err
	}
	summary.RecentAchievements = recentUnlocks

	dates, err := s.ledger.UnlockedDates(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary.Streak = streak(dates, s.now())

	return summary, nil
}

// completionRate is the percentage of completed goals, rounded half-up.
// Zero goals means a rate of 0, not a division error.
func completionRate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// streak counts consecutive calendar days, ending today, with at least one
// milestone unlock. The walk stops at the first day missing from the set,
// so a day without an unlock today means a streak of zero regardless of
// yesterday.
func streak(unlockDates map[string]struct{}, now time.Time) int {
	day := now.UTC()
	count := 0
	for {
		if _, ok := unlockDates[day.Format("2006-01-02")]; !ok {
			return count
		}
		count++
		day = day.AddDate(0, 0, -1)
	}
}

package services

import (
	"context"
	"fmt"

	"github.com/lifeline-project/lifeline-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportService answers the read-only reporting queries. Shapes match
// what the charts consume: the timeline is cumulative, distributions are
// (label, total) pairs.
type ReportService struct {
	goals GoalStore
}

// NewReportService creates a new instance of ReportService.
func NewReportService(goals GoalStore) *ReportService {
	return &ReportService{goals: goals}
}

// Timeline returns the cumulative goal count by creation date.
func (s *ReportService) Timeline(ctx context.Context, userID primitive.ObjectID) (*models.Timeline, error) {
	dates, err := s.goals.GoalCreationDates(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to build timeline: %w", err)
	}

	timeline := &models.Timeline{Labels: []string{}, Values: []int{}}
	running := 0
	for _, created := range dates {
		label := created.UTC().Format("2006-01-02")
		running++
		if n := len(timeline.Labels); n > 0 && timeline.Labels[n-1] == label {
			timeline.Values[n-1] = running
			continue
		}
		timeline.Labels = append(timeline.Labels, label)
		timeline.Values = append(timeline.Values, running)
	}
	return timeline, nil
}

// StatusDistribution returns the goal count per status, in a fixed order.
func (s *ReportService) StatusDistribution(ctx context.Context, userID primitive.ObjectID) ([]models.StatusCount, error) {
	counts, err := s.goals.CountGoalsByStatus(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to build status distribution: %w", err)
	}

	distribution := make([]models.StatusCount, 0, 3)
	for _, status := range []string{models.StatusNotStarted, models.StatusInProgress, models.StatusCompleted} {
		distribution = append(distribution, models.StatusCount{Status: status, Total: counts[status]})
	}
	return distribution, nil
}

// CategoryDistribution returns the goal count per category.
func (s *ReportService) CategoryDistribution(ctx context.Context, userID primitive.ObjectID) ([]models.CategoryCount, error) {
	counts, err := s.goals.CountGoalsByCategory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to build category distribution: %w", err)
	}
	if counts == nil {
		counts = []models.CategoryCount{}
	}
	return counts, nil
}

// Completions returns completed vs. pending goal counts.
func (s *ReportService) Completions(ctx context.Context, userID primitive.ObjectID) (*models.CompletionSummary, error) {
	counts, err := s.goals.CountGoalsByStatus(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to build completion summary: %w", err)
	}

	completed := counts[models.StatusCompleted]
	total := 0
	for _, n := range counts {
		total += n
	}
	return &models.CompletionSummary{
		Completed: completed,
		Pending:   total - completed,
	}, nil
}

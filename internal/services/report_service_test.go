package services

import (
	"context"
	"testing"
	"time"

	"github.com/lifeline-project/lifeline-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTimelineIsCumulative(t *testing.T) {
	env := newTestEnv()
	user := primitive.NewObjectID()
	ctx := context.Background()

	// Two goals on the first day, none on the second, one on the third.
	env.mustCreateGoal(user, CreateGoalInput{Title: "A", Description: "d"})
	env.mustCreateGoal(user, CreateGoalInput{Title: "B", Description: "d"})
	env.now = env.now.Add(48 * time.Hour)
	env.mustCreateGoal(user, CreateGoalInput{Title: "C", Description: "d"})

	timeline, err := env.reports.Timeline(ctx, user)
	require.NoError(t, err)

	// Same-day goals collapse into one label; days without goals produce
	// no label, the running total just carries forward.
	assert.Equal(t, []string{"2026-08-28", "2026-08-30"}, timeline.Labels)
	assert.Equal(t, []int{2, 3}, timeline.Values)
}

func TestTimelineEmpty(t *testing.T) {
	env := newTestEnv()
	timeline, err := env.reports.Timeline(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	assert.Empty(t, timeline.Labels)
	assert.Empty(t, timeline.Values)
	assert.NotNil(t, timeline.Labels)
	assert.NotNil(t, timeline.Values)
}

func TestStatusDistributionFixedOrderWithZeros(t *testing.T) {
	env := newTestEnv()
	user := primitive.NewObjectID()
	ctx := context.Background()

	done := env.mustCreateGoal(user, CreateGoalInput{Title: "Done", Description: "d"})
	_, err := env.goalSvc.SetProgress(ctx, user, done.ID.Hex(), intPtr(100))
	require.NoError(t, err)

	distribution, err := env.reports.StatusDistribution(ctx, user)
	require.NoError(t, err)

	assert.Equal(t, []models.StatusCount{
		{Status: models.StatusNotStarted, Total: 0},
		{Status: models.StatusInProgress, Total: 0},
		{Status: models.StatusCompleted, Total: 1},
	}, distribution)
}

func TestCategoryDistribution(t *testing.T) {
	env := newTestEnv()
	user := primitive.NewObjectID()
	ctx := context.Background()

	env.mustCreateGoal(user, CreateGoalInput{Title: "A", Description: "d", Category: "Travel"})
	env.mustCreateGoal(user, CreateGoalInput{Title: "B", Description: "d", Category: "Travel"})
	env.mustCreateGoal(user, CreateGoalInput{Title: "C", Description: "d", Category: "Finance"})
	env.mustCreateGoal(user, CreateGoalInput{Title: "D", Description: "d"})

	distribution, err := env.reports.CategoryDistribution(ctx, user)
	require.NoError(t, err)

	assert.Equal(t, []models.CategoryCount{
		{Category: "Finance", Total: 1},
		{Category: "Other", Total: 1},
		{Category: "Travel", Total: 2},
	}, distribution)
}

func TestCategoryDistributionEmpty(t *testing.T) {
	env := newTestEnv()
	distribution, err := env.reports.CategoryDistribution(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	assert.NotNil(t, distribution)
	assert.Empty(t, distribution)
}

func TestCompletions(t *testing.T) {
	env := newTestEnv()
	user := primitive.NewObjectID()
	ctx := context.Background()

	env.mustCreateGoal(user, CreateGoalInput{Title: "A", Description: "d"})
	halfway := env.mustCreateGoal(user, CreateGoalInput{Title: "B", Description: "d"})
	done := env.mustCreateGoal(user, CreateGoalInput{Title: "C", Description: "d"})

	_, err := env.goalSvc.SetProgress(ctx, user, halfway.ID.Hex(), intPtr(50))
	require.NoError(t, err)
	_, err = env.goalSvc.SetProgress(ctx, user, done.ID.Hex(), intPtr(100))
	require.NoError(t, err)

	completions, err := env.reports.Completions(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, completions.Completed)
	assert.Equal(t, 2, completions.Pending)
}

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

func TestCompletionRate(t *testing.T) {
	cases := []struct {
		completed int
		total     int
		expected  int
	}{
		{completed: 0, total: 0, expected: 0},
		{completed: 0, total: 5, expected: 0},
		{completed: 3, total: 4, expected: 75},
		{completed: 1, total: 3, expected: 33},
		{completed: 2, total: 3, expected: 67},
		{completed: 1, total: 8, expected: 13}, // 12.5 rounds half-up
		{completed: 5, total: 5, expected: 100},
	}
	for _, c := range cases {
		assert.Equal(t, c.expected, completionRate(c.completed, c.total), "%d/%d", c.completed, c.total)
	}
}

func TestStreak(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	day := func(offset int) string {
		return now.AddDate(0, 0, offset).Format("2006-01-02")
	}
	set := func(offsets ...int) map[string]struct{} {
		dates := make(map[string]struct{}, len(offsets))
		for _, offset := range offsets {
			dates[day(offset)] = struct{}{}
		}
		return dates
	}

	assert.Equal(t, 0, streak(set(), now))
	assert.Equal(t, 1, streak(set(0), now))
	assert.Equal(t, 3, streak(set(0, -1, -2), now))
	// No unlock today ends the streak regardless of earlier days.
	assert.Equal(t, 0, streak(set(-1, -2, -3), now))
	// A gap stops the walk.
	assert.Equal(t, 2, streak(set(0, -1, -3, -4), now))
}

func TestSummarizeCounts(t *testing.T) {
	env := newTestEnv()
	user := primitive.NewObjectID()
	ctx := context.Background()

	env.mustCreateGoal(user, CreateGoalInput{Title: "Untouched", Description: "d"})
	started := env.mustCreateGoal(user, CreateGoalInput{Title: "Started", Description: "d"})
	finishedA := env.mustCreateGoal(user, CreateGoalInput{Title: "Done A", Description: "d"})
	finishedB := env.mustCreateGoal(user, CreateGoalInput{Title: "Done B", Description: "d"})

	_, err := env.goalSvc.SetProgress(ctx, user, started.ID.Hex(), intPtr(40))
	require.NoError(t, err)
	_, err = env.goalSvc.SetProgress(ctx, user, finishedA.ID.Hex(), intPtr(100))
	require.NoError(t, err)
	_, err = env.goalSvc.SetProgress(ctx, user, finishedB.ID.Hex(), intPtr(100))
	require.NoError(t, err)

	summary, err := env.dashboard.Summarize(ctx, user)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.TotalGoals)
	assert.Equal(t, 2, summary.CompletedGoals)
	assert.Equal(t, 1, summary.InProgressGoals)
	assert.Equal(t, 1, summary.NotStartedGoals)
	assert.Equal(t, 50, summary.CompletionRate)
}

func TestSummarizeRecentListsAreCapped(t *testing.T) {
	env := newTestEnv()
	user := primitive.NewObjectID()
	ctx := context.Background()

	for i, title := range []string{"A", "B", "C", "D", "E"} {
		env.now = env.now.Add(time.Duration(i) * time.Minute)
		env.mustCreateGoal(user, CreateGoalInput{Title: title, Description: "d"})
	}

	summary, err := env.dashboard.Summarize(ctx, user)
	require.NoError(t, err)
	require.Len(t, summary.RecentGoals, 3)
	// Newest first.
	assert.Equal(t, "E", summary.RecentGoals[0].Title)
	assert.Equal(t, "D", summary.RecentGoals[1].Title)
	assert.Equal(t, "C", summary.RecentGoals[2].Title)
}

func TestSummarizeAchievementsAndStreak(t *testing.T) {
	env := newTestEnv()
	user := primitive.NewObjectID()
	ctx := context.Background()

	env.addMilestone("One goal", models.MilestoneTotalGoals, "", 1)
	env.addMilestone("Two goals", models.MilestoneTotalGoals, "", 2)
	env.addMilestone("Three goals", models.MilestoneTotalGoals, "", 3)
	env.addMilestone("Unreachable", models.MilestoneTotalGoals, "", 50)

	// One unlock per day for three consecutive days ending today.
	env.mustCreateGoal(user, CreateGoalInput{Title: "One", Description: "d"})
	env.now = env.now.Add(24 * time.Hour)
	env.mustCreateGoal(user, CreateGoalInput{Title: "Two", Description: "d"})
	env.now = env.now.Add(24 * time.Hour)
	env.mustCreateGoal(user, CreateGoalInput{Title: "Three", Description: "d"})

	summary, err := env.dashboard.Summarize(ctx, user)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.AchievementsCount)
	require.Len(t, summary.RecentAchievements, 3)
	assert.Equal(t, "Three goals", summary.RecentAchievements[0].Milestone.Title)
	assert.Equal(t, 3, summary.Streak)

	// The day after with no new unlock: the streak resets to zero even
	// though the achievement count is unchanged.
	env.now = env.now.Add(24 * time.Hour)
	summary, err = env.dashboard.Summarize(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.AchievementsCount)
	assert.Equal(t, 0, summary.Streak)
}

func TestSummarizeEmptyUser(t *testing.T) {
	env := newTestEnv()
	summary, err := env.dashboard.Summarize(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.TotalGoals)
	assert.Equal(t, 0, summary.CompletionRate)
	assert.Equal(t, 0, summary.AchievementsCount)
	assert.Equal(t, 0, summary.Streak)
	assert.Empty(t, summary.RecentGoals)
	assert.Empty(t, summary.RecentAchievements)
}

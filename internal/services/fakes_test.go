package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lifeline-project/lifeline-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory store implementations so the engine's semantics can be tested
// without a MongoDB instance. They honor the same contracts as the Mongo
// repositories, including the conditional unlock write.

type fakeGoalStore struct {
	mu    sync.Mutex
	goals map[primitive.ObjectID]models.Goal
}

func newFakeGoalStore() *fakeGoalStore {
	return &fakeGoalStore{goals: make(map[primitive.ObjectID]models.Goal)}
}

func (f *fakeGoalStore) CreateGoal(_ context.Context, goal *models.Goal) (*models.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	goal.ID = primitive.NewObjectID()
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = time.Now()
	}
	f.goals[goal.ID] = *goal
	copy := *goal
	return &copy, nil
}

func (f *fakeGoalStore) GetGoalByID(_ context.Context, id primitive.ObjectID) (*models.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	goal, ok := f.goals[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copy := goal
	return &copy, nil
}

func (f *fakeGoalStore) UpdateGoalProgress(_ context.Context, id primitive.ObjectID, progress int, status string) (*models.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	goal, ok := f.goals[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	goal.Progress = progress
	goal.Status = status
	f.goals[id] = goal
	copy := goal
	return &copy, nil
}

func (f *fakeGoalStore) DeleteGoal(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.goals[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.goals, id)
	return nil
}

func (f *fakeGoalStore) FindGoals(_ context.Context, userID primitive.ObjectID, filter models.GoalFilter) ([]models.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []models.Goal
	for _, goal := range f.goals {
		if goal.UserID != userID {
			continue
		}
		if filter.Category != "" && goal.Category != filter.Category {
			continue
		}
		if filter.Status != "" && goal.Status != filter.Status {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			title := strings.ToLower(goal.Title)
			description := strings.ToLower(goal.Description)
			if !strings.Contains(title, needle) && !strings.Contains(description, needle) {
				continue
			}
		}
		matched = append(matched, goal)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

func (f *fakeGoalStore) RecentGoals(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.Goal, error) {
	goals, err := f.FindGoals(ctx, userID, models.GoalFilter{})
	if err != nil {
		return nil, err
	}
	if len(goals) > limit {
		goals = goals[:limit]
	}
	return goals, nil
}

func (f *fakeGoalStore) CountGoalsByStatus(ctx context.Context, userID primitive.ObjectID) (map[string]int, error) {
	goals, err := f.FindGoals(ctx, userID, models.GoalFilter{})
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, goal := range goals {
		counts[goal.Status]++
	}
	return counts, nil
}

func (f *fakeGoalStore) CountGoalsByCategory(ctx context.Context, userID primitive.ObjectID) ([]models.CategoryCount, error) {
	goals, err := f.FindGoals(ctx, userID, models.GoalFilter{})
	if err != nil {
		return nil, err
	}
	byCategory := make(map[string]int)
	for _, goal := range goals {
		byCategory[goal.Category]++
	}

	var counts []models.CategoryCount
	for category, total := range byCategory {
		counts = append(counts, models.CategoryCount{Category: category, Total: total})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Category < counts[j].Category })
	return counts, nil
}

func (f *fakeGoalStore) GoalCreationDates(ctx context.Context, userID primitive.ObjectID) ([]time.Time, error) {
	goals, err := f.FindGoals(ctx, userID, models.GoalFilter{})
	if err != nil {
		return nil, err
	}
	dates := make([]time.Time, 0, len(goals))
	for _, goal := range goals {
		dates = append(dates, goal.CreatedAt)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

func (f *fakeGoalStore) GoalOwners(_ context.Context) ([]primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[primitive.ObjectID]struct{})
	var owners []primitive.ObjectID
	for _, goal := range f.goals {
		if _, ok := seen[goal.UserID]; !ok {
			seen[goal.UserID] = struct{}{}
			owners = append(owners, goal.UserID)
		}
	}
	return owners, nil
}

type fakeMilestoneStore struct {
	mu         sync.Mutex
	milestones []models.Milestone
}

func newFakeMilestoneStore() *fakeMilestoneStore {
	return &fakeMilestoneStore{}
}

func (f *fakeMilestoneStore) AllMilestones(_ context.Context) ([]models.Milestone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	catalog := make([]models.Milestone, len(f.milestones))
	copy(catalog, f.milestones)
	sort.Slice(catalog, func(i, j int) bool { return catalog[i].ID.Hex() < catalog[j].ID.Hex() })
	return catalog, nil
}

func (f *fakeMilestoneStore) CreateMilestone(_ context.Context, milestone *models.Milestone) (*models.Milestone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	milestone.ID = primitive.NewObjectID()
	f.milestones = append(f.milestones, *milestone)
	created := *milestone
	return &created, nil
}

type unlockKey struct {
	user      primitive.ObjectID
	milestone primitive.ObjectID
}

type fakeUnlockStore struct {
	mu      sync.Mutex
	records map[unlockKey]models.UserMilestone
}

func newFakeUnlockStore() *fakeUnlockStore {
	return &fakeUnlockStore{records: make(map[unlockKey]models.UserMilestone)}
}

func (f *fakeUnlockStore) EnsureRecord(_ context.Context, userID, milestoneID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := unlockKey{user: userID, milestone: milestoneID}
	if _, ok := f.records[key]; !ok {
		f.records[key] = models.UserMilestone{
			ID:          primitive.NewObjectID(),
			UserID:      userID,
			MilestoneID: milestoneID,
			Unlocked:    false,
		}
	}
	return nil
}

func (f *fakeUnlockStore) Unlock(_ context.Context, userID, milestoneID primitive.ObjectID, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := unlockKey{user: userID, milestone: milestoneID}
	record, ok := f.records[key]
	if !ok || record.Unlocked {
		return false, nil
	}
	record.Unlocked = true
	record.UnlockedAt = &at
	f.records[key] = record
	return true, nil
}

func (f *fakeUnlockStore) RecordsByUser(_ context.Context, userID primitive.ObjectID) ([]models.UserMilestone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var records []models.UserMilestone
	for key, record := range f.records {
		if key.user == userID {
			records = append(records, record)
		}
	}
	return records, nil
}

type fakeProgressLogStore struct {
	mu      sync.Mutex
	entries []models.GoalProgressLog
}

func newFakeProgressLogStore() *fakeProgressLogStore {
	return &fakeProgressLogStore{}
}

func (f *fakeProgressLogStore) AppendEntry(_ context.Context, entry *models.GoalProgressLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry.ID = primitive.NewObjectID()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeProgressLogStore) EntriesByGoal(_ context.Context, goalID primitive.ObjectID) ([]models.GoalProgressLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var entries []models.GoalProgressLog
	for _, entry := range f.entries {
		if entry.GoalID == goalID {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].CreatedAt.Before(entries[j].CreatedAt) })
	return entries, nil
}

func (f *fakeProgressLogStore) DeleteByGoal(_ context.Context, goalID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []models.GoalProgressLog
	for _, entry := range f.entries {
		if entry.GoalID != goalID {
			kept = append(kept, entry)
		}
	}
	f.entries = kept
	return nil
}

// testEnv wires the services against the fakes with a controllable clock.
type testEnv struct {
	goals      *fakeGoalStore
	catalog    *fakeMilestoneStore
	unlocks    *fakeUnlockStore
	logs       *fakeProgressLogStore
	milestones *MilestoneService
	goalSvc    *GoalService
	dashboard  *DashboardService
	reports    *ReportService
	now        time.Time
}

func newTestEnv() *testEnv {
	env := &testEnv{
		goals:   newFakeGoalStore(),
		catalog: newFakeMilestoneStore(),
		unlocks: newFakeUnlockStore(),
		logs:    newFakeProgressLogStore(),
		now:     time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
	}

	env.milestones = NewMilestoneService(env.catalog, env.unlocks, env.goals)
	env.goalSvc = NewGoalService(env.goals, env.logs, env.milestones)
	env.dashboard = NewDashboardService(env.goals, env.milestones)
	env.reports = NewReportService(env.goals)

	clock := func() time.Time { return env.now }
	env.milestones.now = clock
	env.goalSvc.now = clock
	env.dashboard.now = clock

	return env
}

func (env *testEnv) addMilestone(title, milestoneType, category string, required int) models.Milestone {
	created, err := env.catalog.CreateMilestone(context.Background(), &models.Milestone{
		Title:         title,
		Description:   title,
		RequiredValue: required,
		MilestoneType: milestoneType,
		Category:      category,
	})
	if err != nil {
		panic(err)
	}
	return *created
}

func (env *testEnv) mustCreateGoal(userID primitive.ObjectID, input CreateGoalInput) *models.Goal {
	goal, err := env.goalSvc.CreateGoal(context.Background(), userID, input)
	if err != nil {
		panic(err)
	}
	return goal
}

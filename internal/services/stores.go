package services

import (
	"context"
	"time"

	"github.com/lifeline-project/lifeline-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The services consume small store interfaces instead of concrete
// repositories so the engine's derivation and idempotence rules can be
// exercised against in-memory fakes. The Mongo repositories in
// internal/repository are the production implementations.

// GoalStore persists goals and answers the aggregate queries the engine
// and the reports need.
type GoalStore interface {
	CreateGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error)
	GetGoalByID(ctx context.Context, id primitive.ObjectID) (*models.Goal, error)
	UpdateGoalProgress(ctx context.Context, id primitive.ObjectID, progress int, status string) (*models.Goal, error)
	DeleteGoal(ctx context.Context, id primitive.ObjectID) error
	FindGoals(ctx context.Context, userID primitive.ObjectID, filter models.GoalFilter) ([]models.Goal, error)
	RecentGoals(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.Goal, error)
	CountGoalsByStatus(ctx context.Context, userID primitive.ObjectID) (map[string]int, error)
	CountGoalsByCategory(ctx context.Context, userID primitive.ObjectID) ([]models.CategoryCount, error)
	GoalCreationDates(ctx context.Context, userID primitive.ObjectID) ([]time.Time, error)
	GoalOwners(ctx context.Context) ([]primitive.ObjectID, error)
}

// MilestoneStore reads (and administers) the milestone catalog.
type MilestoneStore interface {
	AllMilestones(ctx context.Context) ([]models.Milestone, error)
	CreateMilestone(ctx context.Context, milestone *models.Milestone) (*models.Milestone, error)
}

// UnlockStore is the ledger of (user, milestone) records. Unlock must be a
// conditional write: it reports true only for the call that actually
// performed the locked->unlocked transition.
type UnlockStore interface {
	EnsureRecord(ctx context.Context, userID, milestoneID primitive.ObjectID) error
	Unlock(ctx context.Context, userID, milestoneID primitive.ObjectID, at time.Time) (bool, error)
	RecordsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.UserMilestone, error)
}

// ProgressLogStore keeps the append-only progress history.
type ProgressLogStore interface {
	AppendEntry(ctx context.Context, entry *models.GoalProgressLog) error
	EntriesByGoal(ctx context.Context, goalID primitive.ObjectID) ([]models.GoalProgressLog, error)
	DeleteByGoal(ctx context.Context, goalID primitive.ObjectID) error
}

// UserStore persists the accounts behind the auth boundary.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

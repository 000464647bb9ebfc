package repository

import (
	"context"

	"github.com/lifeline-project/lifeline-api/internal/models"
	"github.com/lifeline-project/lifeline-api/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProgressLogRepository stores the append-only progress history. Entries
// are never mutated; they are only removed when their goal is deleted.
type ProgressLogRepository struct {
	collection *mongo.Collection
}

// NewProgressLogRepository creates a new instance of ProgressLogRepository.
func NewProgressLogRepository(db *mongo.Database) *ProgressLogRepository {
	return &ProgressLogRepository{
		collection: db.Collection("goal_progress_logs"),
	}
}

// AppendEntry records one progress mutation.
func (r *ProgressLogRepository) AppendEntry(ctx context.Context, entry *models.GoalProgressLog) error {
	_, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		logger.Log.WithError(err).WithField("goal_id", entry.GoalID.Hex()).Error("Failed to append progress log entry")
		return err
	}
	return nil
}

// EntriesByGoal returns a goal's history, oldest first.
func (r *ProgressLogRepository) EntriesByGoal(ctx context.Context, goalID primitive.ObjectID) ([]models.GoalProgressLog, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"goal_id": goalID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		logger.Log.WithError(err).WithField("goal_id", goalID.Hex()).Error("Failed to fetch progress log")
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.GoalProgressLog
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteByGoal purges the history of a deleted goal.
func (r *ProgressLogRepository) DeleteByGoal(ctx context.Context, goalID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"goal_id": goalID})
	if err != nil {
		logger.Log.WithError(err).WithField("goal_id", goalID.Hex()).Error("Failed to delete progress log entries")
		return err
	}
	return nil
}

package repository

import (
	"context"
	"time"

	"github.com/lifeline-project/lifeline-api/internal/models"
	"github.com/lifeline-project/lifeline-api/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UnlockRepository manages the per-user milestone ledger. A unique index
// on (user_id, milestone_id) backs the at-most-once unlock guarantee.
type UnlockRepository struct {
	collection *mongo.Collection
}

// NewUnlockRepository creates a new instance of UnlockRepository.
func NewUnlockRepository(db *mongo.Database) *UnlockRepository {
	return &UnlockRepository{
		collection: db.Collection("user_milestones"),
	}
}

// EnsureRecord upserts the locked (user, milestone) record on first
// evaluation. Existing records, unlocked or not, are left untouched.
func (r *UnlockRepository) EnsureRecord(ctx context.Context, userID, milestoneID primitive.ObjectID) error {
	filter := bson.M{"user_id": userID, "milestone_id": milestoneID}
	update := bson.M{"$setOnInsert": bson.M{"unlocked": false}}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		// A concurrent evaluation may have inserted the same pair first;
		// the unique index turns that into a duplicate key, which means
		// the record exists and we are done.
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"user_id":      userID.Hex(),
			"milestone_id": milestoneID.Hex(),
		}).Error("Failed to ensure milestone record")
		return err
	}
	return nil
}

// Unlock flips the record to unlocked with a compare-and-set on
// unlocked=false. It reports whether this call performed the transition;
// false means the milestone was already unlocked and nothing changed, so
// unlocked_at is written exactly once per pair.
func (r *UnlockRepository) Unlock(ctx context.Context, userID, milestoneID primitive.ObjectID, at time.Time) (bool, error) {
	filter := bson.M{"user_id": userID, "milestone_id": milestoneID, "unlocked": false}
	update := bson.M{"$set": bson.M{"unlocked": true, "unlocked_at": at}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"user_id":      userID.Hex(),
			"milestone_id": milestoneID.Hex(),
		}).Error("Failed to unlock milestone")
		return false, err
	}

	if result.ModifiedCount == 0 {
		return false, nil
	}

	logger.Log.WithFields(map[string]interface{}{
		"user_id":      userID.Hex(),
		"milestone_id": milestoneID.Hex(),
	}).Info("Milestone unlocked")
	return true, nil
}

// RecordsByUser returns every (user, milestone) record for the user,
// locked and unlocked alike.
func (r *UnlockRepository) RecordsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.UserMilestone, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to fetch milestone records")
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.UserMilestone
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

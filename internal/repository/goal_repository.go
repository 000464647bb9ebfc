package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/lifeline-project/lifeline-api/internal/models"
	"github.com/lifeline-project/lifeline-api/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GoalRepository handles database operations related to goals.
type GoalRepository struct {
	collection *mongo.Collection
}

// NewGoalRepository creates a new instance of GoalRepository.
func NewGoalRepository(db *mongo.Database) *GoalRepository {
	return &GoalRepository{
		collection: db.Collection("goals"),
	}
}

// CreateGoal inserts a new goal. created_at is set here and never updated.
func (r *GoalRepository) CreateGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error) {
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = time.Now()
	}

	result, err := r.collection.InsertOne(ctx, goal)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert goal")
		return nil, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted goal ID")
		return nil, errors.New("unexpected inserted ID type")
	}
	goal.ID = insertedID

	logger.Log.WithField("goal_id", goal.ID.Hex()).Info("Goal created")
	return goal, nil
}

// GetGoalByID fetches a goal by its ID.
func (r *GoalRepository) GetGoalByID(ctx context.Context, id primitive.ObjectID) (*models.Goal, error) {
	var goal models.Goal

	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&goal)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		logger.Log.WithError(err).WithField("goal_id", id.Hex()).Error("Failed to find goal by ID")
		return nil, err
	}

	return &goal, nil
}

// UpdateGoalProgress persists a new progress value and its derived status,
// returning the updated goal.
func (r *GoalRepository) UpdateGoalProgress(ctx context.Context, id primitive.ObjectID, progress int, status string) (*models.Goal, error) {
	var goal models.Goal

	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"progress": progress, "status": status}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&goal)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		logger.Log.WithError(err).WithField("goal_id", id.Hex()).Error("Failed to update goal progress")
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"goal_id":  id.Hex(),
		"progress": progress,
		"status":   status,
	}).Info("Goal progress updated")
	return &goal, nil
}

// DeleteGoal removes a goal by its ID.
func (r *GoalRepository) DeleteGoal(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logger.Log.WithError(err).WithField("goal_id", id.Hex()).Error("Failed to delete goal")
		return err
	}
	if result.DeletedCount == 0 {
		return models.ErrNotFound
	}

	logger.Log.WithField("goal_id", id.Hex()).Info("Goal deleted")
	return nil
}

// FindGoals fetches a user's goals matching the structured filter. Empty
// filter fields impose no constraint.
func (r *GoalRepository) FindGoals(ctx context.Context, userID primitive.ObjectID, filter models.GoalFilter) ([]models.Goal, error) {
	query := bson.M{"user_id": userID}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}

	cursor, err := r.collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to fetch filtered goals")
		return nil, err
	}
	defer cursor.Close(ctx)

	var goals []models.Goal
	if err := cursor.All(ctx, &goals); err != nil {
		logger.Log.WithError(err).Error("Failed to decode filtered goals")
		return nil, err
	}
	return goals, nil
}

// RecentGoals returns up to limit goals ordered by creation time, newest first.
func (r *GoalRepository) RecentGoals(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.Goal, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to fetch recent goals")
		return nil, err
	}
	defer cursor.Close(ctx)

	var goals []models.Goal
	if err := cursor.All(ctx, &goals); err != nil {
		return nil, err
	}
	return goals, nil
}

// CountGoalsByStatus groups a user's goals by status.
func (r *GoalRepository) CountGoalsByStatus(ctx context.Context, userID primitive.ObjectID) (map[string]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "total": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to aggregate goals by status")
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := make(map[string]int)
	for cursor.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			Total  int    `bson:"total"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.Status] = row.Total
	}
	return counts, cursor.Err()
}

// CountGoalsByCategory groups a user's goals by category, sorted by name.
func (r *GoalRepository) CountGoalsByCategory(ctx context.Context, userID primitive.ObjectID) ([]models.CategoryCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$group", Value: bson.M{"_id": "$category", "total": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to aggregate goals by category")
		return nil, err
	}
	defer cursor.Close(ctx)

	var counts []models.CategoryCount
	for cursor.Next(ctx) {
		var row struct {
			Category string `bson:"_id"`
			Total    int    `bson:"total"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		counts = append(counts, models.CategoryCount{Category: row.Category, Total: row.Total})
	}
	return counts, cursor.Err()
}

// GoalCreationDates returns the creation timestamps of a user's goals in
// ascending order, for the timeline report.
func (r *GoalRepository) GoalCreationDates(ctx context.Context, userID primitive.ObjectID) ([]time.Time, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetProjection(bson.M{"created_at": 1})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to fetch goal creation dates")
		return nil, err
	}
	defer cursor.Close(ctx)

	var dates []time.Time
	for cursor.Next(ctx) {
		var row struct {
			CreatedAt time.Time `bson:"created_at"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		dates = append(dates, row.CreatedAt)
	}
	return dates, cursor.Err()
}

// GoalOwners returns the distinct users that currently own goals.
func (r *GoalRepository) GoalOwners(ctx context.Context) ([]primitive.ObjectID, error) {
	raw, err := r.collection.Distinct(ctx, "user_id", bson.M{})
	if err != nil {
		logger.Log.WithError(err).Error("Failed to list goal owners")
		return nil, err
	}

	owners := make([]primitive.ObjectID, 0, len(raw))
	for _, value := range raw {
		if id, ok := value.(primitive.ObjectID); ok {
			owners = append(owners, id)
		}
	}
	return owners, nil
}

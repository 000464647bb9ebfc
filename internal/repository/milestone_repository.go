package repository

import (
	"context"
	"errors"

	"github.com/lifeline-project/lifeline-api/internal/models"
	"github.com/lifeline-project/lifeline-api/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MilestoneRepository reads the administered milestone catalog. The
// catalog is shared read-only configuration from the engine's perspective;
// writes happen only through the admin surface.
type MilestoneRepository struct {
	collection *mongo.Collection
}

// NewMilestoneRepository creates a new instance of MilestoneRepository.
func NewMilestoneRepository(db *mongo.Database) *MilestoneRepository {
	return &MilestoneRepository{
		collection: db.Collection("milestones"),
	}
}

// AllMilestones returns the full catalog, ordered by id for determinism.
func (r *MilestoneRepository) AllMilestones(ctx context.Context) ([]models.Milestone, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch milestone catalog")
		return nil, err
	}
	defer cursor.Close(ctx)

	var milestones []models.Milestone
	if err := cursor.All(ctx, &milestones); err != nil {
		logger.Log.WithError(err).Error("Failed to decode milestone catalog")
		return nil, err
	}
	return milestones, nil
}

// CreateMilestone adds a rule definition to the catalog (admin only).
func (r *MilestoneRepository) CreateMilestone(ctx context.Context, milestone *models.Milestone) (*models.Milestone, error) {
	result, err := r.collection.InsertOne(ctx, milestone)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert milestone")
		return nil, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, errors.New("unexpected inserted ID type")
	}
	milestone.ID = insertedID

	logger.Log.WithFields(map[string]interface{}{
		"milestone_id":   milestone.ID.Hex(),
		"milestone_type": milestone.MilestoneType,
	}).Info("Milestone created")
	return milestone, nil
}

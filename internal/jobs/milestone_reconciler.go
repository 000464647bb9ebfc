package jobs

import (
	"context"
	"fmt"

	"github.com/lifeline-project/lifeline-api/internal/services"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MilestoneReconciler re-runs the milestone evaluation for every user that
// owns goals. Evaluation is idempotent, so the sweep can only grant
// unlocks that an earlier request-time evaluation missed (e.g. because it
// errored after the goal mutation was already committed).
type MilestoneReconciler struct {
	GoalService      *services.GoalService
	MilestoneService *services.MilestoneService
}

// NewMilestoneReconciler creates a new instance of MilestoneReconciler.
func NewMilestoneReconciler(goalService *services.GoalService, milestoneService *services.MilestoneService) *MilestoneReconciler {
	return &MilestoneReconciler{
		GoalService:      goalService,
		MilestoneService: milestoneService,
	}
}

// RunDailySweep evaluates every goal owner once.
func (r *MilestoneReconciler) RunDailySweep(ctx context.Context) error {
	owners, err := r.GoalService.GoalOwners(ctx)
	if err != nil {
		return fmt.Errorf("failed to list goal owners: %w", err)
	}

	failures := 0
	for _, userID := range owners {
		if err := r.evaluateOwner(ctx, userID); err != nil {
			failures++
		}
	}

	logrus.WithFields(logrus.Fields{
		"owners":   len(owners),
		"failures": failures,
	}).Info("Milestone reconciliation sweep completed")
	return nil
}

func (r *MilestoneReconciler) evaluateOwner(ctx context.Context, userID primitive.ObjectID) error {
	if err := r.MilestoneService.Evaluate(ctx, userID); err != nil {
		logrus.WithError(err).WithField("user_id", userID.Hex()).Error("Reconciliation failed for user")
		return err
	}
	return nil
}

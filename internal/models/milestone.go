package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Milestone rule types.
const (
	MilestoneTotalGoals     = "total_goals"
	MilestoneCompletedGoals = "completed_goals"
	MilestoneProgress       = "progress"
	MilestoneCategory       = "category"
)

// Milestone is an administered rule over a user's aggregate goal state.
// The evaluation engine treats milestones as immutable configuration.
type Milestone struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description" json:"description"`
	Icon          string             `bson:"icon,omitempty" json:"icon,omitempty"`
	RequiredValue int                `bson:"required_value" json:"required_value"`
	MilestoneType string             `bson:"milestone_type" json:"milestone_type"`
	Category      string             `bson:"category,omitempty" json:"category,omitempty"`
}

// UserMilestone records one user's state for one milestone. The pair is
// unique; unlocked never flips back to false and unlocked_at is written
// exactly once.
type UserMilestone struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	MilestoneID primitive.ObjectID `bson:"milestone_id" json:"milestone_id"`
	Unlocked    bool               `bson:"unlocked" json:"unlocked"`
	UnlockedAt  *time.Time         `bson:"unlocked_at,omitempty" json:"unlocked_at,omitempty"`
}

// MilestoneStatus is the catalog entry a user sees: the rule plus whether
// they have unlocked it.
type MilestoneStatus struct {
	Milestone  Milestone  `json:"milestone"`
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

// UnlockRecord is a ledger entry joined with its milestone, used for the
// dashboard's recent achievements.
type UnlockRecord struct {
	Milestone  Milestone `json:"milestone"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Goal statuses. Status is always derived from progress, never set on its own.
const (
	StatusNotStarted = "Not Started"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

// FilterAll is the sentinel callers pass to disable a category/status filter.
const FilterAll = "All"

// DefaultCategory is assigned when a goal is created without a category.
const DefaultCategory = "Other"

// AllowedCategories is the fixed set a goal category must belong to.
var AllowedCategories = map[string]struct{}{
	"Personal Development": {},
	"Health & Fitness":     {},
	"Learning":             {},
	"Career":               {},
	"Finance":              {},
	"Relationships":        {},
	"Hobbies":              {},
	"Travel":               {},
	"Other":                {},
}

// Goal represents a user-owned unit of progress tracking.
type Goal struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category" json:"category"`
	Progress    int                `bson:"progress" json:"progress"`
	Status      string             `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	TargetDate  *time.Time         `bson:"target_date,omitempty" json:"target_date,omitempty"`
}

// ClampProgress forces a raw progress value into [0, 100]. Out-of-range
// input is never an error, it is coerced.
func ClampProgress(value int) int {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

// StatusForProgress derives the goal status from a (clamped) progress value.
func StatusForProgress(progress int) string {
	switch {
	case progress >= 100:
		return StatusCompleted
	case progress > 0:
		return StatusInProgress
	default:
		return StatusNotStarted
	}
}

// GoalProgressLog is one append-only history entry per progress mutation.
type GoalProgressLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GoalID    primitive.ObjectID `bson:"goal_id" json:"goal_id"`
	Progress  int                `bson:"progress" json:"progress"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// GoalFilter is the structured query a caller composes for listing goals.
// Empty fields mean "no constraint"; the handler maps the "All" sentinel
// onto the empty value before it reaches the repository.
type GoalFilter struct {
	Search   string
	Category string
	Status   string
}

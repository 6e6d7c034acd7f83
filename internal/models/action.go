package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// ActionType represents the kind of accountability action a manager records.
type ActionType string

const (
	ActionCoaching    ActionType = "coaching"
	ActionWarning     ActionType = "warning"
	ActionCritical    ActionType = "critical"
	ActionRecognition ActionType = "recognition"
)

// ActionStatus represents the lifecycle state of an accountability action.
type ActionStatus string

const (
	ActionOpen      ActionStatus = "open"
	ActionResolved  ActionStatus = "resolved"
	ActionDismissed ActionStatus = "dismissed"
)

// AccountabilityAction represents a coaching/warning/recognition record a
// manager files against an actor or a role scope. It is the only mutable
// entity in this subsystem: status moves open -> resolved | dismissed, set
// explicitly by a manager, and ResolvedAt is set only on resolve.
type AccountabilityAction struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ActorID    string             `bson:"actor_id,omitempty" json:"actor_id,omitempty"`     // target actor, or
	RoleScope  string             `bson:"role_scope,omitempty" json:"role_scope,omitempty"` // target role when actor-less
	Type       ActionType         `bson:"type" json:"type"`
	Note       string             `bson:"note" json:"note"`
	DueDate    *time.Time         `bson:"due_date,omitempty" json:"due_date,omitempty"`
	Status     ActionStatus       `bson:"status" json:"status"`
	ResolvedAt *time.Time         `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`
	CreatedBy  string             `bson:"created_by" json:"created_by"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

// IsValidActionType checks if an action type is valid.
func IsValidActionType(t ActionType) bool {
	switch t {
	case ActionCoaching, ActionWarning, ActionCritical, ActionRecognition:
		return true
	default:
		return false
	}
}

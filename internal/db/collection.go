package db

import (
	"context"

	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AssetCollection defines the interface for asset data operations.
type AssetCollection interface {
	InsertAsset(ctx context.Context, asset models.Asset) error
	FindAssets(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (AssetCursor, error)
	FindAssetByID(ctx context.Context, id string) (*models.Asset, error)
	RecordUsageReading(ctx context.Context, id string, reading float64) error
}

// AssetCursor defines the interface for asset cursor operations.
type AssetCursor interface {
	All(ctx context.Context, out interface{}) error
	Close(ctx context.Context) error
}

// ServiceRecordCollection defines the interface for PM service record operations.
type ServiceRecordCollection interface {
	InsertServiceRecord(ctx context.Context, rec models.ServiceRecord) error
	FindServiceRecords(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (ServiceRecordCursor, error)
}

// ServiceRecordCursor defines the interface for service record cursor operations.
type ServiceRecordCursor interface {
	All(ctx context.Context, out interface{}) error
	Close(ctx context.Context) error
}

// EventCollection defines the interface for maintenance event operations.
type EventCollection interface {
	InsertEvent(ctx context.Context, event models.MaintenanceEvent) error
	FindEvents(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (EventCursor, error)
	CloseRequest(ctx context.Context, id string, closedAt string) error
}

// EventCursor defines the interface for event cursor operations.
type EventCursor interface {
	All(ctx context.Context, out interface{}) error
	Close(ctx context.Context) error
}

// ActionCollection defines the interface for accountability action operations.
// This is the subsystem's only write path; failures surface verbatim to the
// caller and are never retried.
type ActionCollection interface {
	InsertAction(ctx context.Context, action models.AccountabilityAction) error
	FindActions(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (ActionCursor, error)
	FindActionByID(ctx context.Context, id string) (*models.AccountabilityAction, error)
	TransitionAction(ctx context.Context, id string, status models.ActionStatus) error
}

// ActionCursor defines the interface for action cursor operations.
type ActionCursor interface {
	All(ctx context.Context, out interface{}) error
	Close(ctx context.Context) error
}

// UserCollection defines the interface for user database operations
type UserCollection interface {
	InsertUser(ctx context.Context, user models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUsers(ctx context.Context, filter interface{}) (UserCursor, error)
	UpdateLastLogin(ctx context.Context, id string) error
}

// UserCursor defines the interface for user cursor operations.
type UserCursor interface {
	All(ctx context.Context, out interface{}) error
	Close(ctx context.Context) error
}

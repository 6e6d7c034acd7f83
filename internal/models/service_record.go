package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// ServiceRecord represents one preventative-maintenance service event for an
// asset: the usage counter at the time of service and when it happened.
// Records are append-only; newer records supersede older ones and the engine
// always selects the most recent by ServicedAt.
type ServiceRecord struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AssetID        string             `bson:"asset_id" json:"asset_id"`
	UsageAtService float64            `bson:"usage_at_service" json:"usage_at_service"`
	ServicedAt     time.Time          `bson:"serviced_at" json:"serviced_at"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}

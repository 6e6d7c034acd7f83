package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// AssetCategory distinguishes how an asset's usage is metered.
type AssetCategory string

const (
	CategoryVehicle   AssetCategory = "vehicle"   // usage counter is distance
	CategoryEquipment AssetCategory = "equipment" // usage counter is operating hours
)

// AssetStatus represents the operational state of an asset.
type AssetStatus string

const (
	StatusActive       AssetStatus = "active"
	StatusRedTagged    AssetStatus = "red_tagged"
	StatusOutOfService AssetStatus = "out_of_service"
	StatusRetired      AssetStatus = "retired"
	StatusInactive     AssetStatus = "inactive"
)

// Asset represents one fleet vehicle or equipment unit. The fleet registry
// owns these records; this service only reads them, except for the usage
// counter which is reconciled against incoming meter readings.
type Asset struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Category        AssetCategory      `bson:"category" json:"category"`
	UsageCounter    *float64           `bson:"usage_counter,omitempty" json:"usage_counter,omitempty"` // nil when no meter reading exists
	Status          AssetStatus        `bson:"status" json:"status"`
	ManufactureYear int                `bson:"manufacture_year,omitempty" json:"manufacture_year,omitempty"` // 0 when unknown
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}

// IsValidCategory checks if a category is valid.
func IsValidCategory(c AssetCategory) bool {
	return c == CategoryVehicle || c == CategoryEquipment
}

// Unavailable reports whether the asset is red-tagged or out of service.
func (a *Asset) Unavailable() bool {
	return a.Status == StatusRedTagged || a.Status == StatusOutOfService
}

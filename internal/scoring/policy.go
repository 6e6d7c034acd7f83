package scoring

import (
	"math"

	"github.com/ukydev/fleet-maintenance/internal/models"
)

// Policy holds the tunable parameters of the scoring engine. The service
// interval and due-soon floors differ between vehicles (distance) and
// equipment (hours); the age allowance thresholds apply to both.
//
// The due-soon floors and the legacy-asset age allowance were inconsistent
// between the dashboards this engine consolidated. The values here are the
// ones from the fully specified dashboard; confirm with the fleet owner
// before changing them.
type Policy struct {
	VehicleInterval       float64
	EquipmentInterval     float64
	VehicleDueSoonFloor   float64
	EquipmentDueSoonFloor float64

	// Age allowance added back to the operational score for legacy assets.
	// Only the highest threshold met applies.
	AgeThresholds []AgeBand
}

// AgeBand grants an operational-score allowance at a minimum asset age.
type AgeBand struct {
	MinYears int
	Bonus    float64
}

// DefaultPolicy returns the production scoring parameters.
func DefaultPolicy() Policy {
	return Policy{
		VehicleInterval:       5000,
		EquipmentInterval:     250,
		VehicleDueSoonFloor:   100,
		EquipmentDueSoonFloor: 10,
		AgeThresholds: []AgeBand{
			{MinYears: 18, Bonus: 14},
			{MinYears: 12, Bonus: 10},
			{MinYears: 8, Bonus: 6},
		},
	}
}

// IntervalFor returns the service interval and due-soon window for an asset
// category. The window is 10% of the interval, rounded, with a per-category
// minimum floor.
func (p Policy) IntervalFor(cat models.AssetCategory) (interval, dueSoonWindow float64) {
	switch cat {
	case models.CategoryEquipment:
		return p.EquipmentInterval, DueSoonWindow(p.EquipmentInterval, p.EquipmentDueSoonFloor)
	default:
		return p.VehicleInterval, DueSoonWindow(p.VehicleInterval, p.VehicleDueSoonFloor)
	}
}

// ageBonus returns the allowance for an asset manufactured in year (0 when
// unknown), evaluated against the current year.
func (p Policy) ageBonus(manufactureYear, currentYear int) float64 {
	if manufactureYear <= 0 {
		return 0
	}
	age := currentYear - manufactureYear
	for _, band := range p.AgeThresholds {
		if age >= band.MinYears {
			return band.Bonus
		}
	}
	return 0
}

// DueSoonWindow computes max(floor, round(interval * 0.1)).
func DueSoonWindow(interval, floor float64) float64 {
	w := math.Round(interval * 0.1)
	if w < floor {
		return floor
	}
	return w
}

// clamp bounds v to [0, 100]. Total for any input, including NaN, which
// clamps to 0 so a poisoned field can never propagate.
func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

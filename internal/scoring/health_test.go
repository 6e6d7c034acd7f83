package scoring

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestOperationalScore_Healthy(t *testing.T) {
	policy := DefaultPolicy()
	asset := models.Asset{Status: models.StatusActive}

	assert.Equal(t, 100.0, policy.OperationalScore(asset, PMOnTrack, 0, 2025))
}

func TestOperationalScore_Penalties(t *testing.T) {
	policy := DefaultPolicy()

	redTagged := models.Asset{Status: models.StatusRedTagged}
	assert.Equal(t, 70.0, policy.OperationalScore(redTagged, PMOnTrack, 0, 2025))

	outOfService := models.Asset{Status: models.StatusOutOfService}
	assert.Equal(t, 70.0, policy.OperationalScore(outOfService, PMOnTrack, 0, 2025))

	active := models.Asset{Status: models.StatusActive}
	assert.Equal(t, 80.0, policy.OperationalScore(active, PMOverdue, 0, 2025))
	assert.Equal(t, 90.0, policy.OperationalScore(active, PMDueSoon, 0, 2025))
}

func TestOperationalScore_OpenRequestsCapped(t *testing.T) {
	policy := DefaultPolicy()
	asset := models.Asset{Status: models.StatusActive}

	assert.Equal(t, 88.0, policy.OperationalScore(asset, PMOnTrack, 1, 2025))
	assert.Equal(t, 76.0, policy.OperationalScore(asset, PMOnTrack, 2, 2025))
	assert.Equal(t, 64.0, policy.OperationalScore(asset, PMOnTrack, 3, 2025))
	// Cap at -36 from the fourth request on
	assert.Equal(t, 64.0, policy.OperationalScore(asset, PMOnTrack, 4, 2025))
	assert.Equal(t, 64.0, policy.OperationalScore(asset, PMOnTrack, 10, 2025))
}

func TestOperationalScore_AgeAllowance(t *testing.T) {
	policy := DefaultPolicy()
	overdue := PMOverdue

	cases := []struct {
		year     int
		expected float64
	}{
		{2020, 80}, // 5 years old, no allowance
		{2017, 86}, // 8 years: +6
		{2013, 90}, // 12 years: +10
		{2007, 94}, // 18 years: +14, highest band only
		{0, 80},    // unknown year, no allowance
	}
	for _, tc := range cases {
		asset := models.Asset{Status: models.StatusActive, ManufactureYear: tc.year}
		assert.Equal(t, tc.expected, policy.OperationalScore(asset, overdue, 0, 2025), "year %d", tc.year)
	}
}

func TestOperationalScore_UnknownPMIsNotPenalized(t *testing.T) {
	policy := DefaultPolicy()
	asset := models.Asset{Status: models.StatusActive}

	// An unreadable meter must not count as overdue
	assert.Equal(t, 100.0, policy.OperationalScore(asset, PMUnknown, 0, 2025))
}

func TestMechanicScore_NeutralPrior(t *testing.T) {
	assert.Equal(t, 75.0, MechanicScore(nil))

	// Non-log events do not move the prior
	events := []models.MaintenanceEvent{{Kind: models.KindRequest, Timestamp: "2025-06-10"}}
	assert.Equal(t, 75.0, MechanicScore(events))
}

func TestMechanicScore_RecentSixOnly(t *testing.T) {
	// Six perfect recent logs and one poor older one: the old one falls out
	var events []models.MaintenanceEvent
	reqID := "req-1"
	for day := 10; day < 16; day++ {
		events = append(events, models.MaintenanceEvent{
			Kind:      models.KindLog,
			Timestamp: fmt.Sprintf("2025-06-%02dT10:00:00Z", day),
			Log: &models.LogDetail{
				RequestID: &reqID,
				Status:    "Closed",
				Note:      strings.Repeat("x", 40),
			},
		})
	}
	events = append(events, models.MaintenanceEvent{
		Kind:      models.KindLog,
		Timestamp: "2025-01-05T10:00:00Z",
		Log:       &models.LogDetail{Status: "", Note: ""},
	})

	assert.Equal(t, 100.0, MechanicScore(events))
}

func TestComposeHealth(t *testing.T) {
	policy := DefaultPolicy()
	asset := models.Asset{
		ID:           primitive.NewObjectID(),
		Status:       models.StatusActive,
		Category:     models.CategoryVehicle,
		UsageCounter: usage(1000),
	}

	summary := policy.ComposeHealth(asset, nil, nil, 2025)

	assert.Equal(t, asset.ID.Hex(), summary.AssetID)
	assert.Equal(t, PMOnTrack, summary.PMStatus)
	assert.Equal(t, 100.0, summary.OperationalScore)
	assert.Equal(t, 75.0, summary.MechanicScore)
	assert.Equal(t, 0, summary.OpenRequests)
	// 100*0.8 + 75*0.2
	assert.Equal(t, 95.0, summary.HealthScore)
}

func TestComposeHealth_OpenRequestsAndUnknownPM(t *testing.T) {
	policy := DefaultPolicy()
	asset := models.Asset{ID: primitive.NewObjectID(), Status: models.StatusActive, Category: models.CategoryVehicle}
	events := []models.MaintenanceEvent{
		{Kind: models.KindRequest, AssetID: asset.ID.Hex(), Timestamp: "2025-06-10", Request: &models.RequestDetail{Status: "Open"}},
		{Kind: models.KindRequest, AssetID: asset.ID.Hex(), Timestamp: "2025-06-11", Request: &models.RequestDetail{Status: "Closed"}},
	}

	summary := policy.ComposeHealth(asset, nil, events, 2025)

	assert.Equal(t, PMUnknown, summary.PMStatus)
	assert.Equal(t, 1, summary.OpenRequests)
	// One open request, no PM penalty for the unknown status
	assert.Equal(t, 88.0, summary.OperationalScore)
}

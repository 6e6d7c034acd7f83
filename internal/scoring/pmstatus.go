package scoring

import (
	"math"
	"sort"

	"github.com/ukydev/fleet-maintenance/internal/models"
)

// PMStatus classifies an asset's preventative-maintenance state.
type PMStatus string

const (
	PMOnTrack PMStatus = "on_track"
	PMDueSoon PMStatus = "due_soon"
	PMOverdue PMStatus = "overdue"
	PMUnknown PMStatus = "unknown" // usage counter unavailable
)

// Classification is the result of classifying one asset's usage against its
// service interval.
type Classification struct {
	Status        PMStatus `json:"status"`
	DueAt         float64  `json:"due_at"`
	Remaining     float64  `json:"remaining"`      // dueAt - currentUsage, 0 when overdue
	OverdueAmount float64  `json:"overdue_amount"` // currentUsage - dueAt, 0 unless overdue
}

// ClassifyUsage classifies a usage counter against the service interval.
// lastServiceUsage is 0 when the asset has never been serviced. Overdue wins
// at the boundary: currentUsage == dueAt is overdue.
func ClassifyUsage(currentUsage, lastServiceUsage, interval, dueSoonWindow float64) Classification {
	dueAt := lastServiceUsage + interval
	if currentUsage >= dueAt {
		return Classification{
			Status:        PMOverdue,
			DueAt:         dueAt,
			OverdueAmount: currentUsage - dueAt,
		}
	}
	remaining := dueAt - currentUsage
	if remaining <= dueSoonWindow {
		return Classification{Status: PMDueSoon, DueAt: dueAt, Remaining: remaining}
	}
	return Classification{Status: PMOnTrack, DueAt: dueAt, Remaining: remaining}
}

// ClassifyAsset classifies an asset using the most recent of its service
// records. Assets without a usable usage counter classify as PMUnknown.
func (p Policy) ClassifyAsset(asset models.Asset, records []models.ServiceRecord) Classification {
	usage, ok := usableUsage(asset)
	if !ok {
		return Classification{Status: PMUnknown}
	}
	lastService := 0.0
	if rec, found := LatestServiceRecord(records); found {
		lastService = rec.UsageAtService
	}
	interval, window := p.IntervalFor(asset.Category)
	return ClassifyUsage(usage, lastService, interval, window)
}

// LatestServiceRecord selects the most recent record by service timestamp.
func LatestServiceRecord(records []models.ServiceRecord) (models.ServiceRecord, bool) {
	var latest models.ServiceRecord
	found := false
	for _, rec := range records {
		if !found || rec.ServicedAt.After(latest.ServicedAt) {
			latest = rec
			found = true
		}
	}
	return latest, found
}

// ReconcileUsage merges a locally cached usage counter with the server-held
// value by taking the maximum. Counters only move forward; a stale cache or a
// delayed server write must never roll one back.
func ReconcileUsage(local, server float64) float64 {
	return math.Max(local, server)
}

// usableUsage returns the asset's usage counter, rejecting missing, NaN and
// negative values.
func usableUsage(asset models.Asset) (float64, bool) {
	if asset.UsageCounter == nil {
		return 0, false
	}
	u := *asset.UsageCounter
	if math.IsNaN(u) || u < 0 {
		return 0, false
	}
	return u, true
}

// PMBoardRow is one row of the combined due/overdue board.
type PMBoardRow struct {
	AssetID       string               `json:"asset_id"`
	Name          string               `json:"name"`
	Category      models.AssetCategory `json:"category"`
	Status        PMStatus             `json:"status"`
	DueAt         float64              `json:"due_at"`
	OverdueAmount float64              `json:"overdue_amount"`
	Remaining     float64              `json:"remaining"`
	Rank          int                  `json:"rank"`
}

// BuildPMBoard classifies every asset and returns the due/overdue board.
// On-track and unclassifiable assets are excluded. Ordering: overdue before
// due-soon; within overdue by descending overdue amount; within due-soon by
// ascending remaining headroom; name breaks remaining ties so the board is
// deterministic.
func (p Policy) BuildPMBoard(assets []models.Asset, records []models.ServiceRecord) []PMBoardRow {
	byAsset := make(map[string][]models.ServiceRecord)
	for _, rec := range records {
		byAsset[rec.AssetID] = append(byAsset[rec.AssetID], rec)
	}

	rows := make([]PMBoardRow, 0, len(assets))
	for _, asset := range assets {
		c := p.ClassifyAsset(asset, byAsset[asset.ID.Hex()])
		if c.Status != PMOverdue && c.Status != PMDueSoon {
			continue
		}
		rows = append(rows, PMBoardRow{
			AssetID:       asset.ID.Hex(),
			Name:          asset.Name,
			Category:      asset.Category,
			Status:        c.Status,
			DueAt:         c.DueAt,
			OverdueAmount: c.OverdueAmount,
			Remaining:     c.Remaining,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Status != b.Status {
			return a.Status == PMOverdue
		}
		if a.Status == PMOverdue {
			if a.OverdueAmount != b.OverdueAmount {
				return a.OverdueAmount > b.OverdueAmount
			}
		} else if a.Remaining != b.Remaining {
			return a.Remaining < b.Remaining
		}
		return a.Name < b.Name
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

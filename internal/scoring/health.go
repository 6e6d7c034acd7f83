package scoring

import (
	"sort"

	"github.com/ukydev/fleet-maintenance/internal/models"
)

// Health score weights and penalties.
const (
	unavailablePenalty   = 30
	openRequestPenalty   = 12
	openRequestCap       = 36
	pmOverduePenalty     = 20
	pmDueSoonPenalty     = 10
	neutralMechanicScore = 75

	recentLogWindow = 6

	operationalWeight = 0.8
	mechanicWeight    = 0.2
)

// AssetHealthSummary is the per-asset composite produced for asset detail
// pages and fleet dashboards. Recomputed from scratch on every query.
type AssetHealthSummary struct {
	AssetID          string   `json:"asset_id"`
	PMStatus         PMStatus `json:"pm_status"`
	OperationalScore float64  `json:"operational_score"`
	MechanicScore    float64  `json:"mechanic_score"`
	OpenRequests     int      `json:"open_requests"`
	HealthScore      float64  `json:"health_score"`
}

// OperationalScore starts at 100 and deducts for a red-tagged or
// out-of-service asset, open requests (capped), and PM slippage, then adds
// the legacy-asset age allowance back. A PMUnknown status contributes no PM
// penalty: an unreadable meter is not evidence of an overdue service.
func (p Policy) OperationalScore(asset models.Asset, pmStatus PMStatus, openRequests, currentYear int) float64 {
	score := 100.0
	if asset.Unavailable() {
		score -= unavailablePenalty
	}
	reqPenalty := float64(openRequests) * openRequestPenalty
	if reqPenalty > openRequestCap {
		reqPenalty = openRequestCap
	}
	score -= reqPenalty
	switch pmStatus {
	case PMOverdue:
		score -= pmOverduePenalty
	case PMDueSoon:
		score -= pmDueSoonPenalty
	}
	score += p.ageBonus(asset.ManufactureYear, currentYear)
	return clamp(score)
}

// MechanicScore averages the quality scores of the most recent log entries
// for an asset, up to six. With no scored logs it returns the neutral prior
// of 75 rather than penalizing an asset nobody has worked on.
func MechanicScore(logs []models.MaintenanceEvent) float64 {
	type scoredLog struct {
		at    int64
		score float64
	}
	scored := make([]scoredLog, 0, len(logs))
	for _, ev := range logs {
		in, ok := LogQualityInput(ev)
		if !ok {
			continue
		}
		t, ok := ParseTimestamp(ev.Timestamp)
		if !ok {
			continue
		}
		scored = append(scored, scoredLog{at: t.Unix(), score: QualityScore(in)})
	}
	if len(scored) == 0 {
		return neutralMechanicScore
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].at > scored[j].at })
	if len(scored) > recentLogWindow {
		scored = scored[:recentLogWindow]
	}
	sum := 0.0
	for _, s := range scored {
		sum += s.score
	}
	return sum / float64(len(scored))
}

// ComposeHealth blends the operational and mechanic scores into the asset's
// health score. events is the asset's full event slice; open requests and the
// recent log window are derived from it.
func (p Policy) ComposeHealth(asset models.Asset, records []models.ServiceRecord, events []models.MaintenanceEvent, currentYear int) AssetHealthSummary {
	pm := p.ClassifyAsset(asset, records)

	openRequests := 0
	for _, ev := range events {
		if ev.IsOpenRequest() {
			openRequests++
		}
	}

	operational := p.OperationalScore(asset, pm.Status, openRequests, currentYear)
	mechanic := MechanicScore(events)

	return AssetHealthSummary{
		AssetID:          asset.ID.Hex(),
		PMStatus:         pm.Status,
		OperationalScore: operational,
		MechanicScore:    mechanic,
		OpenRequests:     openRequests,
		HealthScore:      clamp(operational*operationalWeight + mechanic*mechanicWeight),
	}
}

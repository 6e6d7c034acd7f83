package scoring

import (
	"sort"
	"time"

	"github.com/ukydev/fleet-maintenance/internal/models"
)

// EventFilter selects events for one dashboard view. Zero-value fields mean
// "no constraint".
type EventFilter struct {
	AssetID string
	ActorID string
	Period  Period
	Ref     time.Time // reference time for the period window
}

// FilterResult holds the events surviving a filter plus the distinct key sets
// dashboards use to populate their filter dropdowns. Both sets are computed
// from the filtered events, never from the full corpus, so dropdowns never
// offer values invisible under the active filter.
type FilterResult struct {
	Events         []models.MaintenanceEvent
	Systems        []string // distinct "system affected" values, sorted
	LinkedRequests []string // distinct linked request ids, sorted
}

// FilterEvents applies the period window and the asset/actor constraints.
// Events with unparsable timestamps fail the period check and are excluded.
func FilterEvents(events []models.MaintenanceEvent, f EventFilter) FilterResult {
	var out FilterResult
	systems := make(map[string]struct{})
	linked := make(map[string]struct{})

	for _, ev := range events {
		if f.AssetID != "" && ev.AssetID != f.AssetID {
			continue
		}
		if f.ActorID != "" && (ev.ActorID == nil || *ev.ActorID != f.ActorID) {
			continue
		}
		if f.Period != "" && !InPeriod(ev.Timestamp, f.Period, f.Ref) {
			continue
		}
		out.Events = append(out.Events, ev)
		if ev.Request != nil && ev.Request.System != "" {
			systems[ev.Request.System] = struct{}{}
		}
		if ev.Log != nil && ev.Log.RequestID != nil && *ev.Log.RequestID != "" {
			linked[*ev.Log.RequestID] = struct{}{}
		}
	}

	out.Systems = sortedKeys(systems)
	out.LinkedRequests = sortedKeys(linked)
	return out
}

// RequestClosureLatency returns how long a request stayed open. A request
// missing its closed timestamp falls back to the record's last-updated time.
// The second return value is false for non-requests, still-open requests and
// requests whose creation timestamp is unparsable.
func RequestClosureLatency(ev models.MaintenanceEvent) (time.Duration, bool) {
	if ev.Kind != models.KindRequest || ev.Request == nil || ev.Request.Status != "Closed" {
		return 0, false
	}
	opened, ok := ParseTimestamp(ev.Timestamp)
	if !ok {
		return 0, false
	}
	closed := ev.UpdatedAt
	if ev.Request.ClosedAt != nil {
		if t, ok := ParseTimestamp(*ev.Request.ClosedAt); ok {
			closed = t
		}
	}
	if closed.Before(opened) {
		return 0, true
	}
	return closed.Sub(opened), true
}

// MeanClosureLatency averages the closure latency across the closed requests
// in events. The second return value is false when no request qualifies.
func MeanClosureLatency(events []models.MaintenanceEvent) (time.Duration, bool) {
	var total time.Duration
	n := 0
	for _, ev := range events {
		if d, ok := RequestClosureLatency(ev); ok {
			total += d
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return total / time.Duration(n), true
}

// WeeklySeries buckets events into Monday-keyed weekly counts for trend
// charts. The Unknown bucket (unparsable timestamps) is dropped from the
// series. Keys come back sorted, which for the date layout is chronological.
func WeeklySeries(events []models.MaintenanceEvent) (keys []string, counts map[string]int) {
	counts = make(map[string]int)
	for _, ev := range events {
		key := WeekBucketKey(ev.Timestamp)
		if key == UnknownBucket {
			continue
		}
		counts[key]++
	}
	keys = make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, counts
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

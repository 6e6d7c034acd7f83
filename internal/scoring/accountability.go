package scoring

import (
	"math"
	"sort"

	"github.com/ukydev/fleet-maintenance/internal/models"
)

// ActorClass selects the composite weighting for a scoreboard. Teammates
// (operators and inspectors) and mechanics are weighted differently; only the
// teammate formula carries the explicit flag and incomplete penalties.
type ActorClass string

const (
	ClassTeammate ActorClass = "teammate"
	ClassMechanic ActorClass = "mechanic"
)

// UnknownActor is the bucket for events whose actor reference is missing.
// It is always retained on scoreboards, never dropped.
const UnknownActor = "Unknown"

// Teammate composite weights and penalties.
const (
	teammateScoreWeight       = 0.5
	teammateLinkageWeight     = 0.25
	teammateCompletionWeight  = 0.25
	teammateFlagPenalty       = 8
	teammateIncompletePenalty = 4
)

// Mechanic composite weights (score / linkage / closure).
const (
	mechanicScoreWeight   = 0.6
	mechanicLinkageWeight = 0.2
	mechanicClosureWeight = 0.2
)

// Accountability bands, inclusive on the lower boundary.
const (
	BandIntervention = "Intervention"
	BandNeedsReview  = "Needs Review"
	BandOperational  = "Operational"
	BandGood         = "Good"
)

// ActorScoreSummary is one scoreboard row: the per-actor rollup of quality,
// linkage and timeliness over the active period, with the composite
// accountability score and its band. Recomputed from scratch on every query.
type ActorScoreSummary struct {
	ActorID         string  `json:"actor_id"`
	DisplayName     string  `json:"display_name"`
	EventCount      int     `json:"event_count"`
	AvgScore        int     `json:"avg_score"`
	LinkageRate     float64 `json:"linkage_rate"`
	CompletionRate  float64 `json:"completion_rate"`
	OnTimeRate      float64 `json:"on_time_rate"`
	Flags           int     `json:"flags"`
	IncompleteCount int     `json:"incomplete_count"`
	Accountability  float64 `json:"accountability"`
	Band            string  `json:"band"`
}

// actorTally accumulates the raw counts for one actor before rates are
// derived.
type actorTally struct {
	events      int
	scoreSum    float64
	scored      int
	linked      int
	linkable    int
	completed   int
	completable int
	onTime      int
	timed       int
	flags       int
}

// ScoreActors rolls scored events up by actor and returns scoreboard rows in
// leaderboard order: descending composite, then descending event count, then
// ascending display name. displayNames maps actor ids to names; actors absent
// from the map fall back to their id. Events with no actor reference land in
// the UnknownActor bucket.
func ScoreActors(events []models.MaintenanceEvent, class ActorClass, displayNames map[string]string) []ActorScoreSummary {
	tallies := make(map[string]*actorTally)

	for _, ev := range events {
		actor := UnknownActor
		if ev.ActorID != nil && *ev.ActorID != "" {
			actor = *ev.ActorID
		}
		t := tallies[actor]
		if t == nil {
			t = &actorTally{}
			tallies[actor] = t
		}
		tallyEvent(t, ev)
	}

	rows := make([]ActorScoreSummary, 0, len(tallies))
	for actor, t := range tallies {
		name := displayNames[actor]
		if name == "" {
			name = actor
		}
		rows = append(rows, summarize(actor, name, t, class))
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Accountability != b.Accountability {
			return a.Accountability > b.Accountability
		}
		if a.EventCount != b.EventCount {
			return a.EventCount > b.EventCount
		}
		return a.DisplayName < b.DisplayName
	})
	return rows
}

// tallyEvent folds one event into an actor's tally. The completion criterion
// is kind-specific: a log counts as complete when its status is Closed, an
// inspection when it was submitted the day it was performed. Pre-graded
// submissions contribute their upstream score and flag directly.
func tallyEvent(t *actorTally, ev models.MaintenanceEvent) {
	t.events++

	switch ev.Kind {
	case models.KindLog:
		if in, ok := LogQualityInput(ev); ok {
			t.scoreSum += QualityScore(in)
			t.scored++
			t.linkable++
			if in.HasLinkedRequest {
				t.linked++
			}
			t.completable++
			if in.StatusText == "Closed" {
				t.completed++
			}
		}
	case models.KindInspection:
		if ev.Inspection != nil {
			t.completable++
			t.timed++
			if inspectionOnTime(*ev.Inspection) {
				t.completed++
				t.onTime++
			}
		}
	case models.KindGradedSubmission:
		if ev.Graded != nil {
			t.scoreSum += clamp(ev.Graded.Score)
			t.scored++
			if ev.Graded.Flagged {
				t.flags++
			}
		}
	case models.KindRequest:
		if ev.Request != nil {
			t.completable++
			if ev.Request.Status == "Closed" {
				t.completed++
			}
		}
	}
}

// inspectionOnTime reports whether the inspection was submitted on the
// calendar day it was performed. Unparsable dates count as not on time.
func inspectionOnTime(d models.InspectionDetail) bool {
	performed, ok1 := ParseTimestamp(d.InspectionDate)
	submitted, ok2 := ParseTimestamp(d.SubmittedDate)
	if !ok1 || !ok2 {
		return false
	}
	py, pm, pd := performed.Date()
	sy, sm, sd := submitted.Date()
	return py == sy && pm == sm && pd == sd
}

func summarize(actor, name string, t *actorTally, class ActorClass) ActorScoreSummary {
	row := ActorScoreSummary{
		ActorID:         actor,
		DisplayName:     name,
		EventCount:      t.events,
		AvgScore:        roundedMean(t.scoreSum, t.scored),
		LinkageRate:     rate(t.linked, t.linkable),
		CompletionRate:  rate(t.completed, t.completable),
		OnTimeRate:      rate(t.onTime, t.timed),
		Flags:           t.flags,
		IncompleteCount: t.completable - t.completed,
	}
	row.Accountability = composite(row, class)
	row.Band = BandFor(row.Accountability)
	return row
}

// composite applies the per-class weighting. Mechanics weight quality heavier
// and carry no separate flag penalty; teammates trade weight for explicit
// flag and incomplete deductions.
func composite(row ActorScoreSummary, class ActorClass) float64 {
	avg := float64(row.AvgScore)
	switch class {
	case ClassMechanic:
		return clamp(avg*mechanicScoreWeight +
			row.LinkageRate*mechanicLinkageWeight +
			row.CompletionRate*mechanicClosureWeight)
	default:
		return clamp(avg*teammateScoreWeight +
			row.LinkageRate*teammateLinkageWeight +
			row.CompletionRate*teammateCompletionWeight -
			float64(row.Flags)*teammateFlagPenalty -
			float64(row.IncompleteCount)*teammateIncompletePenalty)
	}
}

// BandFor maps a composite score to its qualitative band. Boundaries are
// inclusive on the lower band: 25 is still Intervention.
func BandFor(score float64) string {
	switch {
	case score <= 25:
		return BandIntervention
	case score <= 50:
		return BandNeedsReview
	case score <= 75:
		return BandOperational
	default:
		return BandGood
	}
}

// rate returns num/den as a percentage. A zero denominator yields 100:
// absence of evidence is not penalized.
func rate(num, den int) float64 {
	if den == 0 {
		return 100
	}
	return float64(num) / float64(den) * 100
}

// roundedMean returns sum/n rounded to the nearest integer, 0 when n is 0.
func roundedMean(sum float64, n int) int {
	if n == 0 {
		return 0
	}
	return int(math.Round(sum / float64(n)))
}

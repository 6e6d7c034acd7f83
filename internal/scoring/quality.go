package scoring

import (
	"github.com/ukydev/fleet-maintenance/internal/models"
)

// Penalties applied by ObjectiveScore. Each applies independently except the
// two status penalties, which are mutually exclusive.
const (
	penaltyNoLinkedRequest = 6
	penaltyEmptyStatus     = 10
	penaltyInProgress      = 8
	penaltyEmptyNote       = 8
	penaltyShortNote       = 8

	shortNoteThreshold = 20

	objectiveWeight = 0.8
	selfScoreWeight = 0.2
)

// QualityInput is the normalized form of one maintenance-log or form
// submission fed to the quality scorer.
type QualityInput struct {
	HasLinkedRequest bool
	StatusText       string
	NoteLength       int
	SelfScore        *float64 // mechanic's self-reported score, nil when absent
}

// ObjectiveScore computes the deterministic 0-100 quality score: start at 100
// and stack fixed penalties for an unlinked entry, a missing or stalled
// status, and a missing or thin note.
func ObjectiveScore(in QualityInput) float64 {
	score := 100.0
	if !in.HasLinkedRequest {
		score -= penaltyNoLinkedRequest
	}
	if in.StatusText == "" {
		score -= penaltyEmptyStatus
	} else if in.StatusText == "In Progress" {
		score -= penaltyInProgress
	}
	if in.NoteLength == 0 {
		score -= penaltyEmptyNote
	} else if in.NoteLength < shortNoteThreshold {
		score -= penaltyShortNote
	}
	return clamp(score)
}

// QualityScore blends the objective score with the self-reported score when
// one is present: 80% objective, 20% self. Without a self score the objective
// score stands alone.
func QualityScore(in QualityInput) float64 {
	objective := ObjectiveScore(in)
	if in.SelfScore == nil {
		return objective
	}
	return clamp(objective*objectiveWeight + clamp(*in.SelfScore)*selfScoreWeight)
}

// LogQualityInput extracts the scorer input from a log event. The second
// return value is false for events that are not logs.
func LogQualityInput(ev models.MaintenanceEvent) (QualityInput, bool) {
	if ev.Kind != models.KindLog || ev.Log == nil {
		return QualityInput{}, false
	}
	return QualityInput{
		HasLinkedRequest: ev.Log.RequestID != nil && *ev.Log.RequestID != "",
		StatusText:       ev.Log.Status,
		NoteLength:       len(ev.Log.Note),
		SelfScore:        ev.Log.SelfScore,
	}, true
}

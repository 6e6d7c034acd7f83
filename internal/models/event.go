package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// EventKind identifies the variant of a MaintenanceEvent.
type EventKind string

const (
	KindInspection       EventKind = "inspection"
	KindRequest          EventKind = "request"
	KindLog              EventKind = "log"
	KindPMEvent          EventKind = "pm_event"
	KindGradedSubmission EventKind = "graded_submission"
)

// MaintenanceEvent is the common envelope over all maintenance event kinds.
// Exactly one of the kind-specific payloads is set, matching Kind. Events are
// immutable once created except for status transitions on requests.
//
// Timestamp is kept as the string the upstream form submitted. Some legacy
// submissions carry unparsable values; those events are excluded from
// temporal aggregation rather than rejected.
type MaintenanceEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Kind      EventKind          `bson:"kind" json:"kind"`
	ActorID   *string            `bson:"actor_id,omitempty" json:"actor_id,omitempty"` // nil when the submitter is unknown
	AssetID   string             `bson:"asset_id" json:"asset_id"`
	Timestamp string             `bson:"timestamp" json:"timestamp"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	Inspection *InspectionDetail `bson:"inspection,omitempty" json:"inspection,omitempty"`
	Request    *RequestDetail    `bson:"request,omitempty" json:"request,omitempty"`
	Log        *LogDetail        `bson:"log,omitempty" json:"log,omitempty"`
	PM         *PMDetail         `bson:"pm,omitempty" json:"pm,omitempty"`
	Graded     *GradedDetail     `bson:"graded,omitempty" json:"graded,omitempty"`
}

// InspectionDetail carries the fields specific to an inspection submission.
type InspectionDetail struct {
	InspectionDate string `bson:"inspection_date" json:"inspection_date"` // date the inspection was performed
	SubmittedDate  string `bson:"submitted_date" json:"submitted_date"`   // date the form was submitted
	Passed         bool   `bson:"passed" json:"passed"`
}

// RequestDetail carries the fields specific to a maintenance request.
type RequestDetail struct {
	Status   string  `bson:"status" json:"status"` // "Open" or "Closed"
	Urgency  string  `bson:"urgency" json:"urgency"`
	System   string  `bson:"system" json:"system"` // system affected, e.g. "Brakes"
	ClosedAt *string `bson:"closed_at,omitempty" json:"closed_at,omitempty"`
}

// LogDetail carries the fields specific to a maintenance log entry.
type LogDetail struct {
	RequestID *string  `bson:"request_id,omitempty" json:"request_id,omitempty"` // linked request, nil when unlinked
	Status    string   `bson:"status" json:"status"`                             // "", "In Progress", "Closed"
	Note      string   `bson:"note" json:"note"`
	SelfScore *float64 `bson:"self_score,omitempty" json:"self_score,omitempty"` // mechanic's self-reported score
}

// PMDetail carries the fields specific to a preventative-maintenance event.
type PMDetail struct {
	UsageAtService float64 `bson:"usage_at_service" json:"usage_at_service"`
}

// GradedDetail carries a submission already scored by upstream grading.
type GradedDetail struct {
	Score   float64 `bson:"score" json:"score"`
	Flagged bool    `bson:"flagged" json:"flagged"`
}

// IsOpenRequest reports whether the event is a request still open.
func (e *MaintenanceEvent) IsOpenRequest() bool {
	return e.Kind == KindRequest && e.Request != nil && e.Request.Status != "Closed"
}

package scoring

import (
	"time"
)

// Period represents a calendar-aligned reporting window.
type Period string

const (
	PeriodDaily     Period = "daily"
	PeriodWeekly    Period = "weekly"
	PeriodMonthly   Period = "monthly"
	PeriodQuarterly Period = "quarterly"
	PeriodYearly    Period = "yearly"
)

// UnknownBucket is the sentinel week key for events whose timestamp could not
// be parsed. Chart series must drop this bucket.
const UnknownBucket = "Unknown"

// timestampLayouts are the formats upstream forms submit, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses an event timestamp string. The second return value is
// false for empty or unparsable input; callers exclude such events rather
// than erroring.
func ParseTimestamp(ts string) (time.Time, bool) {
	if ts == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, ts, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsValidPeriod checks if a period is valid.
func IsValidPeriod(p Period) bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodYearly:
		return true
	default:
		return false
	}
}

// PeriodStart returns the start of the period window containing ref:
// midnight of the local day, the Monday of the week, day 1 of the month, the
// Jan/Apr/Jul/Oct quarter boundary, or January 1 of the year.
func PeriodStart(p Period, ref time.Time) time.Time {
	y, m, d := ref.Date()
	switch p {
	case PeriodWeekly:
		// Weekday is 0=Sunday; Monday is offset 0, Sunday offset 6 back.
		back := (int(ref.Weekday()) + 6) % 7
		return time.Date(y, m, d-back, 0, 0, 0, 0, ref.Location())
	case PeriodMonthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, ref.Location())
	case PeriodQuarterly:
		qm := time.Month((int(m)-1)/3*3 + 1)
		return time.Date(y, qm, 1, 0, 0, 0, 0, ref.Location())
	case PeriodYearly:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, ref.Location())
	default: // daily
		return time.Date(y, m, d, 0, 0, 0, 0, ref.Location())
	}
}

// periodEnd returns the start of the next window after the one containing ref.
func periodEnd(p Period, ref time.Time) time.Time {
	start := PeriodStart(p, ref)
	switch p {
	case PeriodWeekly:
		return start.AddDate(0, 0, 7)
	case PeriodMonthly:
		return start.AddDate(0, 1, 0)
	case PeriodQuarterly:
		return start.AddDate(0, 3, 0)
	case PeriodYearly:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// InPeriod reports whether the event timestamp falls inside the period window
// containing ref. The window is half-open: inclusive of its start, exclusive
// of the next window's start. Unparsable timestamps are excluded.
func InPeriod(ts string, p Period, ref time.Time) bool {
	t, ok := ParseTimestamp(ts)
	if !ok {
		return false
	}
	return !t.Before(PeriodStart(p, ref)) && t.Before(periodEnd(p, ref))
}

// WeekBucketKey maps a timestamp to the Monday-aligned date key used to group
// events into weekly trend series. Unparsable timestamps map to
// UnknownBucket.
func WeekBucketKey(ts string) string {
	t, ok := ParseTimestamp(ts)
	if !ok {
		return UnknownBucket
	}
	return PeriodStart(PeriodWeekly, t).Format("2006-01-02")
}

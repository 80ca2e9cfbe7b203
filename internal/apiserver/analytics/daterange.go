package analytics

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the ISO date accepted in query parameters
const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date")

// DateRange bounds a query by calendar day. Start is inclusive and End
// covers its whole day. Either side may be open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// ParseDate accepts "2006-01-02" or an RFC3339 timestamp and returns the
// UTC midnight of that calendar day
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, ErrInvalidDate
}

// NewDateRange parses the optional start and end parameters; empty strings leave that side open
func NewDateRange(start, end string) (DateRange, error) {
	var r DateRange
	if start != "" {
		t, err := ParseDate(start)
		if err != nil {
			return r, err
		}
		r.Start = &t
	}
	if end != "" {
		t, err := ParseDate(end)
		if err != nil {
			return r, err
		}
		r.End = &t
	}
	return r, nil
}

// Day is the range covering exactly one calendar day
func Day(day time.Time) DateRange {
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return DateRange{Start: &d, End: &d}
}

// Complete reports whether both bounds are set
func (r DateRange) Complete() bool {
	return r.Start != nil && r.End != nil
}

// endExclusive is the first instant after the End day
func (r DateRange) endExclusive() time.Time {
	return r.End.AddDate(0, 0, 1)
}

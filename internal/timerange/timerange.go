// Package timerange implements a time interval whose bounds may each be
// absent, and each be inclusive or exclusive.
package timerange

import (
	"errors"
	"fmt"
	"time"
)

// Epsilon is the amount an exclusive bound is moved inwards to turn it into
// an inclusive one. It is the resolution of time.Time.
const Epsilon = time.Nanosecond

// ErrInvalidRange is returned when the normalized end lies before the
// normalized start.
var ErrInvalidRange = errors.New("end date should be greater than start date")

// Range is an immutable interval. A zero start or end time means the bound is
// absent (unbounded on that side).
type Range struct {
	start         time.Time
	end           time.Time
	includesStart bool
	includesEnd   bool
}

// New builds a Range. Pass the zero time.Time for an absent bound.
func New(start, end time.Time, includesStart, includesEnd bool) (Range, error) {
	r := Range{
		start:         start,
		end:           end,
		includesStart: includesStart,
		includesEnd:   includesEnd,
	}
	rs, okStart := r.RealStart()
	re, okEnd := r.RealEnd()
	if okStart && okEnd && re.Before(rs) {
		return Range{}, fmt.Errorf("%w: start=%s end=%s", ErrInvalidRange,
			start.Format(time.RFC3339Nano), end.Format(time.RFC3339Nano))
	}
	return r, nil
}

// Closed builds [start, end].
func Closed(start, end time.Time) (Range, error) {
	return New(start, end, true, true)
}

// ClosedOpen builds [start, end).
func ClosedOpen(start, end time.Time) (Range, error) {
	return New(start, end, true, false)
}

// Day returns [00:00, next day 00:00) for the given civil date in loc.
func Day(year int, month time.Month, day int, loc *time.Location) Range {
	if loc == nil {
		loc = time.Local
	}
	start := time.Date(year, month, day, 0, 0, 0, 0, loc)
	// AddDate keeps wall clock midnight across DST changes.
	return Range{start: start, end: start.AddDate(0, 0, 1), includesStart: true}
}

// Start returns the start bound as given, and whether it is present.
func (r Range) Start() (time.Time, bool) {
	return r.start, !r.start.IsZero()
}

// End returns the end bound as given, and whether it is present.
func (r Range) End() (time.Time, bool) {
	return r.end, !r.end.IsZero()
}

func (r Range) IncludesStart() bool { return r.includesStart }

func (r Range) IncludesEnd() bool { return r.includesEnd }

// RealStart returns the smallest instant inside the range.
func (r Range) RealStart() (time.Time, bool) {
	if r.start.IsZero() {
		return time.Time{}, false
	}
	if r.includesStart {
		return r.start, true
	}
	return r.start.Add(Epsilon), true
}

// RealEnd returns the largest instant inside the range.
func (r Range) RealEnd() (time.Time, bool) {
	if r.end.IsZero() {
		return time.Time{}, false
	}
	if r.includesEnd {
		return r.end, true
	}
	return r.end.Add(-Epsilon), true
}

// Includes reports whether t lies inside the range.
func (r Range) Includes(t time.Time) bool {
	if rs, ok := r.RealStart(); ok && t.Before(rs) {
		return false
	}
	if re, ok := r.RealEnd(); ok && t.After(re) {
		return false
	}
	return true
}

// Bounded reports whether both bounds are present.
func (r Range) Bounded() bool {
	return !r.start.IsZero() && !r.end.IsZero()
}

// Location returns the location of the start bound, falling back to the end
// bound and then to fallback.
func (r Range) Location(fallback *time.Location) *time.Location {
	switch {
	case !r.start.IsZero():
		return r.start.Location()
	case !r.end.IsZero():
		return r.end.Location()
	case fallback != nil:
		return fallback
	default:
		return time.UTC
	}
}

func (r Range) String() string {
	left, right := "(", ")"
	if r.includesStart {
		left = "["
	}
	if r.includesEnd {
		right = "]"
	}
	format := func(t time.Time) string {
		if t.IsZero() {
			return "-inf"
		}
		return t.Format(time.RFC3339Nano)
	}
	return left + format(r.start) + ", " + format(r.end) + right
}

// Package recurrence holds recurrence rules attached to events: their
// canonical string form and their evaluation through rrule-go.
//
// A Rule never carries its own anchor date or week start. Both are supplied
// by the caller on every evaluation (see Bind), taken from the owning event
// and the configured first weekday, so the two can never drift apart.
package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// ErrUnsupportedEngine is returned when a Rule is not backed by an engine
// that can evaluate it, e.g. the zero Rule.
var ErrUnsupportedEngine = errors.New("recurrence rule is not evaluable")

// Engine tags the evaluator backing a Rule.
type Engine int

const (
	EngineNone Engine = iota
	EngineRRule
)

func (e Engine) String() string {
	switch e {
	case EngineRRule:
		return "rrule"
	default:
		return "none"
	}
}

// Rule is an immutable, validated recurrence rule.
type Rule struct {
	engine Engine
	fields Fields
}

var (
	rruleFreq = map[Frequency]rrule.Frequency{
		Daily:   rrule.DAILY,
		Weekly:  rrule.WEEKLY,
		Monthly: rrule.MONTHLY,
		Yearly:  rrule.YEARLY,
	}
	// Monday first, matching weekdayByToken.
	rruleWeekdays = [7]rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU}
)

// New validates f and returns an rrule backed Rule.
func New(f Fields) (*Rule, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	r := &Rule{engine: EngineRRule, fields: f.clone()}
	// Surface anything rrule-go rejects now rather than at query time.
	if _, err := r.Bind(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), time.Monday); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	return r, nil
}

// FromString parses s with Parse and builds a Rule.
func FromString(s string) (*Rule, error) {
	f, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return New(f)
}

func (r *Rule) Engine() Engine {
	if r == nil {
		return EngineNone
	}
	return r.engine
}

// Fields returns a copy of the rule's fields.
func (r *Rule) Fields() Fields {
	if r == nil {
		return Fields{}
	}
	return r.fields.clone()
}

// String returns the canonical serialized form.
func (r *Rule) String() string {
	if r == nil {
		return ""
	}
	return Assemble(r.fields)
}

// RFCString renders the rule as an RFC 5545 RRULE value (BYDAY instead of
// BYWEEKDAY).
func (r *Rule) RFCString() string {
	s := r.String()
	if len(r.Fields().ByWeekday) == 0 {
		return s
	}
	return strings.Replace(s, keyByWeekday+"=", "BYDAY=", 1)
}

// Equal reports whether both rules describe the same recurrence.
func (r *Rule) Equal(o *Rule) bool {
	return r.Engine() == o.Engine() && r.String() == o.String()
}

// Bind returns an evaluable rrule anchored at dtstart with week start wkst.
// Any anchor a caller may have been holding is discarded.
func (r *Rule) Bind(dtstart time.Time, wkst time.Weekday) (*rrule.RRule, error) {
	switch r.Engine() {
	case EngineRRule:
		return rrule.NewRRule(r.option(dtstart, wkst))
	case EngineNone:
		return nil, ErrUnsupportedEngine
	default:
		return nil, fmt.Errorf("%w: engine %d", ErrUnsupportedEngine, r.Engine())
	}
}

func (r *Rule) option(dtstart time.Time, wkst time.Weekday) rrule.ROption {
	f := r.fields
	opt := rrule.ROption{
		Freq:       rruleFreq[f.Freq],
		Dtstart:    dtstart,
		Interval:   max(f.Interval, 1),
		Wkst:       rruleWeekdays[(int(wkst)+6)%7],
		Count:      f.Count,
		Until:      f.Until,
		Bymonthday: append([]int(nil), f.ByMonthDay...),
		Bymonth:    append([]int(nil), f.ByMonth...),
		Byyearday:  append([]int(nil), f.ByYearDay...),
	}
	for _, tok := range f.ByWeekday {
		// Validated in New.
		n, day, _ := splitWeekday(tok)
		wd := rruleWeekdays[day]
		if n != 0 {
			wd = wd.Nth(n)
		}
		opt.Byweekday = append(opt.Byweekday, wd)
	}
	return opt
}

func (f Fields) clone() Fields {
	c := f
	c.ByWeekday = append([]string(nil), f.ByWeekday...)
	c.ByMonthDay = append([]int(nil), f.ByMonthDay...)
	c.ByMonth = append([]int(nil), f.ByMonth...)
	c.ByYearDay = append([]int(nil), f.ByYearDay...)
	return c
}

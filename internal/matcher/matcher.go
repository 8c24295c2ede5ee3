// Package matcher decides whether events have occurrences inside a time range
// and expands them into concrete occurrences.
package matcher

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	appLog "weekcal/internal/log"
	"weekcal/internal/model"
	"weekcal/internal/timerange"
)

const defaultMaxOccurrences = 500

var (
	ErrNotRecurring = errors.New("event is not recurrent")
	ErrMissingRule  = errors.New("recurrent event has no recurrence rule")
	ErrUnbounded    = errors.New("expansion needs a range with both bounds")
)

// Config controls rule evaluation.
type Config struct {
	// FirstWeekday overrides whatever week start a rule was created with.
	FirstWeekday time.Weekday

	// Location is used to evaluate rules against ranges without bounds and
	// as the display zone of expanded occurrences. If nil, time.Local is used.
	Location *time.Location

	// MaxOccurrences caps Occurrences per event. If zero,
	// defaultMaxOccurrences is used.
	MaxOccurrences int
}

// RRule evaluates rrule backed recurrence rules.
type RRule struct {
	cfg Config
}

func New(cfg Config) *RRule {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.MaxOccurrences <= 0 {
		cfg.MaxOccurrences = defaultMaxOccurrences
	}
	return &RRule{cfg: cfg}
}

// bind anchors the event's rule at the event start, seen in loc so that
// wall-clock recurrences follow that zone across DST changes.
func (m *RRule) bind(e model.Event, loc *time.Location) (*rrule.RRule, error) {
	if !e.Recurrent {
		return nil, fmt.Errorf("%w: event %s", ErrNotRecurring, e.ID)
	}
	if e.Rule == nil {
		return nil, fmt.Errorf("%w: event %s", ErrMissingRule, e.ID)
	}
	rr, err := e.Rule.Bind(e.Start().In(loc), m.cfg.FirstWeekday)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", e.ID, err)
	}
	return rr, nil
}

// IsStartDateInRange reports whether any occurrence of the recurring event e
// starts inside r. Only the first occurrence at or after the range start is
// generated.
func (m *RRule) IsStartDateInRange(e model.Event, r timerange.Range) (bool, error) {
	loc := r.Location(m.cfg.Location)
	rr, err := m.bind(e, loc)
	if err != nil {
		return false, err
	}

	from := e.Start()
	if rs, ok := r.RealStart(); ok {
		from = rs
	}
	next := rr.After(from.In(loc), true)
	if next.IsZero() {
		return false, nil
	}
	if re, ok := r.RealEnd(); ok && next.After(re) {
		return false, nil
	}
	return true, nil
}

// Expansion is the result of Occurrences.
type Expansion struct {
	Occurrences []model.Occurrence
	// Truncated is set when MaxOccurrences was hit.
	Truncated bool
}

// Occurrences lists the occurrences of e that start inside r. Single events
// yield at most one occurrence. Recurring events need a bounded range.
func (m *RRule) Occurrences(e model.Event, r timerange.Range) (Expansion, error) {
	var result Expansion

	if !e.Recurrent {
		if r.Includes(e.Start()) {
			result.Occurrences = append(result.Occurrences, m.occurrence(e, e.Start()))
		}
		return result, nil
	}

	rs, okStart := r.RealStart()
	re, okEnd := r.RealEnd()
	if !okStart || !okEnd {
		return result, fmt.Errorf("%w: %s", ErrUnbounded, r)
	}

	loc := r.Location(m.cfg.Location)
	rr, err := m.bind(e, loc)
	if err != nil {
		return result, err
	}

	starts := rr.Between(rs.In(loc), re.In(loc), true)
	if len(starts) > m.cfg.MaxOccurrences {
		starts = starts[:m.cfg.MaxOccurrences]
		result.Truncated = true
		appLog.Error("expand: truncated occurrences due to cap",
			errors.New("max occurrences reached"),
			"event", e.ID,
			"cap", m.cfg.MaxOccurrences,
		)
	}

	for _, start := range starts {
		result.Occurrences = append(result.Occurrences, m.occurrence(e, start))
	}
	return result, nil
}

// occurrence keeps the event duration and converts into the display zone.
func (m *RRule) occurrence(e model.Event, start time.Time) model.Occurrence {
	return model.Occurrence{
		EventID:     e.ID,
		Title:       e.Title,
		InstanceKey: start.UTC().Format(time.RFC3339Nano),
		Start:       start.In(m.cfg.Location),
		End:         start.Add(e.Duration()).In(m.cfg.Location),
	}
}

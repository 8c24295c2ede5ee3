package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"weekcal/internal/recurrence"
	"weekcal/internal/timerange"
)

var (
	ErrBlankTitle     = errors.New("title should not be blank")
	ErrInvalidSpan    = errors.New("invalid event date range")
	ErrMissingRule    = errors.New("recurring event requires a recurrence rule")
	ErrUnexpectedRule = errors.New("non-recurring event must not carry a recurrence rule")
)

// EventID is an opaque identifier. Its textual encoding is owned by the
// store's id codec; generation is owned by the store's id generator.
type EventID string

func (id EventID) String() string { return string(id) }

// Title is a trimmed, NFC-normalized, non-blank event title.
type Title string

// NewTitle trims s and rejects blank input.
func NewTitle(s string) (Title, error) {
	s = norm.NFC.String(strings.TrimSpace(s))
	if s == "" {
		return "", ErrBlankTitle
	}
	return Title(s), nil
}

func (t Title) String() string { return string(t) }

// Event is a logical calendar event before recurrence expansion.
// Events are values; an update replaces the stored event with the same ID.
type Event struct {
	ID    EventID
	Title Title

	// Span is closed at both ends and authoritative for the event's timing.
	// For recurring events it is the first occurrence and the rule anchor.
	Span timerange.Range

	Recurrent bool
	Rule      *recurrence.Rule
}

// NewEvent validates the recurrence invariant and builds [start, end].
func NewEvent(id EventID, title Title, start, end time.Time, recurrent bool, rule *recurrence.Rule) (Event, error) {
	if strings.TrimSpace(string(title)) == "" {
		return Event{}, ErrBlankTitle
	}
	if start.IsZero() || end.IsZero() {
		return Event{}, fmt.Errorf("%w: start and end are required", ErrInvalidSpan)
	}
	span, err := timerange.Closed(start, end)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %w", ErrInvalidSpan, err)
	}
	switch {
	case recurrent && rule == nil:
		return Event{}, ErrMissingRule
	case !recurrent && rule != nil:
		return Event{}, ErrUnexpectedRule
	}
	return Event{ID: id, Title: title, Span: span, Recurrent: recurrent, Rule: rule}, nil
}

// Start returns the start instant of the event span.
func (e Event) Start() time.Time {
	t, _ := e.Span.Start()
	return t
}

// End returns the end instant of the event span.
func (e Event) End() time.Time {
	t, _ := e.Span.End()
	return t
}

// Duration of a single occurrence.
func (e Event) Duration() time.Duration {
	return e.End().Sub(e.Start())
}

// Occurrence is a single concrete instance of an event, converted into the
// display timezone.
type Occurrence struct {
	EventID EventID
	Title   Title

	// InstanceKey uniquely identifies a single occurrence of a recurring
	// event, derived from the UTC start time.
	InstanceKey string

	Start time.Time
	End   time.Time
}

// Package agenda exposes calendar and event use cases in plain date/time
// terms of the configured zone, hiding stores and rule engines from callers.
package agenda

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"weekcal/internal/config"
	"weekcal/internal/ics"
	appLog "weekcal/internal/log"
	"weekcal/internal/matcher"
	"weekcal/internal/model"
	"weekcal/internal/recurrence"
	"weekcal/internal/store"
	"weekcal/internal/timerange"
)

var (
	ErrNotFound     = errors.New("event not found")
	ErrIDRequired   = errors.New("event id is required")
	ErrInvalidInput = errors.New("invalid event input")
)

// Expander expands events into concrete occurrences. matcher.RRule
// satisfies it.
type Expander interface {
	Occurrences(e model.Event, r timerange.Range) (matcher.Expansion, error)
}

// EventInput carries an event as entered by a user: a single civil date
// with start and end wall-clock times in the configured zone.
type EventInput struct {
	Title string

	Year  int
	Month time.Month
	Day   int

	StartHour, StartMinute int
	EndHour, EndMinute     int

	Recurrent  bool
	Recurrence recurrence.Fields
}

// EventView is the presentation form of a stored event.
type EventView struct {
	ID    model.EventID
	Title string

	Year  int
	Month time.Month
	Day   int

	StartHour, StartMinute int
	EndHour, EndMinute     int

	Recurrent bool
	// Recurrence is the canonical rule text; empty for single events.
	Recurrence string
}

// Start returns the start wall-clock time formatted as HH:MM.
func (v EventView) Start() string { return fmt.Sprintf("%02d:%02d", v.StartHour, v.StartMinute) }

// End returns the end wall-clock time formatted as HH:MM.
func (v EventView) End() string { return fmt.Sprintf("%02d:%02d", v.EndHour, v.EndMinute) }

// EventService implements event CRUD on top of a store.
type EventService struct {
	settings config.Settings
	ids      store.IDCodec
	events   store.Store
	expander Expander
}

// NewEventService wires the service. ids normalizes IDs entered by users;
// if nil, store.UUIDCodec is used.
func NewEventService(settings config.Settings, ids store.IDCodec, events store.Store, expander Expander) *EventService {
	if ids == nil {
		ids = store.UUIDCodec{}
	}
	return &EventService{settings: settings, ids: ids, events: events, expander: expander}
}

// Get returns the event with the given id or ErrNotFound.
func (s *EventService) Get(id string) (EventView, error) {
	e, err := s.lookup(id)
	if err != nil {
		return EventView{}, err
	}
	return s.view(e), nil
}

// ListByDate lists the events occurring on the given day, in store order.
func (s *EventService) ListByDate(year int, month time.Month, day int) ([]EventView, error) {
	var views []EventView
	for e, err := range s.events.FindByStartDate(timerange.Day(year, month, day, s.settings.Location())) {
		if err != nil {
			return nil, err
		}
		views = append(views, s.view(e))
	}
	return views, nil
}

// Agenda lists the concrete occurrences inside the given day ordered by
// start time.
func (s *EventService) Agenda(year int, month time.Month, day int) ([]model.Occurrence, error) {
	r := timerange.Day(year, month, day, s.settings.Location())

	var out []model.Occurrence
	for e, err := range s.events.FindByStartDate(r) {
		if err != nil {
			return nil, err
		}
		exp, err := s.expander.Occurrences(e, r)
		if err != nil {
			return nil, err
		}
		out = append(out, exp.Occurrences...)
	}
	slices.SortStableFunc(out, func(a, b model.Occurrence) int {
		return a.Start.Compare(b.Start)
	})
	return out, nil
}

func (s *EventService) Insert(in EventInput) (EventView, error) {
	e, err := s.build(in, s.events.GenerateID())
	if err != nil {
		return EventView{}, err
	}
	if err := s.events.Insert(e); err != nil {
		return EventView{}, err
	}
	appLog.Info("event added", "id", e.ID, "title", e.Title)
	return s.view(e), nil
}

// Update replaces the event with the given id. The event must exist.
func (s *EventService) Update(id string, in EventInput) (EventView, error) {
	if id == "" {
		return EventView{}, ErrIDRequired
	}
	old, err := s.lookup(id)
	if err != nil {
		return EventView{}, err
	}
	e, err := s.build(in, old.ID)
	if err != nil {
		return EventView{}, err
	}
	if err := s.events.Update(e); err != nil {
		return EventView{}, err
	}
	appLog.Info("event updated", "id", e.ID, "title", e.Title)
	return s.view(e), nil
}

// Delete removes the event with the given id and returns what was removed.
// The event must exist.
func (s *EventService) Delete(id string) (EventView, error) {
	if id == "" {
		return EventView{}, ErrIDRequired
	}
	e, err := s.lookup(id)
	if err != nil {
		return EventView{}, err
	}
	if err := s.events.Delete(e); err != nil {
		return EventView{}, err
	}
	appLog.Info("event deleted", "id", e.ID)
	return s.view(e), nil
}

// ImportResult counts what Import did.
type ImportResult struct {
	Added   int
	Updated int
}

// Import stores drafts read from a calendar file. A draft whose UID is a
// known event ID replaces that event, so importing an exported file again
// does not duplicate events. A UID that is a valid but unknown ID is kept;
// any other UID gets a freshly generated ID.
func (s *EventService) Import(drafts []ics.Draft) (ImportResult, error) {
	var res ImportResult
	for _, d := range drafts {
		id, err := s.ids.Decode(d.UID)
		exists := false
		if err != nil {
			id = s.events.GenerateID()
		} else if _, exists, err = s.events.Find(id); err != nil {
			return res, err
		}

		e, err := model.NewEvent(id, d.Title, d.Start, d.End, d.Rule != nil, d.Rule)
		if err != nil {
			return res, fmt.Errorf("import %s: %w", d.UID, err)
		}
		if exists {
			err = s.events.Update(e)
			res.Updated++
		} else {
			err = s.events.Insert(e)
			res.Added++
		}
		if err != nil {
			return res, err
		}
	}
	appLog.Info("events imported", "added", res.Added, "updated", res.Updated)
	return res, nil
}

func (s *EventService) lookup(id string) (model.Event, error) {
	eid, err := s.ids.Decode(id)
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	e, ok, err := s.events.Find(eid)
	if err != nil {
		return model.Event{}, err
	}
	if !ok {
		return model.Event{}, fmt.Errorf("%w: %s", ErrNotFound, eid)
	}
	return e, nil
}

// build turns in into an event anchored at its start time. The rule is kept
// without anchor or week start; both are supplied when it is evaluated.
func (s *EventService) build(in EventInput, id model.EventID) (model.Event, error) {
	if err := in.validate(); err != nil {
		return model.Event{}, err
	}
	title, err := model.NewTitle(in.Title)
	if err != nil {
		return model.Event{}, err
	}

	loc := s.settings.Location()
	start := time.Date(in.Year, in.Month, in.Day, in.StartHour, in.StartMinute, 0, 0, loc)
	end := time.Date(in.Year, in.Month, in.Day, in.EndHour, in.EndMinute, 0, 0, loc)

	var rule *recurrence.Rule
	if in.Recurrent {
		if rule, err = recurrence.New(in.Recurrence); err != nil {
			return model.Event{}, err
		}
	}
	return model.NewEvent(id, title, start, end, in.Recurrent, rule)
}

func (in EventInput) validate() error {
	d := time.Date(in.Year, in.Month, in.Day, 0, 0, 0, 0, time.UTC)
	if y, m, dd := d.Date(); y != in.Year || m != in.Month || dd != in.Day {
		return fmt.Errorf("%w: no such date %04d-%02d-%02d", ErrInvalidInput, in.Year, int(in.Month), in.Day)
	}
	for _, hm := range [][2]int{{in.StartHour, in.StartMinute}, {in.EndHour, in.EndMinute}} {
		if hm[0] < 0 || hm[0] > 23 || hm[1] < 0 || hm[1] > 59 {
			return fmt.Errorf("%w: no such time %02d:%02d", ErrInvalidInput, hm[0], hm[1])
		}
	}
	return nil
}

func (s *EventService) view(e model.Event) EventView {
	loc := s.settings.Location()
	start, end := e.Start().In(loc), e.End().In(loc)

	v := EventView{
		ID:          e.ID,
		Title:       e.Title.String(),
		Year:        start.Year(),
		Month:       start.Month(),
		Day:         start.Day(),
		StartHour:   start.Hour(),
		StartMinute: start.Minute(),
		EndHour:     end.Hour(),
		EndMinute:   end.Minute(),
		Recurrent:   e.Recurrent,
	}
	if e.Recurrent {
		v.Recurrence = e.Rule.String()
	}
	return v
}

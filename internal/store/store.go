// Package store persists events.
//
// Stores assume a single writer. Read sequences are lazy and hold their
// underlying resources only while being iterated; breaking out of a range
// loop releases them.
package store

import (
	"errors"
	"iter"

	"weekcal/internal/model"
	"weekcal/internal/timerange"
)

var (
	// ErrDecode is returned when a stored row cannot be turned into an Event.
	// It aborts the read that hit it.
	ErrDecode = errors.New("decode event")
	// ErrEncode is returned when an Event cannot be serialized.
	ErrEncode = errors.New("encode event")
)

// Store is an event repository.
//
// Update and Delete identify the stored event by ID. Neither fails when no
// event with that ID exists; callers that need "must exist" semantics check
// with Find first.
type Store interface {
	Find(id model.EventID) (model.Event, bool, error)
	FindByStartDate(r timerange.Range) iter.Seq2[model.Event, error]
	HasEventInRange(r timerange.Range) (bool, error)
	All() iter.Seq2[model.Event, error]
	Insert(e model.Event) error
	Update(e model.Event) error
	Delete(e model.Event) error
	GenerateID() model.EventID
}

// IDGenerator produces fresh event IDs.
type IDGenerator interface {
	Generate() model.EventID
}

// RecurrenceChecker decides whether a recurring event starts inside a range.
// matcher.RRule implements it.
type RecurrenceChecker interface {
	IsStartDateInRange(e model.Event, r timerange.Range) (bool, error)
}

// matches applies the start-date rule shared by all stores: single events
// match on their own start, recurring ones on any occurrence.
func matches(c RecurrenceChecker, e model.Event, r timerange.Range) (bool, error) {
	if !e.Recurrent {
		return r.Includes(e.Start()), nil
	}
	return c.IsStartDateInRange(e, r)
}

// filter yields the events of seq whose start matches r. An error from seq
// or from the checker is yielded once and ends the sequence.
func filter(seq iter.Seq2[model.Event, error], c RecurrenceChecker, r timerange.Range) iter.Seq2[model.Event, error] {
	return func(yield func(model.Event, error) bool) {
		for e, err := range seq {
			if err != nil {
				yield(model.Event{}, err)
				return
			}
			ok, err := matches(c, e, r)
			if err != nil {
				yield(model.Event{}, err)
				return
			}
			if ok && !yield(e, nil) {
				return
			}
		}
	}
}

// find returns the first event of seq with the given id.
func find(seq iter.Seq2[model.Event, error], id model.EventID) (model.Event, bool, error) {
	for e, err := range seq {
		if err != nil {
			return model.Event{}, false, err
		}
		if e.ID == id {
			return e, true, nil
		}
	}
	return model.Event{}, false, nil
}

// exists reports whether seq yields at least one event, stopping at the first.
func exists(seq iter.Seq2[model.Event, error]) (bool, error) {
	for _, err := range seq {
		if err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

package store

import (
	"iter"
	"slices"

	"weekcal/internal/model"
	"weekcal/internal/timerange"
)

// MemoryStore keeps events in insertion order. It is meant for tests and
// follows the same contract as CSVStore, including Update being a no-op
// for unknown IDs.
type MemoryStore struct {
	events  []model.Event
	ids     IDGenerator
	checker RecurrenceChecker
}

func NewMemory(ids IDGenerator, checker RecurrenceChecker) *MemoryStore {
	if ids == nil {
		ids = UUIDGenerator{}
	}
	return &MemoryStore{ids: ids, checker: checker}
}

func (s *MemoryStore) Find(id model.EventID) (model.Event, bool, error) {
	return find(s.All(), id)
}

func (s *MemoryStore) FindByStartDate(r timerange.Range) iter.Seq2[model.Event, error] {
	return filter(s.All(), s.checker, r)
}

func (s *MemoryStore) HasEventInRange(r timerange.Range) (bool, error) {
	return exists(s.FindByStartDate(r))
}

// All iterates over a snapshot, so the store may be modified while ranging.
func (s *MemoryStore) All() iter.Seq2[model.Event, error] {
	snapshot := slices.Clone(s.events)
	return func(yield func(model.Event, error) bool) {
		for _, e := range snapshot {
			if !yield(e, nil) {
				return
			}
		}
	}
}

func (s *MemoryStore) Insert(e model.Event) error {
	s.events = append(s.events, e)
	return nil
}

func (s *MemoryStore) Update(e model.Event) error {
	for i := range s.events {
		if s.events[i].ID == e.ID {
			s.events[i] = e
		}
	}
	return nil
}

func (s *MemoryStore) Delete(e model.Event) error {
	s.events = slices.DeleteFunc(s.events, func(x model.Event) bool {
		return x.ID == e.ID
	})
	return nil
}

func (s *MemoryStore) GenerateID() model.EventID {
	return s.ids.Generate()
}

// Len returns the number of stored events.
func (s *MemoryStore) Len() int { return len(s.events) }

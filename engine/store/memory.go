// Package store provides SimulationStore implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/cashflow-planner/engine"
)

// =============================================================================
// MEMORY STORE - In-memory simulation store
// =============================================================================

// Memory keeps events in a single date-ordered slice.
type Memory struct {
	mu     sync.RWMutex
	events []engine.TransactionEvent
	ids    map[engine.EventID]bool
}

var _ engine.SimulationStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{ids: make(map[engine.EventID]bool)}
}

// Add inserts events atomically.
func (m *Memory) Add(_ context.Context, events ...engine.TransactionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Check every id first so a conflict writes nothing
	batch := make(map[engine.EventID]bool, len(events))
	for _, ev := range events {
		if m.ids[ev.ID] || batch[ev.ID] {
			return engine.ErrDuplicateEventID
		}
		batch[ev.ID] = true
	}

	for _, ev := range events {
		m.insertLocked(ev)
	}
	return nil
}

func (m *Memory) insertLocked(ev engine.TransactionEvent) {
	// Insert after every event on the same date to keep insertion order
	i := sort.Search(len(m.events), func(i int) bool {
		return m.events[i].Date.After(ev.Date)
	})

	m.events = append(m.events, engine.TransactionEvent{})
	copy(m.events[i+1:], m.events[i:])
	m.events[i] = ev
	m.ids[ev.ID] = true
}

// Remove deletes the event with id. Unknown ids are ignored.
func (m *Memory) Remove(_ context.Context, id engine.EventID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.ids[id] {
		return nil
	}
	for i, ev := range m.events {
		if ev.ID == id {
			m.events = append(m.events[:i], m.events[i+1:]...)
			break
		}
	}
	delete(m.ids, id)
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
	m.ids = make(map[engine.EventID]bool)
	return nil
}

func (m *Memory) Query(_ context.Context, r engine.Range) ([]engine.TransactionEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []engine.TransactionEvent{}
	if r.IsEmpty() {
		return result, nil
	}
	start := sort.Search(len(m.events), func(i int) bool {
		return m.events[i].Date.AfterOrEqual(r.Start)
	})
	for _, ev := range m.events[start:] {
		if ev.Date.After(r.End) {
			break
		}
		result = append(result, ev)
	}
	return result, nil
}

func (m *Memory) All(_ context.Context) ([]engine.TransactionEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]engine.TransactionEvent, len(m.events))
	copy(result, m.events)
	return result, nil
}

// Replace swaps the content for events. Duplicate ids are rejected and the
// previous content is kept.
func (m *Memory) Replace(_ context.Context, events []engine.TransactionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make(map[engine.EventID]bool, len(events))
	for _, ev := range events {
		if ids[ev.ID] {
			return engine.ErrDuplicateEventID
		}
		ids[ev.ID] = true
	}

	sorted := make([]engine.TransactionEvent, len(events))
	copy(sorted, events)
	engine.SortEvents(sorted)

	m.events = sorted
	m.ids = ids
	return nil
}

// Len is the number of stored events.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}

/*
store.go - Interface for the simulated event store

PURPOSE:
  Defines the boundary between the planner and wherever simulated events
  live. Recurring events are never stored: they are recomputed from
  configuration on every read. Only user-created simulations are kept.

CONTRACT:
  - Events are immutable: there is no Update. Remove and re-add instead.
  - Add of several events is all-or-nothing.
  - Remove of an unknown id is a no-op, not an error.
  - Query and All return events ascending by date; events sharing a date
    keep their insertion order.

IMPLEMENTATIONS:
  - engine/store/memory.go: In-memory, ordered insertion

SEE ALSO:
  - planner/planner.go: The only writer
  - store/sqlite/sqlite.go: Persists the store's contents as part of a state save
*/
package engine

import "context"

// =============================================================================
// SIMULATION STORE
// =============================================================================

type SimulationStore interface {
	// Add inserts events atomically. Returns ErrDuplicateEventID if any id
	// is already present, in which case nothing is written.
	Add(ctx context.Context, events ...TransactionEvent) error

	// Remove deletes the event with id, if any.
	Remove(ctx context.Context, id EventID) error

	// Clear deletes every event.
	Clear(ctx context.Context) error

	// Query returns events inside r, ascending by date.
	Query(ctx context.Context, r Range) ([]TransactionEvent, error)

	// All returns every event, ascending by date.
	All(ctx context.Context) ([]TransactionEvent, error)

	// Replace swaps the whole content for events, used when restoring state.
	Replace(ctx context.Context, events []TransactionEvent) error
}

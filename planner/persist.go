package planner

import (
	"context"
	"errors"
)

var (
	// ErrNoSavedState is returned by LoadState before anything was saved.
	ErrNoSavedState = errors.New("no saved state")

	// ErrNoPersister is returned by Save and Load on a planner built without one.
	ErrNoPersister = errors.New("planner has no persister")

	ErrDuplicateID = errors.New("duplicate id")
)

// Persister saves and loads the whole planner state atomically. There are
// no partial saves.
type Persister interface {
	SaveState(ctx context.Context, snap Snapshot) error
	LoadState(ctx context.Context) (*Snapshot, error)
}

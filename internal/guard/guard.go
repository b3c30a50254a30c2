// ABOUTME: Per-resource ownership checks run inside handlers after session verification
// ABOUTME: Existence is checked strictly before ownership so 404 and 403 stay distinct

package guard

import (
	"context"
	"errors"
	"fmt"

	"github.com/taskdeck/taskdeck/internal/store"
)

// ErrForbidden is returned when a resource exists but is owned by a
// different principal.
var ErrForbidden = errors.New("forbidden")

// OwnerStore is the narrow slice of the store the guard needs: single-column
// owner lookups by resource ID.
type OwnerStore interface {
	ProjectOwner(ctx context.Context, id string) (string, error)
	TaskOwner(ctx context.Context, id string) (string, error)
}

// Guard enforces per-resource ownership. It must be invoked in every handler
// that reads, mutates, or deletes a specific project or task, after the
// session verifier has produced a principal.
type Guard struct {
	store OwnerStore
}

// New creates a Guard backed by the given store.
func New(s OwnerStore) *Guard {
	return &Guard{store: s}
}

// Project checks that the project exists and is owned by principalID.
// Returns store.ErrNotFound if the project is absent, ErrForbidden if it is
// owned by someone else, nil if the operation may proceed. The ordering is
// fixed: the existence check precedes the ownership comparison.
//
// For task creation this same check runs against the referenced parent
// project before the task row is persisted.
func (g *Guard) Project(ctx context.Context, principalID, projectID string) error {
	owner, err := g.store.ProjectOwner(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.ErrNotFound
		}
		return fmt.Errorf("loading project owner: %w", err)
	}
	if owner != principalID {
		return ErrForbidden
	}
	return nil
}

// Task checks that the task exists and is owned by principalID, with the
// same ordering and outcomes as Project.
func (g *Guard) Task(ctx context.Context, principalID, taskID string) error {
	owner, err := g.store.TaskOwner(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.ErrNotFound
		}
		return fmt.Errorf("loading task owner: %w", err)
	}
	if owner != principalID {
		return ErrForbidden
	}
	return nil
}

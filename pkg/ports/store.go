package ports

import (
	"context"

	"github.com/aretw0/ticketflow/pkg/domain"
)

// SnapshotStore persists the automaton position of each session so that a
// session can be resumed by any replica, or after a restart.
type SnapshotStore interface {
	// Save persists the snapshot for a given session ID, replacing any previous one.
	Save(ctx context.Context, sessionID string, snap *domain.Snapshot) error

	// Load retrieves the snapshot for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Snapshot, error)

	// Delete removes the snapshot for a given session ID.
	// Deleting an unknown session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of every stored session.
	List(ctx context.Context) ([]string, error)
}

package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore
// implementation adheres to the interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	sessionID := "contract-" + time.Now().Format("20060102150405.000000")

	t.Run("Save and Load", func(t *testing.T) {
		snap := &domain.Snapshot{
			SessionID: sessionID,
			Current:   "logged_in",
			Trace:     []domain.State{"start", "start", "logged_in"},
			UpdatedAt: time.Now().UTC().Truncate(time.Second),
		}

		require.NoError(t, store.Save(ctx, sessionID, snap))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, sessionID, loaded.SessionID)
		assert.Equal(t, snap.Current, loaded.Current)
		assert.Equal(t, snap.Trace, loaded.Trace)
		assert.True(t, snap.UpdatedAt.Equal(loaded.UpdatedAt), "updated_at %s != %s", snap.UpdatedAt, loaded.UpdatedAt)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, domain.NewSnapshot(sessionID, "start")))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, domain.State("start"), loaded.Current)
		assert.Equal(t, []domain.State{"start"}, loaded.Trace)
	})

	t.Run("Loaded Copy Is Detached", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, domain.NewSnapshot(sessionID, "start")))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Trace[0] = "tampered"

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, []domain.State{"start"}, again.Trace)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, domain.NewSnapshot(sessionID, "start")))

		require.NoError(t, store.Delete(ctx, sessionID))

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, domain.NewSnapshot(id1, "start")))
		require.NoError(t, store.Save(ctx, id2, domain.NewSnapshot(id2, "start")))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
		assert.NotContains(t, sessions, sessionID, "deleted sessions are not listed")
	})

	t.Run("Reserved-Looking IDs", func(t *testing.T) {
		ids := []string{"index", "idx", "lock:" + sessionID, "s:" + sessionID, sessionID + "-plain"}
		for _, id := range ids {
			require.NoError(t, store.Save(ctx, id, domain.NewSnapshot(id, "start")), id)
		}
		defer func() {
			for _, id := range ids {
				_ = store.Delete(ctx, id)
			}
		}()

		for _, id := range ids {
			loaded, err := store.Load(ctx, id)
			require.NoError(t, err, id)
			assert.Equal(t, id, loaded.SessionID)
		}
		sessions, err := store.List(ctx)
		require.NoError(t, err)
		for _, id := range ids {
			assert.Contains(t, sessions, id)
		}
	})
}

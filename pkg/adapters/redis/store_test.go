package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/ticketflow/pkg/adapters/redis"
	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/aretw0/ticketflow/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunSnapshotStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)
	now := time.Now()
	clock := func() time.Time { return now }

	store := redis.NewFromClient(client, redis.WithTTL(time.Second), redis.WithClock(clock))
	ctx := context.Background()
	sessionID := "session-ttl"

	require.NoError(t, store.Save(ctx, sessionID, domain.NewSnapshot(sessionID, "start")))

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, sessions, sessionID)

	// Expire the key in redis and move our clock past the index score.
	mr.FastForward(2 * time.Second)
	now = now.Add(2 * time.Second)

	_, err = store.Load(ctx, sessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	sessions, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "my-session", domain.NewSnapshot("my-session", "start")))

	assert.True(t, mr.Exists("custom:app:s:my-session"), "snapshot key uses the custom prefix")
	assert.True(t, mr.Exists("custom:app:idx"), "index uses the custom prefix")

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"my-session"}, list)
}

func TestRedisStore_NoTTLNeverPruned(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "forever", domain.NewSnapshot("forever", "start")))
	mr.FastForward(24 * time.Hour)

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"forever"}, list)
	assert.Equal(t, time.Duration(0), mr.TTL(redis.DefaultPrefix+"s:forever"))
}

func TestRedisStore_SessionIDsCannotClobberIndexOrLocks(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("app:"))
	locker := redis.NewLocker(client, "app:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "alice", time.Minute)
	require.NoError(t, err)
	defer unlock(ctx)

	for _, id := range []string{"alice", "index", "idx", "lock:alice", "s:alice"} {
		require.NoError(t, store.Save(ctx, id, domain.NewSnapshot(id, "start")), id)
	}

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "index", "idx", "lock:alice", "s:alice"}, list)
	assert.True(t, mr.Exists("app:lock:alice"), "the lock survives a session named like it")

	loaded, err := store.Load(ctx, "lock:alice")
	require.NoError(t, err)
	assert.Equal(t, "lock:alice", loaded.SessionID)
}

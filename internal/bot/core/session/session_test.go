package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/rueidis"
	"github.com/robalyx/overseer/internal/bot/core/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const stateAwaitingReason session.State = "awaiting_reason"

var (
	taskIDKey   = session.NewKey[int64]("task_id")
	deadlineKey = session.NewKey[time.Time]("deadline")
	reasonKey   = session.NewKey[string]("reason")
)

func newRedisStore(t *testing.T) (*session.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return session.NewRedisStore(client), mr
}

func TestSessionRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, mr := newRedisStore(t)
	manager := session.NewManager(store, time.Hour, zaptest.NewLogger(t))

	s, err := manager.Get(ctx, 100, 7)
	require.NoError(t, err)
	assert.Equal(t, session.StateNone, s.State())

	deadline := time.Date(2099, 12, 31, 23, 59, 59, 0, time.UTC)
	s.SetState(stateAwaitingReason)
	taskIDKey.Set(s, 9876543210)
	deadlineKey.Set(s, deadline)
	reasonKey.Set(s, "client unavailable")
	require.NoError(t, s.Save(ctx))

	assert.True(t, mr.Exists(session.StorageKey(100, 7)))
	assert.Equal(t, time.Hour, mr.TTL(session.StorageKey(100, 7)))

	loaded, err := manager.Get(ctx, 100, 7)
	require.NoError(t, err)
	assert.Equal(t, stateAwaitingReason, loaded.State())
	assert.Equal(t, int64(9876543210), taskIDKey.Get(loaded))
	assert.True(t, deadline.Equal(deadlineKey.Get(loaded)))
	assert.Equal(t, "client unavailable", reasonKey.Get(loaded))

	// Sessions are scoped per chat
	other, err := manager.Get(ctx, 200, 7)
	require.NoError(t, err)
	_, ok := taskIDKey.Lookup(other)
	assert.False(t, ok)
}

func TestSessionExpires(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, mr := newRedisStore(t)
	manager := session.NewManager(store, 10*time.Minute, zaptest.NewLogger(t))

	s, err := manager.Get(ctx, 1, 1)
	require.NoError(t, err)
	s.SetState(stateAwaitingReason)
	require.NoError(t, s.Save(ctx))

	mr.FastForward(11 * time.Minute)

	loaded, err := manager.Get(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, session.StateNone, loaded.State())
}

func TestSessionReset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, mr := newRedisStore(t)
	manager := session.NewManager(store, time.Hour, zaptest.NewLogger(t))

	s, err := manager.Get(ctx, 1, 1)
	require.NoError(t, err)
	s.SetState(stateAwaitingReason)
	taskIDKey.Set(s, 5)
	require.NoError(t, s.Save(ctx))

	s.Reset()
	require.NoError(t, s.Save(ctx))
	assert.False(t, mr.Exists(session.StorageKey(1, 1)))

	loaded, err := manager.Get(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, session.StateNone, loaded.State())
	assert.Zero(t, taskIDKey.Get(loaded))
}

func TestCorruptSessionIsDiscarded(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, mr := newRedisStore(t)
	require.NoError(t, mr.Set(session.StorageKey(1, 1), "{not json"))

	manager := session.NewManager(store, time.Hour, zaptest.NewLogger(t))

	s, err := manager.Get(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, session.StateNone, s.State())
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := session.NewMemoryStore()

	data, err := store.Load(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, store.Save(ctx, "k", []byte("v"), time.Hour))
	data, err = store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), data)

	require.NoError(t, store.Save(ctx, "short", []byte("v"), time.Nanosecond))
	time.Sleep(time.Millisecond)
	data, err = store.Load(ctx, "short")
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, store.Delete(ctx, "k"))
	data, err = store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, data)

	require.ErrorIs(t, store.Save(ctx, "k", nil, 0), session.ErrInvalidTTL)
}

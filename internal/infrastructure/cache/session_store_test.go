package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authlab/members/internal/core/domain"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	store, err := NewSessionStore(context.Background(), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSessionStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	expires := time.Now().Add(time.Hour).UTC()

	require.NoError(t, store.Save(ctx, &domain.Session{ID: "abc", Authenticated: true, Name: "alice", ExpiresAt: expires}))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Name)
	assert.True(t, got.Authenticated)
	assert.True(t, got.ExpiresAt.Equal(expires))
}

func TestSessionStore_MissingAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	require.NoError(t, store.Delete(ctx, "nope"))

	require.NoError(t, store.Save(ctx, &domain.Session{ID: "x", ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, store.Delete(ctx, "x"))
	_, err = store.Get(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionStore_ExpiredOnRead(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Save(ctx, &domain.Session{ID: "old", Authenticated: true, ExpiresAt: now.Add(time.Minute)}))

	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err := store.Get(ctx, "old")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

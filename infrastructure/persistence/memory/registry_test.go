package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mindmapx/application/session"
	pkgerrors "mindmapx/pkg/errors"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newSession(id string, clock *fakeClock) *session.Session {
	return session.New(id, nil, zap.NewNop(), session.WithClock(clock.Now))
}

func TestRegistry_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	closed := 0
	store := NewSessionStore(time.Hour, zap.NewNop(), func() { closed++ },
		WithClock[*session.Session](clock.Now))

	s := newSession("a", clock)
	require.NoError(t, store.Save(ctx, s))
	assert.Equal(t, 1, store.Count())

	err := store.Save(ctx, newSession("a", clock))
	assert.True(t, pkgerrors.IsConflict(err))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = store.Get(ctx, "missing")
	assert.True(t, pkgerrors.IsNotFound(err))

	require.NoError(t, store.Delete(ctx, "a"))
	assert.Equal(t, 1, closed)
	assert.Equal(t, 0, store.Count())
	assert.True(t, pkgerrors.IsNotFound(store.Delete(ctx, "a")))
}

func TestRegistry_Expiry(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	closed := 0
	store := &SessionStore{Registry: NewRegistry[*session.Session](
		30*time.Minute, zap.NewNop(),
		WithClock[*session.Session](clock.Now),
		WithEvictHook(func(*session.Session) { closed++ }),
	)}

	idle := newSession("idle", clock)
	busy := newSession("busy", clock)
	require.NoError(t, store.Save(ctx, idle))
	require.NoError(t, store.Save(ctx, busy))

	clock.Advance(20 * time.Minute)
	busy.Start(ctx)
	clock.Advance(20 * time.Minute)

	_, err := store.Get(ctx, "idle")
	assert.True(t, pkgerrors.IsNotFound(err), "expired sessions are hidden before the sweep")
	assert.Equal(t, 2, store.Count())

	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, closed)
	assert.Equal(t, 1, store.Count())

	_, err = store.Get(ctx, "busy")
	assert.NoError(t, err)
}

func TestRegistry_ZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	store := &SessionStore{Registry: NewRegistry[*session.Session](0, zap.NewNop(),
		WithClock[*session.Session](clock.Now))}

	require.NoError(t, store.Save(ctx, newSession("a", clock)))
	clock.Advance(1000 * time.Hour)

	assert.Equal(t, 0, store.Sweep())
	_, err := store.Get(ctx, "a")
	assert.NoError(t, err)
}

func TestRegistry_StartStop(t *testing.T) {
	store := NewSessionStore(time.Millisecond, zap.NewNop(), nil)
	store.Start(time.Millisecond)
	store.Stop()
	store.Stop()
}

func TestSessionStore_ExpiresOnInjectedClock(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	closed := 0
	store := NewSessionStore(time.Hour, zap.NewNop(), func() { closed++ },
		WithClock[*session.Session](clock.Now))

	require.NoError(t, store.Save(ctx, newSession("a", clock)))

	clock.Advance(59 * time.Minute)
	_, err := store.Get(ctx, "a")
	require.NoError(t, err, "sessions stamped by the same clock are fresh")

	clock.Advance(2 * time.Minute)
	_, err = store.Get(ctx, "a")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeSessionNotFound))
	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, closed)
}

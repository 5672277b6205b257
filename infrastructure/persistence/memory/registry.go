// Package memory keeps live sessions in process memory with idle expiry.
package memory

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"mindmapx/application/ports"
	"mindmapx/application/session"
	pkgerrors "mindmapx/pkg/errors"
)

// Registry holds items by id and evicts those idle longer than the TTL.
// A zero TTL disables expiry.
type Registry[T ports.SessionHandle] struct {
	mu      sync.RWMutex
	items   map[string]T
	ttl     time.Duration
	now     func() time.Time
	onEvict func(T)
	logger  *zap.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

// Option configures a Registry
type Option[T ports.SessionHandle] func(*Registry[T])

// WithClock replaces time.Now
func WithClock[T ports.SessionHandle](now func() time.Time) Option[T] {
	return func(r *Registry[T]) { r.now = now }
}

// WithEvictHook is called for every item removed by Delete or expiry
func WithEvictHook[T ports.SessionHandle](fn func(T)) Option[T] {
	return func(r *Registry[T]) { r.onEvict = fn }
}

// NewRegistry creates a registry. Call Start to run the cleanup loop.
func NewRegistry[T ports.SessionHandle](ttl time.Duration, logger *zap.Logger, opts ...Option[T]) *Registry[T] {
	r := &Registry[T]{
		items:  make(map[string]T),
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
		stop:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Save stores item; ids are unique
func (r *Registry[T]) Save(_ context.Context, item T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID()]; exists {
		return pkgerrors.NewConflictError("session already exists").WithCode(pkgerrors.CodeSessionExists)
	}
	r.items[item.ID()] = item
	return nil
}

// Get returns the item or a not-found error. Expired items are not returned
// even before the cleanup loop has removed them.
func (r *Registry[T]) Get(_ context.Context, id string) (T, error) {
	r.mu.RLock()
	item, exists := r.items[id]
	r.mu.RUnlock()

	var zero T
	if !exists || r.expired(item, r.now()) {
		return zero, pkgerrors.NewSessionNotFoundError(id)
	}
	return item, nil
}

// Delete removes and closes the item
func (r *Registry[T]) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	item, exists := r.items[id]
	delete(r.items, id)
	r.mu.Unlock()

	if !exists {
		return pkgerrors.NewSessionNotFoundError(id)
	}
	r.evict(item)
	return nil
}

// Count returns the number of stored items, expired ones included
func (r *Registry[T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Sweep removes every expired item and returns how many went
func (r *Registry[T]) Sweep() int {
	now := r.now()

	r.mu.Lock()
	var gone []T
	for id, item := range r.items {
		if r.expired(item, now) {
			gone = append(gone, item)
			delete(r.items, id)
		}
	}
	r.mu.Unlock()

	for _, item := range gone {
		r.evict(item)
	}
	if len(gone) > 0 {
		r.logger.Info("Expired idle sessions", zap.Int("count", len(gone)))
	}
	return len(gone)
}

// Start runs Sweep every interval until Stop is called
func (r *Registry[T]) Start(interval time.Duration) {
	if r.ttl <= 0 || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.Sweep()
			case <-r.stop:
				return
			}
		}
	}()
}

// Stop ends the cleanup loop
func (r *Registry[T]) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

func (r *Registry[T]) expired(item T, now time.Time) bool {
	return r.ttl > 0 && now.Sub(item.LastActive()) > r.ttl
}

func (r *Registry[T]) evict(item T) {
	item.Close()
	if r.onEvict != nil {
		r.onEvict(item)
	}
}

// SessionStore is the session repository backed by a Registry
type SessionStore struct {
	*Registry[*session.Session]
}

var _ session.Repository = (*SessionStore)(nil)

// NewSessionStore creates a session store. onEvict may be nil. Extra
// options such as WithClock apply after the eviction hook.
func NewSessionStore(ttl time.Duration, logger *zap.Logger, onEvict func(), extra ...Option[*session.Session]) *SessionStore {
	opts := make([]Option[*session.Session], 0, len(extra)+1)
	if onEvict != nil {
		opts = append(opts, WithEvictHook(func(*session.Session) { onEvict() }))
	}
	opts = append(opts, extra...)
	return &SessionStore{Registry: NewRegistry[*session.Session](ttl, logger, opts...)}
}

package ports

import (
	"context"
	"time"

	"mindmapx/domain/events"
)

// EventPublisher delivers committed domain events to observers.
// This is a port in hexagonal architecture - the session doesn't know who listens
type EventPublisher interface {
	// Publish sends events recorded by one command, in order
	Publish(ctx context.Context, sessionID string, evts []events.DomainEvent) error
}

// SessionHandle is the part of a session a registry needs for expiry
type SessionHandle interface {
	ID() string
	LastActive() time.Time
	Close()
}

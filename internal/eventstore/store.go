// Package eventstore persists the history of engine generation builds and keeps a
// per-root read model of the latest outcome.
package eventstore

import (
	"context"
	"time"
)

// Store defines the interface for persisting and retrieving generation events.
type Store interface {
	// Append adds a new event to the store and returns its ID.
	Append(ctx context.Context, ev Event) (int64, error)

	// ByRoot returns the newest events for a root, newest first. limit <= 0 returns all.
	ByRoot(ctx context.Context, root string, limit int) ([]Event, error)

	// Range returns events within a time range in insertion order.
	Range(ctx context.Context, start, end time.Time) ([]Event, error)

	// Close closes the store and releases resources.
	Close() error
}

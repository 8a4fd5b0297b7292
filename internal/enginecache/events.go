package enginecache

import (
	"context"
	"time"
)

// EventKind distinguishes generation events.
type EventKind string

const (
	GenerationBuilt  EventKind = "GenerationBuilt"
	GenerationFailed EventKind = "GenerationFailed"
)

// Event describes a finished generation build.
type Event struct {
	Kind       EventKind
	Root       string
	EntryPoint string
	Generation string
	Entries    int
	Duration   time.Duration
	Err        error
	At         time.Time
}

// Listener observes generation builds. Listeners run synchronously on the build
// path and should not block for long.
type Listener interface {
	OnGeneration(ctx context.Context, ev Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ctx context.Context, ev Event)

func (f ListenerFunc) OnGeneration(ctx context.Context, ev Event) { f(ctx, ev) }

func (c *Cache) notify(ctx context.Context, ev Event) {
	for _, l := range c.listeners {
		l.OnGeneration(ctx, ev)
	}
}

// Package enginecache keeps one initialized engine per content root and rebuilds
// it when an invalidation collaborator reports the root as stale.
package enginecache

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"git.home.luguber.info/inful/flatsite/internal/engine"
	ferrors "git.home.luguber.info/inful/flatsite/internal/foundation/errors"
	"git.home.luguber.info/inful/flatsite/internal/logfields"
	"git.home.luguber.info/inful/flatsite/internal/metrics"
	"git.home.luguber.info/inful/flatsite/internal/registry"
)

// Invalidator tracks freshness of cached roots. Implementations must be safe for
// concurrent use.
type Invalidator interface {
	// MarkFresh records that root was just built from entryPoint.
	MarkFresh(root, entryPoint string)
	// IsExpired reports whether the cached engine for root must be rebuilt.
	IsExpired(root string) bool
}

// Preparer is implemented by invalidators that must start tracking a root before
// it is built. Changes seen between Prepare and MarkFresh keep the root expired.
type Preparer interface {
	Prepare(root, entryPoint string)
}

// Hook customizes a freshly constructed engine before it is initialized.
type Hook func(e *engine.Engine) error

// Cache maps content roots to initialized engines.
type Cache struct {
	mu        sync.Mutex
	engines   map[string]*engine.Engine
	flights   singleflight.Group
	listeners []Listener

	invalidator Invalidator
	disabled    bool
	engineOpts  engine.Options
	recorder    metrics.Recorder
}

// Option configures a Cache.
type Option func(*Cache)

// WithInvalidator installs the freshness collaborator. Without one every lookup
// rebuilds.
func WithInvalidator(inv Invalidator) Option { return func(c *Cache) { c.invalidator = inv } }

// WithEngineOptions sets the options new engines are created with.
func WithEngineOptions(opts engine.Options) Option { return func(c *Cache) { c.engineOpts = opts } }

// WithRecorder reports cache lookups and generation builds.
func WithRecorder(r metrics.Recorder) Option { return func(c *Cache) { c.recorder = r } }

// WithListener registers a generation listener.
func WithListener(l Listener) Option {
	return func(c *Cache) { c.listeners = append(c.listeners, l) }
}

// Disabled makes every lookup rebuild.
func Disabled(disabled bool) Option { return func(c *Cache) { c.disabled = disabled } }

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{engines: make(map[string]*engine.Engine)}
	for _, opt := range opts {
		opt(c)
	}
	c.recorder = metrics.OrNoop(c.recorder)
	if c.engineOpts.Recorder == nil {
		c.engineOpts.Recorder = c.recorder
	}
	return c
}

// Key is the cache key of root: cleaned and case-folded.
func Key(root string) string {
	return registry.Fold(filepath.Clean(root))
}

// Get returns the engine for root, building it when absent or expired. Concurrent
// callers for the same root share one build. A failed build is not cached.
func (c *Cache) Get(ctx context.Context, root, entryPoint string, hook Hook) (*engine.Engine, error) {
	key := Key(root)

	c.mu.Lock()
	if c.disabled || c.invalidator == nil || c.invalidator.IsExpired(root) {
		if _, ok := c.engines[key]; ok {
			delete(c.engines, key)
			c.recorder.IncCacheLookup(metrics.CacheEvicted)
			slog.Debug("Engine evicted", logfields.Root(root))
		}
	}
	if e, ok := c.engines[key]; ok {
		c.mu.Unlock()
		c.recorder.IncCacheLookup(metrics.CacheHit)
		return e, nil
	}
	c.mu.Unlock()
	c.recorder.IncCacheLookup(metrics.CacheMiss)

	// The build is shared, so it must outlive the context of the caller that started it.
	buildCtx := context.WithoutCancel(ctx)
	v, err, _ := c.flights.Do(key, func() (any, error) {
		// A flight that finished after our miss may already have stored a fresh engine.
		if e, ok := c.fresh(key, root); ok {
			return e, nil
		}
		return c.build(buildCtx, key, root, entryPoint, hook)
	})
	if err != nil {
		return nil, err
	}
	return v.(*engine.Engine), nil
}

func (c *Cache) fresh(key, root string) (*engine.Engine, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.engines[key]
	if !ok || c.disabled || c.invalidator == nil || c.invalidator.IsExpired(root) {
		return nil, false
	}
	return e, true
}

func (c *Cache) build(ctx context.Context, key, root, entryPoint string, hook Hook) (*engine.Engine, error) {
	if p, ok := c.invalidator.(Preparer); ok {
		p.Prepare(root, entryPoint)
	}
	start := time.Now()
	e := engine.New(root, c.engineOpts)

	err := c.initialize(ctx, e, hook)
	duration := time.Since(start)
	c.recorder.ObserveBuildDuration(duration)
	if err != nil {
		c.recorder.IncBuildOutcome(metrics.BuildFailed)
		slog.Error("Engine generation failed", logfields.Root(root), logfields.Error(err))
		c.notify(ctx, Event{
			Kind: GenerationFailed, Root: root, EntryPoint: entryPoint,
			Generation: e.ID(), Duration: duration, Err: err, At: time.Now(),
		})
		return nil, err
	}

	c.mu.Lock()
	c.engines[key] = e
	c.mu.Unlock()
	if c.invalidator != nil {
		c.invalidator.MarkFresh(root, entryPoint)
	}
	c.recorder.IncBuildOutcome(metrics.BuildSuccess)
	c.recorder.SetEntries(root, len(e.Entries()))
	c.notify(ctx, Event{
		Kind: GenerationBuilt, Root: root, EntryPoint: entryPoint,
		Generation: e.ID(), Entries: len(e.Entries()), Duration: duration, At: time.Now(),
	})
	return e, nil
}

func (c *Cache) initialize(ctx context.Context, e *engine.Engine, hook Hook) error {
	if hook != nil {
		if err := hook(e); err != nil {
			return ferrors.ConfigError("engine hook failed").
				WithCause(err).
				WithContext("root", e.RootDirectory()).
				Build()
		}
	}
	return e.Initialize(ctx)
}

// Peek returns the cached engine for root without building or checking expiry.
func (c *Cache) Peek(root string) (*engine.Engine, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.engines[Key(root)]
	return e, ok
}

// Evict drops the cached engine for root.
func (c *Cache) Evict(root string) {
	c.mu.Lock()
	delete(c.engines, Key(root))
	c.mu.Unlock()
}

// Len returns the number of cached engines.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.engines)
}

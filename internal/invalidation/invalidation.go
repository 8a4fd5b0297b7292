// Package invalidation provides the freshness collaborators used by the engine
// cache: absolute TTL expiry, file system watching, and combinations of both.
package invalidation

import (
	"sync"
	"time"

	"git.home.luguber.info/inful/flatsite/internal/enginecache"
	"git.home.luguber.info/inful/flatsite/internal/registry"
)

var (
	_ enginecache.Invalidator = (*TTL)(nil)
	_ enginecache.Invalidator = (*Watcher)(nil)
	_ enginecache.Invalidator = Chain(nil)
	_ enginecache.Invalidator = Always{}

	_ enginecache.Preparer = (*Watcher)(nil)
	_ enginecache.Preparer = Chain(nil)
)

// DefaultTTL is the lifetime of a generation when none is configured.
const DefaultTTL = 60 * time.Minute

// TTL expires a root a fixed duration after it was marked fresh. Unknown roots
// are expired.
type TTL struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	expires map[string]time.Time
}

// NewTTL creates a TTL invalidator; ttl <= 0 selects DefaultTTL.
func NewTTL(ttl time.Duration) *TTL {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TTL{ttl: ttl, now: time.Now, expires: make(map[string]time.Time)}
}

func (t *TTL) MarkFresh(root, _ string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.expires[registry.Fold(root)] = t.now().Add(t.ttl)
}

func (t *TTL) IsExpired(root string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	exp, ok := t.expires[registry.Fold(root)]
	return !ok || !t.now().Before(exp)
}

// Chain is expired when any member is expired. MarkFresh reaches every member.
type Chain []enginecache.Invalidator

func (c Chain) MarkFresh(root, entryPoint string) {
	for _, inv := range c {
		inv.MarkFresh(root, entryPoint)
	}
}

// Prepare reaches every member that tracks builds in progress.
func (c Chain) Prepare(root, entryPoint string) {
	for _, inv := range c {
		if p, ok := inv.(enginecache.Preparer); ok {
			p.Prepare(root, entryPoint)
		}
	}
}

func (c Chain) IsExpired(root string) bool {
	for _, inv := range c {
		if inv.IsExpired(root) {
			return true
		}
	}
	return false
}

// Always reports every root as expired, so every lookup rebuilds.
type Always struct{}

func (Always) MarkFresh(string, string) {}
func (Always) IsExpired(string) bool    { return true }

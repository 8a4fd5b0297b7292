package eventstore

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"git.home.luguber.info/inful/flatsite/internal/enginecache"
	"git.home.luguber.info/inful/flatsite/internal/registry"
)

const (
	statusBuilt  = "built"
	statusFailed = "failed"
)

// RootSummary is the read model for one root: its latest generation outcome and
// running counters.
type RootSummary struct {
	Root           string    `json:"root"`
	Status         string    `json:"status"`
	Generation     string    `json:"generation,omitempty"`
	Entries        int       `json:"entries"`
	DurationMS     int64     `json:"duration_ms"`
	LastBuiltAt    time.Time `json:"last_built_at"`
	LastError      string    `json:"last_error,omitempty"`
	Builds         int       `json:"builds"`
	Failures       int       `json:"failures"`
	LastFailedAt   time.Time `json:"last_failed_at,omitzero"`
	LastGeneration time.Time `json:"last_generation_at,omitzero"`
}

// HistoryProjection keeps the latest summary per root, reconstructed from events
// stored in the event store.
type HistoryProjection struct {
	mu       sync.RWMutex
	store    Store
	roots    map[string]*RootSummary // folded root -> summary
	lastSync time.Time
}

// NewHistoryProjection creates a projection backed by the given store.
func NewHistoryProjection(store Store) *HistoryProjection {
	return &HistoryProjection{store: store, roots: make(map[string]*RootSummary)}
}

// Rebuild reconstructs the projection from all events in the store.
func (p *HistoryProjection) Rebuild(ctx context.Context) error {
	events, err := p.store.Range(ctx, time.Time{}, time.Now().Add(time.Hour))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.roots = make(map[string]*RootSummary)
	for _, ev := range events {
		p.applyLocked(ev)
	}
	p.lastSync = time.Now()
	return nil
}

// Apply processes a single event and updates the projection.
func (p *HistoryProjection) Apply(ev Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyLocked(ev)
}

func (p *HistoryProjection) applyLocked(ev Event) {
	kind := enginecache.EventKind(ev.Type)
	if ev.Root == "" || (kind != enginecache.GenerationBuilt && kind != enginecache.GenerationFailed) {
		return
	}
	payload, err := ev.Decode()
	if err != nil {
		return
	}
	key := registry.Fold(ev.Root)
	summary, ok := p.roots[key]
	if !ok {
		summary = &RootSummary{Root: ev.Root}
		p.roots[key] = summary
	}

	switch kind {
	case enginecache.GenerationBuilt:
		summary.Status = statusBuilt
		summary.Generation = ev.Generation
		summary.Entries = payload.Entries
		summary.DurationMS = payload.DurationMS
		summary.LastBuiltAt = ev.Timestamp
		summary.LastError = ""
		summary.Builds++
	case enginecache.GenerationFailed:
		summary.Status = statusFailed
		summary.LastError = payload.Error
		summary.LastFailedAt = ev.Timestamp
		summary.Failures++
	}
	summary.LastGeneration = ev.Timestamp
}

// Root returns a copy of the summary for root.
func (p *HistoryProjection) Root(root string) (*RootSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	summary, ok := p.roots[registry.Fold(root)]
	if !ok {
		return nil, false
	}
	cp := *summary
	return &cp, true
}

// Roots returns copies of every summary, most recently generated first.
func (p *HistoryProjection) Roots() []*RootSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*RootSummary, 0, len(p.roots))
	for _, key := range slices.Sorted(maps.Keys(p.roots)) {
		cp := *p.roots[key]
		out = append(out, &cp)
	}
	slices.SortStableFunc(out, func(a, b *RootSummary) int {
		return b.LastGeneration.Compare(a.LastGeneration)
	})
	return out
}

// LastSyncTime returns when the projection was last rebuilt.
func (p *HistoryProjection) LastSyncTime() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastSync
}

package eventstore

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/flatsite/internal/enginecache"
	"git.home.luguber.info/inful/flatsite/internal/logfields"
)

var _ enginecache.Listener = (*Journal)(nil)

// Journal records every generation event in the store and the projection.
// Persistence failures are logged and never fail the build.
type Journal struct {
	store      Store
	projection *HistoryProjection
}

// NewJournal creates a journal writing to store. projection may be nil.
func NewJournal(store Store, projection *HistoryProjection) *Journal {
	return &Journal{store: store, projection: projection}
}

func (j *Journal) OnGeneration(ctx context.Context, ev enginecache.Event) {
	rec, err := FromGeneration(ev)
	if err != nil {
		slog.Warn("Failed to encode generation event", logfields.Root(ev.Root), logfields.Error(err))
		return
	}
	id, err := j.store.Append(context.WithoutCancel(ctx), rec)
	if err != nil {
		slog.Warn("Failed to record generation event", logfields.Root(ev.Root), logfields.Error(err))
		return
	}
	rec.ID = id
	if j.projection != nil {
		j.projection.Apply(rec)
	}
}

// Projection returns the read model maintained by the journal.
func (j *Journal) Projection() *HistoryProjection { return j.projection }

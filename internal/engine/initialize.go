package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/flatsite/internal/entry"
	ferrors "git.home.luguber.info/inful/flatsite/internal/foundation/errors"
	"git.home.luguber.info/inful/flatsite/internal/index"
	"git.home.luguber.info/inful/flatsite/internal/logfields"
	"git.home.luguber.info/inful/flatsite/internal/postprocess"
	"git.home.luguber.info/inful/flatsite/internal/registry"
	"git.home.luguber.info/inful/flatsite/internal/route"
)

// Stage names reported to the metrics recorder.
const (
	StageRoutes      = "routes"
	StageCrawl       = "crawl"
	StagePostProcess = "postprocess"
	StageIndex       = "index"
)

// Initialize builds the generation: compile routes, run every crawler in
// registration order, post-process the concatenated result, build every index,
// then freeze the registries. It may be called once.
func (e *Engine) Initialize(ctx context.Context) error {
	if e.initialized.Load() || e.routes.Frozen() {
		return ferrors.InternalError("engine already initialized").
			WithCause(ErrInitialized).
			WithContext("root", e.root).
			Build()
	}
	start := time.Now()

	var router *route.Router
	if err := e.stage(StageRoutes, func() (err error) {
		router, err = route.Compile(e.routes)
		return err
	}); err != nil {
		return err
	}

	var entries []*entry.Entry
	if err := e.stage(StageCrawl, func() (err error) {
		entries, err = e.crawl(ctx)
		return err
	}); err != nil {
		return err
	}

	if err := e.stage(StagePostProcess, func() (err error) {
		entries, err = postprocess.Run(e.postProcessors, entries)
		return err
	}); err != nil {
		return err
	}

	indexes := make(map[string]*index.Lookup, e.indexers.Len())
	_ = e.stage(StageIndex, func() error {
		for name, indexer := range e.indexers.All() {
			indexes[registry.Fold(name)] = indexer(entries)
		}
		return nil
	})

	e.freeze()
	e.router = router
	e.entries = entries
	e.indexes = indexes
	e.stats = Stats{
		Entries:  len(entries),
		Indexes:  make(map[string]int, len(indexes)),
		Duration: time.Since(start),
		BuiltAt:  time.Now(),
	}
	for _, name := range e.indexers.Keys() {
		e.stats.Indexes[name] = indexes[registry.Fold(name)].Len()
	}
	e.initialized.Store(true)

	slog.Info("Engine generation built",
		logfields.Root(e.root),
		logfields.Generation(e.id),
		logfields.Count(len(entries)),
		logfields.DurationMS(float64(e.stats.Duration.Microseconds())/1000))
	return nil
}

func (e *Engine) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	e.recorder.ObserveStageDuration(name, time.Since(start))
	if err != nil {
		slog.Warn("Engine stage failed",
			logfields.Root(e.root),
			logfields.Stage(name),
			logfields.Error(err))
	}
	return err
}

func (e *Engine) crawl(ctx context.Context) ([]*entry.Entry, error) {
	var all []*entry.Entry
	for name, crawler := range e.crawlers.All() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		found, err := crawler(ctx, e)
		if err != nil && ferrors.IsClassified(err) {
			return nil, fmt.Errorf("crawler %s: %w", name, err)
		}
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryCrawl, "crawler failed").
				WithContext("crawler", name).
				WithContext("root", e.root).
				Build()
		}
		slog.Debug("Crawler finished", logfields.Crawler(name), logfields.Count(len(found)))
		all = append(all, found...)
	}
	return all, nil
}

func (e *Engine) freeze() {
	e.converters.Freeze()
	e.indexers.Freeze()
	e.postProcessors.Freeze()
	e.formatters.Freeze()
	e.crawlers.Freeze()
	e.routes.Freeze()
	e.viewSelectors.Freeze()
}

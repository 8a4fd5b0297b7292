package commands

import (
	"context"
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/flatsite/internal/config"
	"git.home.luguber.info/inful/flatsite/internal/engine"
	"git.home.luguber.info/inful/flatsite/internal/enginecache"
	"git.home.luguber.info/inful/flatsite/internal/eventstore"
	"git.home.luguber.info/inful/flatsite/internal/gitmeta"
	"git.home.luguber.info/inful/flatsite/internal/invalidation"
	"git.home.luguber.info/inful/flatsite/internal/logfields"
	"git.home.luguber.info/inful/flatsite/internal/markdown"
	"git.home.luguber.info/inful/flatsite/internal/metrics"
	"git.home.luguber.info/inful/flatsite/internal/notify"
	"git.home.luguber.info/inful/flatsite/internal/site"
)

// stack is the wired runtime behind every command that reads content.
type stack struct {
	cfg      *config.Config
	site     *site.Site
	cache    *enginecache.Cache
	registry *prom.Registry
	history  *eventstore.HistoryProjection
	closers  []func() error
}

// newStack wires cache, metrics, history and notifications from cfg. Long-running
// commands pass live=true to get the configured invalidation; one-shot commands
// only expire on the TTL.
func newStack(ctx context.Context, cfg *config.Config, live bool) (*stack, error) {
	st := &stack{cfg: cfg, registry: prom.NewRegistry()}
	st.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewPrometheusRecorder(st.registry)

	inv, err := st.invalidator(ctx, live)
	if err != nil {
		return nil, err
	}

	opts := []enginecache.Option{
		enginecache.WithInvalidator(inv),
		enginecache.WithRecorder(recorder),
		enginecache.Disabled(cfg.Engine.DisableCache),
		enginecache.WithEngineOptions(engine.Options{
			Workers: cfg.Engine.Workers,
			Markdown: markdown.Options{
				ServerSideHighlight: cfg.Engine.Markdown.ServerSideHighlight,
				HighlightStyle:      cfg.Engine.Markdown.HighlightStyle,
			},
			Recorder: recorder,
		}),
	}

	if cfg.History.Path != "" {
		store, err := eventstore.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			st.Close()
			return nil, err
		}
		st.closers = append(st.closers, store.Close)
		st.history = eventstore.NewHistoryProjection(store)
		if err := st.history.Rebuild(ctx); err != nil {
			st.Close()
			return nil, err
		}
		opts = append(opts, enginecache.WithListener(eventstore.NewJournal(store, st.history)))
	}

	if live && cfg.Notify.NATSURL != "" {
		pub, err := notify.Connect(ctx, notify.Options{
			URL:     cfg.Notify.NATSURL,
			Subject: cfg.Notify.Subject,
			Stream:  cfg.Notify.Stream,
			Retry:   cfg.Notify.RetryPolicy(),
		})
		if err != nil {
			// Serving continues without notifications.
			slog.Warn("Generation notifications disabled", logfields.URL(cfg.Notify.NATSURL), logfields.Error(err))
		} else {
			st.closers = append(st.closers, pub.Close)
			opts = append(opts, enginecache.WithListener(pub))
		}
	}

	st.cache = enginecache.New(opts...)
	st.site = site.FromConfig(cfg, st.cache, st.hook())
	return st, nil
}

func (st *stack) invalidator(ctx context.Context, live bool) (enginecache.Invalidator, error) {
	ttl := func() enginecache.Invalidator { return invalidation.NewTTL(st.cfg.Cache.TTLDuration()) }
	if !live {
		return ttl(), nil
	}
	watcher := func() (enginecache.Invalidator, error) {
		w, err := invalidation.NewWatcher(ctx)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, w.Close)
		return w, nil
	}
	switch st.cfg.Cache.Invalidation {
	case config.InvalidationTTL:
		return ttl(), nil
	case config.InvalidationWatchTTL:
		w, err := watcher()
		if err != nil {
			return nil, err
		}
		return invalidation.Chain{w, ttl()}, nil
	case config.InvalidationNone:
		return invalidation.Always{}, nil
	default:
		return watcher()
	}
}

// hook registers the optional post-processing steps on every new engine.
func (st *stack) hook() enginecache.Hook {
	if !st.cfg.Engine.GitTimestamps {
		return nil
	}
	return func(e *engine.Engine) error {
		return gitmeta.Register(e.PostProcessors(), e.RootDirectory())
	}
}

// Close releases the stack's resources in reverse order.
func (st *stack) Close() {
	for i := len(st.closers) - 1; i >= 0; i-- {
		if err := st.closers[i](); err != nil {
			slog.Warn("Failed to release resource", logfields.Error(err))
		}
	}
	st.closers = nil
}

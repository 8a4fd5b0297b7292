package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/flatsite/internal/logfields"
	"git.home.luguber.info/inful/flatsite/internal/refresh"
	"git.home.luguber.info/inful/flatsite/internal/server"
	"git.home.luguber.info/inful/flatsite/internal/version"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr string `short:"a" help:"Listen address, overrides server.addr"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Server.Addr = s.Addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := newStack(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer st.Close()

	// A broken content root still serves: each request reports the build error.
	if _, err := st.site.Current(ctx); err != nil {
		slog.Warn("Initial generation failed", logfields.Root(cfg.Root()), logfields.Error(err))
	}

	if interval := cfg.Cache.RefreshDuration(); interval > 0 {
		sched, err := refresh.NewScheduler()
		if err != nil {
			return err
		}
		if _, err := sched.Schedule(ctx, "refresh", interval, refresh.Func(st.site.Refresh)); err != nil {
			return err
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				slog.Warn("Failed to stop scheduler", logfields.Error(err))
			}
		}()
	}

	opts := server.Options{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
		HealthPath:   cfg.Monitoring.Health.Path,
		History:      st.history,
		Version:      version.Version,
		Logger:       g.Logger,
	}
	if cfg.Monitoring.Metrics.Enabled {
		opts.MetricsPath = cfg.Monitoring.Metrics.Path
		opts.Gatherer = st.registry
	}

	slog.Info("Starting flatsite", logfields.URL(cfg.Server.Addr), logfields.Root(cfg.Root()), slog.String("invalidation", string(cfg.Cache.Invalidation)))
	return server.New(st.site, opts).ListenAndServe(ctx, cfg.Server.ShutdownTimeoutDuration())
}

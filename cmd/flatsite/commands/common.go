// Package commands implements the flatsite subcommands.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/flatsite/internal/config"
)

// Global is shared state handed to every subcommand.
type Global struct {
	Logger *slog.Logger
	// Out receives command output; logs go to stderr.
	Out io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"flatsite.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Serve    ServeCmd    `cmd:"" help:"Serve the site over HTTP"`
	Dispatch DispatchCmd `cmd:"" help:"Dispatch one path and print the view model as JSON"`
	Index    IndexCmd    `cmd:"" help:"List index names, or the keys of one index"`
	Export   ExportCmd   `cmd:"" help:"Write the view model of every route as JSON files"`
	Init     InitCmd     `cmd:"" help:"Initialize a new configuration file and data directory"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	slog.SetDefault(newLogger(config.LoggingConfig{}, c.Verbose))
	return nil
}

// loadConfig reads the configuration and re-applies logging from it.
func (c *CLI) loadConfig(g *Global) (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg.Logging, c.Verbose)
	slog.SetDefault(logger)
	if g != nil {
		g.Logger = logger
	}
	return cfg, nil
}

// newLogger builds the process logger. -v always wins over the configured level.
func newLogger(lc config.LoggingConfig, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch config.NormalizeLogLevel(string(lc.Level)) {
	case config.LogLevelDebug:
		level = slog.LevelDebug
	case config.LogLevelWarn:
		level = slog.LevelWarn
	case config.LogLevelError:
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if config.NormalizeLogFormat(string(lc.Format)) == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

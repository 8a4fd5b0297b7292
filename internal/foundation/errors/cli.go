package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// CLIErrorAdapter reports command failures and picks the exit code.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	stderr  io.Writer
	exit    func(int)
}

// NewCLIErrorAdapter returns an adapter writing to stderr and exiting the process.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger, stderr: os.Stderr, exit: os.Exit}
}

// ExitCodeFor returns the exit code for err: 0 for nil, 1 when unclassified.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	if c, ok := AsClassified(err); ok {
		return traitsOf(c.category).exit
	}
	return 1
}

// FormatError renders err for the terminal. Verbose mode prints the full chain.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	c, ok := AsClassified(err)
	switch {
	case !ok || a.verbose:
		return "Error: " + err.Error()
	case c.category == CategoryInternal:
		return "Internal error occurred (use -v for details)"
	default:
		return "Error: " + c.message
	}
}

// HandleError prints err and exits with its code. A nil err is ignored.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	if c, ok := AsClassified(err); !ok || a.verbose || c.severity == SeverityFatal {
		attrs := []slog.Attr{slog.String("category", string(GetCategory(err)))}
		if ok && c.CanRetry() {
			attrs = append(attrs, slog.Bool("retryable", true))
		}
		a.logger.LogAttrs(context.Background(), slog.LevelError, "Command failed", append(attrs, slog.Any("error", err))...)
	}
	fmt.Fprintln(a.stderr, a.FormatError(err))
	a.exit(a.ExitCodeFor(err))
}

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/flatsite/internal/export"
)

// ExportCmd implements the 'export' command.
type ExportCmd struct {
	Output string `short:"o" default:"./public" help:"Output directory for the exported JSON"`
}

func (x *ExportCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := newStack(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := export.Run(ctx, st.site, x.Output)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(g.out(), "Exported %d routes (%d documents) to %s\n", res.Routes, res.Documents, x.Output)
	return err
}

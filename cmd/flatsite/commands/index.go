package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"git.home.luguber.info/inful/flatsite/internal/server"
)

// IndexCmd implements the 'index' command.
type IndexCmd struct {
	Name string `arg:"" optional:"" help:"Index to list; omit to list index names"`
	JSON bool   `help:"Print JSON instead of a table"`
}

func (i *IndexCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	ctx := context.Background()
	st, err := newStack(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer st.Close()

	e, err := st.site.Current(ctx)
	if err != nil {
		return err
	}

	if i.Name == "" {
		names := e.IndexNames()
		if i.JSON {
			return printJSON(g, names)
		}
		tw := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
		for _, name := range names {
			fmt.Fprintf(tw, "%s\t%d\n", name, e.Index(name).Len())
		}
		return tw.Flush()
	}

	resp, err := server.NewIndexResponse(e, i.Name)
	if err != nil {
		return err
	}
	if i.JSON {
		return printJSON(g, resp)
	}
	tw := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	for _, k := range resp.Keys {
		fmt.Fprintf(tw, "%s\t%d\n", k.Key, k.Count)
	}
	return tw.Flush()
}

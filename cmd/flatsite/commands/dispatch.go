package commands

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"git.home.luguber.info/inful/flatsite/internal/server"
	"git.home.luguber.info/inful/flatsite/internal/site"
)

// DispatchCmd implements the 'dispatch' command.
type DispatchCmd struct {
	Path string `arg:"" optional:"" default:"/" help:"Request path to dispatch"`
	Page int    `short:"p" default:"1" help:"Page of a listing"`
}

func (d *DispatchCmd) Run(g *Global, root *CLI) error {
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

	query := url.Values{}
	if d.Page > 1 {
		query.Set(site.PageParam, strconv.Itoa(d.Page))
	}
	vm, err := st.site.Page(ctx, d.Path, query)
	if err != nil {
		return err
	}
	return printJSON(g, server.NewPageResponse(vm))
}

func printJSON(g *Global, v any) error {
	enc := json.NewEncoder(g.out())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

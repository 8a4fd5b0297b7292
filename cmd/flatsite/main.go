package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/flatsite/cmd/flatsite/commands"
	"git.home.luguber.info/inful/flatsite/internal/foundation/errors"
	"git.home.luguber.info/inful/flatsite/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{Out: os.Stdout}
	parser := kong.Parse(cli,
		kong.Name("flatsite"),
		kong.Description("Serve and export a flat-file blog from a directory of Markdown entries."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)
	if err := parser.Run(global, cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}

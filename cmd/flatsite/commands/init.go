package commands

import (
	"fmt"

	"git.home.luguber.info/inful/flatsite/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	return RunInit(g, root.Config, i.Force)
}

// RunInit writes an example configuration to configPath and creates the data directory.
func RunInit(g *Global, configPath string, force bool) error {
	out := g.out()
	fmt.Fprintln(out, "Initializing flatsite project")
	fmt.Fprintf(out, "Writing configuration to %s\n", configPath)
	if err := config.Init(configPath, force); err != nil {
		fmt.Fprintln(out, "Initialization failed")
		return err
	}
	fmt.Fprintln(out, "initialized successfully")
	return nil
}

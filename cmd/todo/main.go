package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Makepad-fr/tada/internal/cli"
	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/ui"
)

func main() {
	// Root flags (apply to every subcommand)
	groupPending := flag.Bool("group", false, "group output by pending/done")
	configPath := flag.String("config", "", "path to a TOML config file (default ./tada.toml if present)")
	flag.Parse()

	// Hand the remaining args to the CLI runner.
	args := flag.Args()
	if len(args) == 0 {
		cli.PrintHelp(os.Stderr)
		os.Exit(cli.ExitUsage)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		ui.Fail(os.Stderr, err.Error())
		os.Exit(cli.ExitUsage)
	}
	ui.SetTheme(cfg.Theme)

	code := cli.Run(args, cli.Options{
		Group:  *groupPending,
		Config: cfg,
	})
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}

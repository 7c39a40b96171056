// Package main provides the objtrack command line: catalog search, shop
// lookup, BUY objective planning and navigation to the closest objective.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"github.com/cory-johannsen/objtrack/internal/config"
	"github.com/cory-johannsen/objtrack/internal/observability"
	"github.com/cory-johannsen/objtrack/internal/tracker"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (empty = defaults and OBJTRACK_ environment)")

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	var logger *zap.Logger
	a := &app{out: os.Stdout, warn: os.Stderr}
	a.start = func(ctx context.Context) (*tracker.Tracker, error) {
		cfg, err := config.Load(*configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		if logger, err = observability.NewLogger(cfg.Logging); err != nil {
			return nil, fmt.Errorf("creating logger: %w", err)
		}
		return tracker.New(ctx, cfg, logger)
	}
	for _, c := range a.commands() {
		subcommands.Register(c, "catalog")
	}
	flag.Parse()

	status := subcommands.Execute(context.Background())
	_ = a.close()
	if logger != nil {
		_ = logger.Sync()
	}
	os.Exit(int(status))
}

// Package main provides the shop catalog importer. It reads a catalog file, or
// the built-in catalog, validates it and writes it to PostgreSQL, SQLite or a
// catalog file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/objtrack/content"
	"github.com/cory-johannsen/objtrack/internal/config"
	"github.com/cory-johannsen/objtrack/internal/game/shop"
	"github.com/cory-johannsen/objtrack/internal/observability"
	"github.com/cory-johannsen/objtrack/internal/storage/postgres"
	"github.com/cory-johannsen/objtrack/internal/storage/sqlite"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file (database settings for -to postgres)")
	from := flag.String("from", "", "catalog file to import (.json, .yaml, optionally .zst); empty = built-in catalog")
	to := flag.String("to", "", "destination: postgres, sqlite or file")
	out := flag.String("out", "", "destination path for -to sqlite or -to file")
	flag.Parse()

	if *to == "" || (*to != config.DriverPostgres && *out == "") {
		fmt.Fprintln(os.Stderr, "usage: import-catalog -to postgres|sqlite|file [-out <path>] [-from <file>] [-config <file>]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	n, err := run(ctx, cfg, *from, *to, *out)
	if err != nil {
		logger.Error("import failed", zap.String("to", *to), zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("import complete",
		zap.Int("shops", n),
		zap.String("to", *to),
		zap.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
	)
}

// run reads the source catalog and writes it to the destination, returning the
// number of shops written.
func run(ctx context.Context, cfg config.Config, from, to, out string) (int, error) {
	records, err := readRecords(ctx, cfg.Catalog, from)
	if err != nil {
		return 0, err
	}
	if _, err := shop.Build(records); err != nil {
		return 0, err
	}

	switch to {
	case config.DriverPostgres:
		if err := cfg.Database.Validate(); err != nil {
			return 0, err
		}
		if err := postgres.MigrateUp(cfg.Database.DSN()); err != nil {
			return 0, fmt.Errorf("migrating: %w", err)
		}
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return 0, err
		}
		defer pool.Close()
		err = pool.Shops().ReplaceAll(ctx, records)
		return len(records), err
	case config.DriverSQLite:
		store, err := sqlite.Create(out)
		if err != nil {
			return 0, err
		}
		defer func() { _ = store.Close() }()
		err = store.ReplaceAll(ctx, records)
		return len(records), err
	case config.DriverFile:
		return len(records), shop.WriteFile(out, records)
	default:
		return 0, fmt.Errorf("unknown destination %q", to)
	}
}

func readRecords(ctx context.Context, cfg config.CatalogConfig, from string) ([]shop.Record, error) {
	v, err := shop.DefaultSchema()
	if err != nil {
		return nil, err
	}
	if cfg.SchemaPath != "" {
		if v, err = shop.LoadSchema(cfg.SchemaPath); err != nil {
			return nil, err
		}
	}
	if from == "" {
		return content.ShopSource(v).Records(ctx)
	}
	return shop.NewFileSource(from, v).Records(ctx)
}

// Package tracker assembles the objective tracker from configuration: the shop
// catalog from the configured driver, the objective store with its seed
// objectives, and the location, price and navigation resolvers.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/cory-johannsen/objtrack/content"
	"github.com/cory-johannsen/objtrack/internal/config"
	"github.com/cory-johannsen/objtrack/internal/game/objective"
	"github.com/cory-johannsen/objtrack/internal/game/resolve"
	"github.com/cory-johannsen/objtrack/internal/game/shop"
	"github.com/cory-johannsen/objtrack/internal/observability"
	"github.com/cory-johannsen/objtrack/internal/scripting"
	"github.com/cory-johannsen/objtrack/internal/storage/postgres"
	"github.com/cory-johannsen/objtrack/internal/storage/sqlite"
)

// Tracker holds every component of a running tracker.
type Tracker struct {
	Catalog    *shop.Catalog
	Objectives *objective.Store
	Planner    *objective.Planner
	Locations  resolve.LocationResolver
	Prices     resolve.PriceResolver
	Navigator  resolve.Navigator
	// CatalogErr is the catalog load failure, if any. The tracker still runs
	// with an empty catalog when it is set.
	CatalogErr error

	logger  *zap.Logger
	closers []func() error
}

// New builds a Tracker from cfg. A catalog that cannot be loaded degrades to
// an empty catalog and is reported through CatalogErr; a failing seed script
// is a startup error.
//
// Precondition: cfg must have passed Validate; logger must be non-nil.
// Postcondition: Returns a ready Tracker the caller must Close, or an error.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Tracker, error) {
	t := &Tracker{
		Objectives: objective.NewStore(observability.Component(logger, "objectives")),
		Locations:  resolve.NewLocationResolver(),
		logger:     logger,
	}
	t.Navigator = resolve.NewNavigator(t.Locations, cfg.Navigator.NearTiles, cfg.Navigator.MediumTiles)

	catalogLog := observability.Component(logger, "catalog")
	src, err := t.openSource(ctx, cfg)
	if err != nil {
		catalogLog.Error("shop catalog source unavailable; continuing with an empty catalog",
			zap.String("driver", cfg.Catalog.Driver),
			zap.Error(err),
		)
		t.Catalog, t.CatalogErr = shop.Empty(), sourceError(cfg.Catalog.Driver, err)
	} else {
		t.Catalog, t.CatalogErr = shop.Load(ctx, src, catalogLog)
	}
	t.Planner = objective.NewPlanner(t.Catalog)

	seedFS, seedDir := seedSource(cfg.Scripting)
	seeder := scripting.NewSeeder(observability.Component(logger, "seeds"), cfg.Scripting.InstructionLimit)
	if _, err := seeder.SeedFS(ctx, seedFS, seedDir, t.Objectives); err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("seeding objectives: %w", err)
	}
	return t, nil
}

// openSource returns the catalog source selected by cfg.Catalog.Driver.
func (t *Tracker) openSource(ctx context.Context, cfg config.Config) (shop.Source, error) {
	validator, err := schemaValidator(cfg.Catalog)
	if err != nil {
		return nil, err
	}

	switch cfg.Catalog.Driver {
	case config.DriverEmbedded:
		return content.ShopSource(validator), nil
	case config.DriverFile:
		return shop.NewFileSource(cfg.Catalog.Path, validator), nil
	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.Catalog.Path)
		if err != nil {
			return nil, err
		}
		t.closers = append(t.closers, store.Close)
		return store, nil
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		t.closers = append(t.closers, func() error { pool.Close(); return nil })
		return pool.Shops(), nil
	default:
		return nil, fmt.Errorf("unknown catalog driver %q", cfg.Catalog.Driver)
	}
}

// sourceError reports a catalog source that could not be opened the same way
// shop.Load reports one that could not be read.
func sourceError(driver string, err error) *shop.LoadError {
	kind := shop.ErrDataUnavailable
	if errors.Is(err, shop.ErrDataFormat) {
		kind = shop.ErrDataFormat
	}
	return &shop.LoadError{Source: driver, Kind: kind, Err: err}
}

func schemaValidator(cfg config.CatalogConfig) (*shop.SchemaValidator, error) {
	if !cfg.ValidateSchema {
		return nil, nil
	}
	if cfg.SchemaPath != "" {
		return shop.LoadSchema(cfg.SchemaPath)
	}
	return shop.DefaultSchema()
}

func seedSource(cfg config.ScriptingConfig) (fs.FS, string) {
	if cfg.SeedDir == "" {
		return content.Seeds, content.SeedDir
	}
	return os.DirFS(cfg.SeedDir), "."
}

// Close releases database handles opened for the catalog.
func (t *Tracker) Close() error {
	var first error
	for _, c := range t.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	t.closers = nil
	return first
}

package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/census-tidy/internal/config"
	"github.com/sells-group/census-tidy/internal/db"
	"github.com/sells-group/census-tidy/internal/warehouse"
)

// openPool connects to the configured Postgres database.
func openPool(ctx context.Context) (*pgxpool.Pool, error) {
	if cfg.Store.DatabaseURL == "" {
		return nil, eris.New("store: no database_url configured (set store.database_url or CENSUS_STORE_DATABASE_URL)")
	}
	return db.Connect(ctx, cfg.Store.DatabaseURL, cfg.Store.MaxConns)
}

// openSink opens the configured sink. For the postgres driver the pool is
// returned too, so callers can keep a load log; it is nil otherwise. The
// caller closes both.
func openSink(ctx context.Context) (warehouse.Sink, *pgxpool.Pool, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		mode, err := warehouse.ParseMode(cfg.Warehouse.Mode)
		if err != nil {
			return nil, nil, err
		}
		pool, err := openPool(ctx)
		if err != nil {
			return nil, nil, err
		}
		return warehouse.NewPostgres(pool, mode), pool, nil
	case config.DriverSQLite:
		s, err := warehouse.NewSQLite(cfg.Store.SQLitePath)
		return s, nil, err
	case config.DriverCSV:
		s, err := warehouse.NewCSVDir(cfg.Store.OutputDir)
		return s, nil, err
	default:
		return nil, nil, eris.Errorf("store: unknown driver %q", cfg.Store.Driver)
	}
}

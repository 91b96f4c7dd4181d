package store

import (
	"context"
	"fmt"

	"shopping-list/internal/config"
	"shopping-list/internal/database"
)

// NewOpener returns the Opener for the configured driver.
func NewOpener(cfg *config.Config) (Opener, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return func(ctx context.Context) (Store, error) {
			return NewMemoryStore(), nil
		}, nil

	case config.DriverSQLite:
		path := cfg.Store.Path
		return func(ctx context.Context) (Store, error) {
			return OpenSQLite(ctx, path)
		}, nil

	case config.DriverPostgres:
		dbCfg := cfg.Database
		return func(ctx context.Context) (Store, error) {
			db, err := database.Connect(ctx, dbCfg)
			if err != nil {
				return nil, err
			}
			if err := database.Migrate(ctx, db); err != nil {
				db.Close()
				return nil, err
			}
			return NewPostgresStore(db, db.Close), nil
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

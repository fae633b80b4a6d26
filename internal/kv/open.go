package kv

import (
	"context"
	"fmt"
	"io"

	"github.com/noah-isme/wellness-api/pkg/cache"
	"github.com/noah-isme/wellness-api/pkg/config"
	"github.com/noah-isme/wellness-api/pkg/database"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the substrate selected by cfg.Storage.Driver. The returned
// closer releases the underlying connection.
func Open(ctx context.Context, cfg *config.Config) (KV, io.Closer, error) {
	switch cfg.Storage.Driver {
	case "", config.StorageMemory:
		return NewMemory(), nopCloser{}, nil
	case config.StoragePostgres, config.StorageSQLite:
		open := func() (*SQL, io.Closer, error) {
			if cfg.Storage.Driver == config.StorageSQLite {
				db, err := database.NewSQLite(cfg.SQLite)
				if err != nil {
					return nil, nil, err
				}
				return NewSQL(db), db, nil
			}
			db, err := database.NewPostgres(cfg.Database)
			if err != nil {
				return nil, nil, err
			}
			return NewSQL(db), db, nil
		}
		store, closer, err := open()
		if err != nil {
			return nil, nil, fmt.Errorf("open %s substrate: %w", cfg.Storage.Driver, err)
		}
		if err := store.Migrate(ctx); err != nil {
			_ = closer.Close()
			return nil, nil, err
		}
		return store, closer, nil
	case config.StorageRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("open redis substrate: %w", err)
		}
		return NewRedis(client), client, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

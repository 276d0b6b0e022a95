package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"sweetyshop/internal/config"
	"sweetyshop/internal/db"
)

// Open builds the backend chosen by the configuration. A remote backend that
// was requested explicitly but lacks settings is returned as an Unconfigured
// store instead of falling back to the local file.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	mode := cfg.ResolvedStoreMode()
	key := cfg.Store.DocumentKey

	switch mode {
	case config.StoreFile:
		return NewFileStore(cfg.Store.FilePath), nil

	case config.StoreBunny:
		if !cfg.Bunny.Configured() {
			log.Printf("[store] bunny selected but BUNNY_STORAGE_ZONE/BUNNY_STORAGE_ACCESS_KEY missing")
			return Unconfigured(mode), nil
		}
		return NewBunnyStore(cfg.Bunny, key), nil

	case config.StoreMySQL:
		if !cfg.MySQL.Configured() {
			log.Printf("[store] mysql selected but DB_HOST missing")
			return Unconfigured(mode), nil
		}
		return openSQL(ctx, MySQL, key, func() (*sql.DB, error) { return db.OpenMySQL(cfg.MySQL) })

	case config.StorePostgres:
		if cfg.Store.PostgresURL == "" {
			log.Printf("[store] postgres selected but DATABASE_URL missing")
			return Unconfigured(mode), nil
		}
		return openSQL(ctx, Postgres, key, func() (*sql.DB, error) { return db.OpenPostgres(cfg.Store.PostgresURL) })

	case config.StoreSQLite:
		return openSQL(ctx, SQLite, key, func() (*sql.DB, error) { return db.OpenSQLite(cfg.Store.SQLitePath) })

	default:
		return nil, fmt.Errorf("unknown MENU_STORE %q", mode)
	}
}

func openSQL(ctx context.Context, dialect Dialect, key string, open func() (*sql.DB, error)) (Store, error) {
	conn, err := open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect.name, err)
	}
	s := NewSQLStore(conn, dialect, key)
	if err := s.Migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

package database

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"zippybox-server/config"
	"zippybox-server/internal/catalog"
)

// Open opens the database described by cfg and wraps it in an ent driver.
func Open(cfg *config.DatabaseConfig) (*entsql.Driver, error) {
	var name string
	switch cfg.Driver {
	case "", dialect.Postgres:
		name = dialect.Postgres
	case dialect.SQLite:
		name = dialect.SQLite
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	return OpenDSN(name, cfg.DSN())
}

// OpenDSN opens a database/sql handle for driverName and checks it.
func OpenDSN(driverName, dsn string) (*entsql.Driver, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return entsql.OpenDB(driverName, db), nil
}

// Migrate creates or updates the catalog schema.
func Migrate(ctx context.Context, drv dialect.Driver) error {
	if drv == nil {
		return fmt.Errorf("database driver not initialized")
	}

	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("failed to prepare migration: %w", err)
	}
	if err := m.Create(ctx, catalog.Tables...); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

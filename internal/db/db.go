// Package db owns the connection to the persistent store and its schema.
package db

import (
	"context"
	"embed"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

//go:embed migration/*.sql
var migrations embed.FS

// Open creates a connection pool for databaseURL and verifies it with a ping.
func Open(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "db: open pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "db: ping")
	}

	return pool, nil
}

// Migrate applies every pending up migration. An already current schema is not an error.
func Migrate(databaseURL string) error {
	// https://pkg.go.dev/github.com/golang-migrate/migrate/v4/source/iofs#example-package
	d, err := iofs.New(migrations, "migration")
	if err != nil {
		return errors.Wrap(err, "db: read migrations")
	}

	mg, err := migrate.NewWithSourceInstance("iofs", d, databaseURL)
	if err != nil {
		return errors.Wrap(err, "db: migrate new")
	}
	defer mg.Close()

	if err := mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "db: migrate up")
	}

	return nil
}

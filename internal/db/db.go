// Package db хранит снимки чанков в PostgreSQL или SQLite.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/tileworld/internal/config"
)

// OpenPostgres connects to PostgreSQL, applies migrations and returns a repository.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresChunkRepository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if err := RunMigrations(ctx, dsn); err != nil {
		pool.Close()
		return nil, err
	}
	return NewPostgresChunkRepository(pool), nil
}

// Open выбирает бэкенд по cfg.Driver.
func Open(ctx context.Context, cfg config.Storage) (ChunkRepository, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		repo, err := OpenPostgres(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.DriverSQLite:
		repo, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownDriver, cfg.Driver)
	}
}

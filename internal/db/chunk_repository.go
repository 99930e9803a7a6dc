package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/tileworld/internal/snapshot"
	"github.com/udisondev/tileworld/internal/world"
)

// PostgresChunkRepository реализует ChunkRepository для PostgreSQL.
type PostgresChunkRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresChunkRepository создаёт новый PostgreSQL repository.
func NewPostgresChunkRepository(pool *pgxpool.Pool) *PostgresChunkRepository {
	return &PostgresChunkRepository{pool: pool}
}

// Save вставляет снимок.
// Thread-safe: INSERT ... ON CONFLICT DO NOTHING, конкурентные Save одного чанка не конфликтуют.
func (r *PostgresChunkRepository) Save(ctx context.Context, rec *snapshot.Record) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO chunk_snapshots (seed, x, y, center_x, center_y, digest, tiles, spawns, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (seed) DO NOTHING`,
		int64(rec.Seed), rec.X, rec.Y, rec.CenterX, rec.CenterY,
		rec.Digest, rec.Tiles, string(rec.Spawns), rec.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("saving chunk %s: %w", rec.Coord(), err)
	}
	return tag.RowsAffected() == 1, nil
}

// Get возвращает снимок чанка (x, y).
// Возвращает nil, nil если снимка нет.
func (r *PostgresChunkRepository) Get(ctx context.Context, x, y int32) (*snapshot.Record, error) {
	coord := world.ChunkCoord{X: x, Y: y}
	var (
		rec    snapshot.Record
		seed   int64
		spawns string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT seed, x, y, center_x, center_y, digest, tiles, spawns::text, created_at
		 FROM chunk_snapshots WHERE seed = $1`, int64(coord.Seed()),
	).Scan(&seed, &rec.X, &rec.Y, &rec.CenterX, &rec.CenterY, &rec.Digest, &rec.Tiles, &spawns, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading chunk %s: %w", coord, err)
	}
	rec.Seed = uint64(seed)
	rec.Spawns = []byte(spawns)
	return &rec, nil
}

// Coords возвращает координаты всех снимков.
func (r *PostgresChunkRepository) Coords(ctx context.Context) ([]world.ChunkCoord, error) {
	rows, err := r.pool.Query(ctx, `SELECT x, y FROM chunk_snapshots ORDER BY y, x`)
	if err != nil {
		return nil, fmt.Errorf("listing chunks: %w", err)
	}
	defer rows.Close()

	var coords []world.ChunkCoord
	for rows.Next() {
		var c world.ChunkCoord
		if err := rows.Scan(&c.X, &c.Y); err != nil {
			return nil, fmt.Errorf("scanning chunk row: %w", err)
		}
		coords = append(coords, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunk rows: %w", err)
	}
	return coords, nil
}

// Count возвращает число снимков.
func (r *PostgresChunkRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM chunk_snapshots`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// Close закрывает пул.
func (r *PostgresChunkRepository) Close() error {
	r.pool.Close()
	return nil
}

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/udisondev/tileworld/internal/snapshot"
	"github.com/udisondev/tileworld/internal/world"
)

// SQLiteChunkRepository реализует ChunkRepository поверх файла SQLite.
type SQLiteChunkRepository struct {
	db *sql.DB
}

// OpenSQLite открывает (или создаёт) базу по path и применяет миграции.
func OpenSQLite(ctx context.Context, path string) (*SQLiteChunkRepository, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	// одна запись за раз, иначе SQLITE_BUSY под нагрузкой
	sqlDB.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := sqlDB.ExecContext(ctx, p); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("sqlite %q: %w", p, err)
		}
	}

	if err := migrateSQLite(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return &SQLiteChunkRepository{db: sqlDB}, nil
}

// Save вставляет снимок; существующий seed не перезаписывается.
func (r *SQLiteChunkRepository) Save(ctx context.Context, rec *snapshot.Record) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO chunk_snapshots (seed, x, y, center_x, center_y, digest, tiles, spawns, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (seed) DO NOTHING`,
		int64(rec.Seed), rec.X, rec.Y, rec.CenterX, rec.CenterY,
		rec.Digest, rec.Tiles, string(rec.Spawns), rec.CreatedAt.UnixNano(),
	)
	if err != nil {
		return false, fmt.Errorf("saving chunk %s: %w", rec.Coord(), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("saving chunk %s: %w", rec.Coord(), err)
	}
	return n == 1, nil
}

// Get возвращает снимок чанка (x, y).
// Возвращает nil, nil если снимка нет.
func (r *SQLiteChunkRepository) Get(ctx context.Context, x, y int32) (*snapshot.Record, error) {
	coord := world.ChunkCoord{X: x, Y: y}
	var (
		rec     snapshot.Record
		seed    int64
		spawns  string
		created int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT seed, x, y, center_x, center_y, digest, tiles, spawns, created_at
		 FROM chunk_snapshots WHERE seed = ?`, int64(coord.Seed()),
	).Scan(&seed, &rec.X, &rec.Y, &rec.CenterX, &rec.CenterY, &rec.Digest, &rec.Tiles, &spawns, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading chunk %s: %w", coord, err)
	}
	rec.Seed = uint64(seed)
	rec.Spawns = []byte(spawns)
	rec.CreatedAt = time.Unix(0, created).UTC()
	return &rec, nil
}

// Coords возвращает координаты всех снимков.
func (r *SQLiteChunkRepository) Coords(ctx context.Context) ([]world.ChunkCoord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT x, y FROM chunk_snapshots ORDER BY y, x`)
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
func (r *SQLiteChunkRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM chunk_snapshots`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// Close закрывает базу.
func (r *SQLiteChunkRepository) Close() error {
	return r.db.Close()
}

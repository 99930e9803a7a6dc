package db

import (
	"context"
	"errors"

	"github.com/udisondev/tileworld/internal/snapshot"
	"github.com/udisondev/tileworld/internal/world"
)

// ErrUnknownDriver — в конфиге указан неподдерживаемый драйвер хранилища.
var ErrUnknownDriver = errors.New("db: unknown storage driver")

// ChunkRepository хранит снимки чанков. Ключ — ChunkCoord.Seed().
// Снимки неизменяемы: повторный Save того же чанка ничего не пишет.
type ChunkRepository interface {
	// Save сохраняет запись; false — запись с таким seed уже была.
	Save(ctx context.Context, rec *snapshot.Record) (bool, error)
	// Get возвращает снимок чанка (x, y).
	// Возвращает nil, nil если снимка нет.
	Get(ctx context.Context, x, y int32) (*snapshot.Record, error)
	// Coords — координаты всех снимков, по (Y, X).
	Coords(ctx context.Context) ([]world.ChunkCoord, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

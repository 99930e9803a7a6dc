package world

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// DefaultWarmWorkers — параллелизм Warm по умолчанию.
const DefaultWarmWorkers = 4

// World — ленивый кэш чанков, ключ — ChunkCoord.Seed().
// Чанк генерируется не более одного раза: быстрый путь под RLock,
// промах сводится через singleflight, чтобы конкурентные запросы
// одного чанка ждали одну генерацию.
type World struct {
	mu     sync.RWMutex
	chunks map[uint64]*Chunk
	epoch  uint64 // растёт на каждый Clear
	group  singleflight.Group

	logger     *slog.Logger
	onGenerate func(*Chunk)
}

// Option настраивает World.
type Option func(*World)

// WithLogger задаёт логгер (по умолчанию slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithOnGenerate регистрирует колбэк, вызываемый один раз на каждый
// свежесгенерированный чанк (до помещения в кэш, вне блокировок).
func WithOnGenerate(fn func(*Chunk)) Option {
	return func(w *World) { w.onGenerate = fn }
}

// New создаёт пустой World.
func New(opts ...Option) *World {
	w := &World{
		chunks: make(map[uint64]*Chunk),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// GetChunk возвращает чанк (x, y), генерируя его при первом обращении.
// Повторные вызовы возвращают тот же указатель до Clear.
func (w *World) GetChunk(x, y int32) (*Chunk, error) {
	coord := ChunkCoord{X: x, Y: y}
	key := coord.Seed()

	if c := w.cached(key); c != nil {
		return c, nil
	}

	v, err, _ := w.group.Do(strconv.FormatUint(key, 10), func() (any, error) {
		if c := w.cached(key); c != nil {
			return c, nil
		}

		w.mu.RLock()
		epoch := w.epoch
		w.mu.RUnlock()

		start := time.Now()
		c, err := Generate(coord)
		if err != nil {
			return nil, err
		}

		w.logger.Debug("chunk generated",
			"coord", coord.String(),
			"center_x", c.center.X,
			"center_y", c.center.Y,
			"cities", len(c.cities),
			"monsters", len(c.monsters),
			"npcs", len(c.npcs),
			"duration", time.Since(start))

		if w.onGenerate != nil {
			w.onGenerate(c)
		}

		// Clear во время генерации: чанк отдаётся вызывающим, но в кэш не попадает
		w.mu.Lock()
		if w.epoch == epoch {
			w.chunks[key] = c
		}
		w.mu.Unlock()
		return c, nil
	})
	if err != nil {
		return nil, fmt.Errorf("getting chunk %s: %w", coord, err)
	}
	return v.(*Chunk), nil
}

func (w *World) cached(key uint64) *Chunk {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.chunks[key]
}

// Peek возвращает чанк только если он уже в кэше.
func (w *World) Peek(coord ChunkCoord) (*Chunk, bool) {
	c := w.cached(coord.Seed())
	return c, c != nil
}

// Clear очищает кэш. Выданные ранее указатели остаются валидными.
// Генерации, начатые до Clear, в кэш уже не попадут.
func (w *World) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	clear(w.chunks)
	w.epoch++
}

// Len — число чанков в кэше.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.chunks)
}

// Coords возвращает координаты кэшированных чанков, отсортированные по (Y, X).
func (w *World) Coords() []ChunkCoord {
	w.mu.RLock()
	coords := make([]ChunkCoord, 0, len(w.chunks))
	for key := range w.chunks {
		coords = append(coords, CoordFromSeed(key))
	}
	w.mu.RUnlock()

	slices.SortFunc(coords, func(a, b ChunkCoord) int {
		if a.Y != b.Y {
			return cmp.Compare(a.Y, b.Y)
		}
		return cmp.Compare(a.X, b.X)
	})
	return coords
}

// TileAt возвращает тип тайла по глобальным координатам, генерируя чанк при необходимости.
func (w *World) TileAt(gx, gy int64) (TileType, error) {
	coord, lx, ly, err := TileToChunk(gx, gy)
	if err != nil {
		return 0, err
	}
	c, err := w.GetChunk(coord.X, coord.Y)
	if err != nil {
		return 0, err
	}
	return c.tiles[ly][lx], nil
}

// Warm генерирует чанки coords параллельно, не более workers одновременно.
// Отмена ctx прекращает запуск новых генераций.
func (w *World) Warm(ctx context.Context, coords []ChunkCoord, workers int) error {
	if workers <= 0 {
		workers = DefaultWarmWorkers
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, coord := range coords {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, err := w.GetChunk(coord.X, coord.Y)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("warming %d chunks: %w", len(coords), err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("warming %d chunks: %w", len(coords), err)
	}
	return nil
}

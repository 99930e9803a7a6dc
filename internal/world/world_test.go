package world

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorld_GetChunkCaches(t *testing.T) {
	w := New()

	a, err := w.GetChunk(0, 0)
	require.NoError(t, err)
	b, err := w.GetChunk(0, 0)
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, w.Len())

	other, err := w.GetChunk(-1, 0)
	require.NoError(t, err)
	assert.NotSame(t, a, other)
	assert.Equal(t, 2, w.Len())
}

func TestWorld_GetChunkConcurrent(t *testing.T) {
	var generated atomic.Int32
	w := New(WithOnGenerate(func(*Chunk) { generated.Add(1) }))

	const goroutines = 32
	results := make([]*Chunk, goroutines)
	var wg sync.WaitGroup
	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := w.GetChunk(2, 3)
			assert.NoError(t, err)
			results[i] = c
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), generated.Load())
	for _, c := range results {
		assert.Same(t, results[0], c)
	}
}

func TestWorld_ClearRegenerates(t *testing.T) {
	var generated atomic.Int32
	w := New(WithOnGenerate(func(*Chunk) { generated.Add(1) }))

	a, err := w.GetChunk(1, 1)
	require.NoError(t, err)

	w.Clear()
	assert.Zero(t, w.Len())
	_, ok := w.Peek(ChunkCoord{1, 1})
	assert.False(t, ok)

	b, err := w.GetChunk(1, 1)
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.Equal(t, int32(2), generated.Load())

	// регенерация даёт тот же чанк
	da, err := a.Digest()
	require.NoError(t, err)
	db, err := b.Digest()
	require.NoError(t, err)
	assert.Equal(t, da, db)
}

func TestWorld_ClearDuringGeneration(t *testing.T) {
	var w *World
	w = New(WithOnGenerate(func(*Chunk) { w.Clear() }))

	c, err := w.GetChunk(4, -2)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, ChunkCoord{X: 4, Y: -2}, c.Coord())

	assert.Zero(t, w.Len(), "chunk generated before Clear must not be cached")
	_, ok := w.Peek(ChunkCoord{X: 4, Y: -2})
	assert.False(t, ok)
}

func TestWorld_Peek(t *testing.T) {
	w := New()

	_, ok := w.Peek(ChunkCoord{5, 5})
	assert.False(t, ok)
	assert.Zero(t, w.Len())

	c, err := w.GetChunk(5, 5)
	require.NoError(t, err)
	got, ok := w.Peek(ChunkCoord{5, 5})
	assert.True(t, ok)
	assert.Same(t, c, got)
}

func TestWorld_Coords(t *testing.T) {
	w := New()
	for _, c := range []ChunkCoord{{1, 1}, {-1, 1}, {0, -2}, {3, 0}} {
		_, err := w.GetChunk(c.X, c.Y)
		require.NoError(t, err)
	}

	assert.Equal(t, []ChunkCoord{{0, -2}, {3, 0}, {-1, 1}, {1, 1}}, w.Coords())
}

func TestWorld_TileAt(t *testing.T) {
	w := New()

	tests := []struct {
		name   string
		gx, gy int64
		coord  ChunkCoord
		lx, ly int
	}{
		{"origin", 0, 0, ChunkCoord{0, 0}, 0, 0},
		{"inside", 36, 0, ChunkCoord{0, 0}, 36, 0},
		{"negative", -1, -1, ChunkCoord{-1, -1}, 255, 255},
		{"far", 3*256 + 10, 7*256 + 20, ChunkCoord{3, 7}, 10, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := w.TileAt(tt.gx, tt.gy)
			require.NoError(t, err)

			c, err := w.GetChunk(tt.coord.X, tt.coord.Y)
			require.NoError(t, err)
			want, ok := c.Tile(tt.lx, tt.ly)
			require.True(t, ok)
			assert.Equal(t, want, got)
		})
	}

	tile, err := w.TileAt(36, 0)
	require.NoError(t, err)
	assert.Equal(t, TileTown, tile)

	n := w.Len()
	_, err = w.TileAt(1<<39, 0)
	assert.ErrorIs(t, err, ErrTileOutOfRange)
	assert.Equal(t, n, w.Len(), "out of range lookup must not generate")
}

func TestWorld_Warm(t *testing.T) {
	var generated atomic.Int32
	w := New(WithOnGenerate(func(*Chunk) { generated.Add(1) }))

	coords := Square(ChunkCoord{}, 1)
	require.NoError(t, w.Warm(context.Background(), coords, 3))
	assert.Equal(t, len(coords), w.Len())
	assert.Equal(t, int32(len(coords)), generated.Load())

	// повторный прогрев ничего не генерирует
	require.NoError(t, w.Warm(context.Background(), coords, 0))
	assert.Equal(t, int32(len(coords)), generated.Load())
}

func TestWorld_WarmCanceled(t *testing.T) {
	w := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.Warm(ctx, Square(ChunkCoord{}, 2), 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, w.Len())
}

package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/tileworld/internal/config"
	"github.com/udisondev/tileworld/internal/db"
	"github.com/udisondev/tileworld/internal/world"
)

func TestPersister_SavesGeneratedChunks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "chunks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	p := newPersister(repo)
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	w := world.New(world.WithOnGenerate(p.Enqueue))
	require.NoError(t, w.Warm(ctx, world.Square(world.ChunkCoord{}, 1), 2))

	assert.Eventually(t, func() bool {
		n, err := repo.Count(context.Background())
		return err == nil && n == 9
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestPersister_DrainsOnCancel(t *testing.T) {
	repo, err := db.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "chunks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	p := newPersister(repo)
	for _, coord := range world.Square(world.ChunkCoord{X: 10, Y: 10}, 1) {
		c, err := world.Generate(coord)
		require.NoError(t, err)
		p.Enqueue(c)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, p.Run(ctx))

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, n)
}

func TestServe_WarmFailureStopsPersister(t *testing.T) {
	errWarm := errors.New("warm failed")
	orig := warm
	t.Cleanup(func() { warm = orig })
	warm = func(ctx context.Context, w *world.World, coords []world.ChunkCoord, workers int) error {
		if err := w.Warm(ctx, coords, workers); err != nil {
			return err
		}
		return errWarm
	}

	path := filepath.Join(t.TempDir(), "chunks.db")
	cfg := config.DefaultWorldgen()
	cfg.Storage.Driver = config.DriverSQLite
	cfg.Storage.SQLitePath = path
	cfg.WarmRadius = 1
	cfg.WarmWorkers = 2

	err := serve(context.Background(), cfg)
	require.ErrorIs(t, err, errWarm)

	// очередь разобрана до закрытия хранилища
	repo, err := db.OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	defer repo.Close()
	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, n)
}

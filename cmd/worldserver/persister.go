package main

import (
	"context"
	"log/slog"

	"github.com/udisondev/tileworld/internal/db"
	"github.com/udisondev/tileworld/internal/snapshot"
	"github.com/udisondev/tileworld/internal/world"
)

const persistQueueSize = 256

// persister сохраняет снимки свежих чанков в фоне, чтобы GetChunk не ждал базу.
type persister struct {
	repo  db.ChunkRepository
	queue chan *snapshot.Record
}

func newPersister(repo db.ChunkRepository) *persister {
	return &persister{
		repo:  repo,
		queue: make(chan *snapshot.Record, persistQueueSize),
	}
}

// Enqueue снимает чанк сразу (до мутаций тиком) и ставит в очередь.
// При полной очереди снимок теряется.
func (p *persister) Enqueue(c *world.Chunk) {
	rec, err := snapshot.FromChunk(c)
	if err != nil {
		slog.Error("snapshotting chunk", "coord", c.Coord().String(), "error", err)
		return
	}
	select {
	case p.queue <- rec:
	default:
		slog.Warn("snapshot queue full, dropping", "coord", c.Coord().String())
	}
}

// Run сохраняет записи до отмены ctx, затем дописывает остаток очереди.
// Начатая запись не прерывается отменой.
func (p *persister) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			p.drain()
			return nil
		case rec := <-p.queue:
			p.save(context.WithoutCancel(ctx), rec)
		}
	}
}

func (p *persister) drain() {
	for {
		select {
		case rec := <-p.queue:
			p.save(context.Background(), rec)
		default:
			return
		}
	}
}

func (p *persister) save(ctx context.Context, rec *snapshot.Record) {
	inserted, err := p.repo.Save(ctx, rec)
	if err != nil {
		slog.Error("saving snapshot", "coord", rec.Coord().String(), "error", err)
		return
	}
	slog.Debug("snapshot saved", "coord", rec.Coord().String(), "inserted", inserted)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/tileworld/internal/config"
	"github.com/udisondev/tileworld/internal/db"
	"github.com/udisondev/tileworld/internal/httpapi"
	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/spawn"
	"github.com/udisondev/tileworld/internal/world"
)

const shutdownTimeout = 5 * time.Second

// warm прогревает мир перед стартом API; переменная для подмены в тестах.
var warm = func(ctx context.Context, w *world.World, coords []world.ChunkCoord, workers int) error {
	return w.Warm(ctx, coords, workers)
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadWorldgen(config.Path(config.DefaultConfigPath))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("tileworld server starting",
		"http", cfg.HTTP.Addr(),
		"storage", cfg.Storage.Driver,
		"warm_radius", cfg.WarmRadius)

	return serve(ctx, cfg)
}

// serve поднимает мир, хранилище, цикл спавна и HTTP API и ждёт их остановки.
func serve(ctx context.Context, cfg config.Worldgen) error {
	var repo db.ChunkRepository
	if cfg.Storage.Enabled() {
		r, err := db.Open(ctx, cfg.Storage)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer r.Close()
		repo = r
		slog.Info("snapshot storage ready", "driver", cfg.Storage.Driver)
	}

	hub := httpapi.NewHub(slog.Default())
	defer hub.Close()

	var persist *persister
	if repo != nil {
		persist = newPersister(repo)
	}

	w := world.New(world.WithOnGenerate(func(c *world.Chunk) {
		hub.Publish(httpapi.ChunkGeneratedEvent(c))
		if persist != nil {
			persist.Enqueue(c)
		}
	}))

	spawns := spawn.NewManager(spawn.WithOnRespawn(func(m *model.Monster) {
		hub.Publish(httpapi.MonsterRespawnedEvent(m))
	}))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if persist != nil {
		g.Go(func() error {
			return persist.Run(gctx)
		})
	}

	coords := world.Square(world.ChunkCoord{}, cfg.WarmRadius)
	if err := warm(gctx, w, coords, cfg.WarmWorkers); err != nil {
		// персистер должен закончить до закрытия repo
		cancel()
		return errors.Join(fmt.Errorf("warming world: %w", err), g.Wait())
	}
	for _, coord := range coords {
		if c, ok := w.Peek(coord); ok {
			spawns.Activate(c)
		}
	}
	slog.Info("world warmed", "chunks", w.Len(), "entities", spawns.Count())

	g.Go(func() error {
		if err := spawns.Run(gctx, cfg.TickInterval); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("spawn loop: %w", err)
		}
		return nil
	})

	api := httpapi.NewServer(w,
		httpapi.WithSpawns(spawns),
		httpapi.WithRepository(repo),
		httpapi.WithHub(hub),
		httpapi.WithGenerateOnDemand(cfg.HTTP.GenerateOnDemand),
	)
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		slog.Info("starting http server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

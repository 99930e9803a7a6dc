// Command worldgen генерирует чанки, печатает их и сохраняет снимки.
//
// Usage:
//
//	worldgen dump [-preview N] [-city I] [-monster I] [-npc I] X Y
//	worldgen digest X Y
//	worldgen warm [-radius R] [-workers N] [-persist]
//	worldgen list
//	worldgen verify X Y
//
// Конфиг читается из config/tileworld.yaml или $TILEWORLD_CONFIG.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/udisondev/tileworld/internal/config"
	"github.com/udisondev/tileworld/internal/db"
	"github.com/udisondev/tileworld/internal/snapshot"
	"github.com/udisondev/tileworld/internal/world"
)

var errUsage = errors.New("usage")

type command struct {
	name string
	desc string
	run  func(ctx context.Context, app *app, args []string) error
}

var commands = []command{
	{"dump", "print chunk preview and spawn listings", runDump},
	{"digest", "print chunk digest", runDigest},
	{"warm", "generate chunks around origin, optionally persist snapshots", runWarm},
	{"list", "list persisted snapshots", runList},
	{"verify", "compare persisted snapshot with regenerated chunk", runVerify},
}

// app — общее состояние подкоманд.
type app struct {
	cfg    config.Worldgen
	out    io.Writer
	logger *slog.Logger

	// openRepo подменяется в тестах.
	openRepo func(ctx context.Context, cfg config.Storage) (db.ChunkRepository, error)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			printUsage(os.Stderr)
			os.Exit(2)
		}
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	cfg, err := config.LoadWorldgen(config.Path(config.DefaultConfigPath))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	a := &app{cfg: cfg, out: out, logger: logger, openRepo: db.Open}
	return a.dispatch(ctx, args)
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	for _, c := range commands {
		if c.name == args[0] {
			return c.run(ctx, a, args[1:])
		}
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: worldgen <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", c.name, c.desc)
	}
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

// parseCoord разбирает два позиционных аргумента X Y.
func parseCoord(args []string) (world.ChunkCoord, error) {
	if len(args) != 2 {
		return world.ChunkCoord{}, fmt.Errorf("%w: expected X Y, got %d args", errUsage, len(args))
	}
	x, err := strconv.ParseInt(args[0], 10, 32)
	if err != nil {
		return world.ChunkCoord{}, fmt.Errorf("parsing X %q: %w", args[0], err)
	}
	y, err := strconv.ParseInt(args[1], 10, 32)
	if err != nil {
		return world.ChunkCoord{}, fmt.Errorf("parsing Y %q: %w", args[1], err)
	}
	return world.ChunkCoord{X: int32(x), Y: int32(y)}, nil
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func runDump(_ context.Context, a *app, args []string) error {
	fs := newFlagSet("dump", a.out)
	preview := fs.Int("preview", a.cfg.PreviewSize, "ASCII preview side (1..256)")
	city := fs.Int("city", -1, "print city detail by index")
	monster := fs.Int("monster", -1, "print monster detail by index")
	npc := fs.Int("npc", -1, "print NPC detail by index")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	coord, err := parseCoord(fs.Args())
	if err != nil {
		return err
	}
	c, err := world.Generate(coord)
	if err != nil {
		return err
	}

	fmt.Fprint(a.out, c.Dump(*preview))
	if *city >= 0 {
		fmt.Fprint(a.out, c.CityString(*city))
	}
	if *monster >= 0 {
		fmt.Fprint(a.out, c.MonsterString(*monster))
	}
	if *npc >= 0 {
		fmt.Fprint(a.out, c.NPCString(*npc))
	}
	return nil
}

func runDigest(_ context.Context, a *app, args []string) error {
	coord, err := parseCoord(args)
	if err != nil {
		return err
	}
	c, err := world.Generate(coord)
	if err != nil {
		return err
	}
	d, err := c.DigestHex()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s\n", coord, d)
	return nil
}

func runWarm(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("warm", a.out)
	radius := fs.Int("radius", int(a.cfg.WarmRadius), "square radius around (0, 0)")
	workers := fs.Int("workers", a.cfg.WarmWorkers, "parallel generators")
	persist := fs.Bool("persist", a.cfg.Storage.Enabled(), "save snapshots to configured storage")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *radius < 0 || *radius > config.MaxWarmRadius {
		return fmt.Errorf("%w: radius must be in [0, %d]", errUsage, config.MaxWarmRadius)
	}

	w := world.New(world.WithLogger(a.logger))
	coords := world.Square(world.ChunkCoord{}, int32(*radius))
	if err := w.Warm(ctx, coords, *workers); err != nil {
		return err
	}

	var repo db.ChunkRepository
	if *persist {
		r, err := a.openRepo(ctx, a.cfg.Storage)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer r.Close()
		repo = r
	}

	saved := 0
	for _, coord := range w.Coords() {
		c, _ := w.Peek(coord)
		rec, err := snapshot.FromChunk(c)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s %s cities=%d monsters=%d npcs=%d\n",
			coord, rec.Digest, c.CityCount(), c.MonsterCount(), c.NPCCount())

		if repo == nil {
			continue
		}
		inserted, err := repo.Save(ctx, rec)
		if err != nil {
			return err
		}
		if inserted {
			saved++
		}
	}

	a.logger.Info("warm complete", "chunks", w.Len(), "saved", saved)
	return nil
}

func runList(ctx context.Context, a *app, _ []string) error {
	repo, err := a.openRepo(ctx, a.cfg.Storage)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer repo.Close()

	coords, err := repo.Coords(ctx)
	if err != nil {
		return err
	}
	for _, c := range coords {
		fmt.Fprintln(a.out, c)
	}
	return nil
}

func runVerify(ctx context.Context, a *app, args []string) error {
	coord, err := parseCoord(args)
	if err != nil {
		return err
	}

	repo, err := a.openRepo(ctx, a.cfg.Storage)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer repo.Close()

	rec, err := repo.Get(ctx, coord.X, coord.Y)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("no snapshot for chunk %s", coord)
	}
	if err := rec.ValidateSpawns(); err != nil {
		return err
	}

	c, err := world.Generate(coord)
	if err != nil {
		return err
	}
	ok, err := rec.Matches(c)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("chunk %s: snapshot digest %s does not match regenerated chunk", coord, rec.Digest)
	}
	fmt.Fprintf(a.out, "%s OK %s\n", coord, rec.Digest)
	return nil
}

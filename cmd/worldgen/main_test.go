package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/tileworld/internal/config"
	"github.com/udisondev/tileworld/internal/db"
)

func newTestApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	cfg := config.DefaultWorldgen()
	cfg.Storage.Driver = config.DriverSQLite
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "chunks.db")

	var out bytes.Buffer
	return &app{
		cfg:      cfg,
		out:      &out,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		openRepo: db.Open,
	}, &out
}

func TestDispatch_Usage(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	assert.ErrorIs(t, a.dispatch(ctx, nil), errUsage)
	assert.ErrorIs(t, a.dispatch(ctx, []string{"nope"}), errUsage)
	assert.ErrorIs(t, a.dispatch(ctx, []string{"dump", "1"}), errUsage)
	assert.Error(t, a.dispatch(ctx, []string{"digest", "x", "0"}))

	var buf bytes.Buffer
	printUsage(&buf)
	for _, c := range commands {
		assert.Contains(t, buf.String(), c.name)
	}
}

func TestDump(t *testing.T) {
	a, out := newTestApp(t)

	require.NoError(t, a.dispatch(context.Background(), []string{"dump", "-preview", "16", "-npc", "0", "0", "0"}))
	lines := strings.Split(out.String(), "\n")
	assert.Equal(t, "=== Chunk (0, 0) | Center: (63, 27) ===", lines[0])
	assert.Equal(t, strings.Repeat("-", 18), lines[3])
	assert.Contains(t, out.String(), "=== NPC [0] ===")
	assert.Contains(t, out.String(), "  Is Merchant: Yes\n")
}

func TestDigest(t *testing.T) {
	a, out := newTestApp(t)

	require.NoError(t, a.dispatch(context.Background(), []string{"digest", "-1", "2"}))
	fields := strings.Fields(out.String())
	require.Len(t, fields, 3)
	assert.Equal(t, "(-1,", fields[0])
	assert.Equal(t, "2)", fields[1])
	assert.Len(t, fields[2], 64)
}

func TestWarmPersistListVerify(t *testing.T) {
	a, out := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, a.dispatch(ctx, []string{"warm", "-radius", "1", "-persist"}))
	assert.Len(t, strings.Split(strings.TrimSpace(out.String()), "\n"), 9)

	out.Reset()
	require.NoError(t, a.dispatch(ctx, []string{"list"}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 9)
	assert.Equal(t, "(-1, -1)", lines[0])
	assert.Equal(t, "(1, 1)", lines[8])

	out.Reset()
	require.NoError(t, a.dispatch(ctx, []string{"verify", "0", "0"}))
	assert.True(t, strings.HasPrefix(out.String(), "(0, 0) OK "))

	err := a.dispatch(ctx, []string{"verify", "5", "5"})
	assert.ErrorContains(t, err, "no snapshot")
}

func TestWarmWithoutPersist(t *testing.T) {
	a, out := newTestApp(t)
	opened := false
	a.openRepo = func(context.Context, config.Storage) (db.ChunkRepository, error) {
		opened = true
		return nil, nil
	}

	require.NoError(t, a.dispatch(context.Background(), []string{"warm", "-radius", "0", "-persist=false"}))
	assert.False(t, opened)
	assert.True(t, strings.HasPrefix(out.String(), "(0, 0) "))
}

func TestRun_WarmRadiusBounds(t *testing.T) {
	for _, radius := range []string{"-1", "33", "4294967297"} {
		t.Run(radius, func(t *testing.T) {
			a, _ := newTestApp(t)
			err := a.dispatch(context.Background(), []string{"warm", "-radius", radius, "-persist=false"})
			assert.ErrorIs(t, err, errUsage)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.in))
		})
	}
}

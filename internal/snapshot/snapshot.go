// Package snapshot упаковывает сгенерированный чанк в запись для хранения:
// тайлы сжаты zstd, спавны сериализованы в JSON, дайджест — hex BLAKE2b.
package snapshot

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/udisondev/tileworld/internal/world"
)

// tileBytes — размер несжатой сетки, один байт на тайл.
const tileBytes = world.ChunkSize * world.ChunkSize

var (
	ErrTileSize    = errors.New("snapshot: unexpected tile payload size")
	ErrUnknownTile = errors.New("snapshot: unknown tile type")
	ErrSpawnSchema = errors.New("snapshot: spawns do not match schema")
)

//go:embed spawns.schema.json
var spawnsSchemaSource string

var spawnsSchema = jsonschema.MustCompileString("spawns.schema.json", spawnsSchemaSource)

// EncodeAll/DecodeAll безопасны для конкурентного использования,
// поэтому кодеки общие на пакет.
var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
)

// Record — снимок чанка.
type Record struct {
	X       int32
	Y       int32
	Seed    uint64
	CenterX int32
	CenterY int32
	Digest  string
	Tiles   []byte // zstd
	Spawns  []byte // JSON {"cities": [...], "monsters": [...], "npcs": [...]}

	CreatedAt time.Time
}

// FromChunk строит запись из чанка. Дайджест считается на момент вызова,
// поэтому снимок стоит делать сразу после генерации.
func FromChunk(c *world.Chunk) (*Record, error) {
	digest, err := c.DigestHex()
	if err != nil {
		return nil, fmt.Errorf("snapshotting chunk %s: %w", c.Coord(), err)
	}

	spawns, err := json.Marshal(c.SpawnRecords())
	if err != nil {
		return nil, fmt.Errorf("encoding spawns of chunk %s: %w", c.Coord(), err)
	}

	tiles := c.Tiles()
	raw := make([]byte, 0, tileBytes)
	for y := range world.ChunkSize {
		for x := range world.ChunkSize {
			raw = append(raw, byte(tiles[y][x]))
		}
	}

	coord := c.Coord()
	center := c.Center()
	return &Record{
		X:         coord.X,
		Y:         coord.Y,
		Seed:      coord.Seed(),
		CenterX:   center.X,
		CenterY:   center.Y,
		Digest:    digest,
		Tiles:     encoder.EncodeAll(raw, make([]byte, 0, 4096)),
		Spawns:    spawns,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Coord возвращает координаты чанка записи.
func (r *Record) Coord() world.ChunkCoord {
	return world.ChunkCoord{X: r.X, Y: r.Y}
}

// DecodeTiles распаковывает сетку тайлов (индексация [y][x]).
func (r *Record) DecodeTiles() (*[world.ChunkSize][world.ChunkSize]world.TileType, error) {
	raw, err := decoder.DecodeAll(r.Tiles, make([]byte, 0, tileBytes))
	if err != nil {
		return nil, fmt.Errorf("decompressing tiles of chunk %s: %w", r.Coord(), err)
	}
	if len(raw) != tileBytes {
		return nil, fmt.Errorf("chunk %s: %w: got %d bytes", r.Coord(), ErrTileSize, len(raw))
	}

	var grid [world.ChunkSize][world.ChunkSize]world.TileType
	for i, b := range raw {
		t := world.TileType(b)
		if t > world.TileMountain {
			return nil, fmt.Errorf("chunk %s at %d: %w %d", r.Coord(), i, ErrUnknownTile, b)
		}
		grid[i/world.ChunkSize][i%world.ChunkSize] = t
	}
	return &grid, nil
}

// ValidateSpawns проверяет JSON спавнов по схеме spawns.schema.json.
func (r *Record) ValidateSpawns() error {
	var doc any
	if err := json.Unmarshal(r.Spawns, &doc); err != nil {
		return fmt.Errorf("decoding spawns of chunk %s: %w", r.Coord(), err)
	}
	if err := spawnsSchema.Validate(doc); err != nil {
		return fmt.Errorf("chunk %s: %w: %v", r.Coord(), ErrSpawnSchema, err)
	}
	return nil
}

// DecodeSpawns разбирает JSON спавнов. Документ сначала проверяется схемой.
func (r *Record) DecodeSpawns() (map[string][]map[string]any, error) {
	if err := r.ValidateSpawns(); err != nil {
		return nil, err
	}
	var spawns map[string][]map[string]any
	if err := json.Unmarshal(r.Spawns, &spawns); err != nil {
		return nil, fmt.Errorf("decoding spawns of chunk %s: %w", r.Coord(), err)
	}
	return spawns, nil
}

// Matches сообщает, совпадает ли чанк c с записью по координатам и дайджесту.
func (r *Record) Matches(c *world.Chunk) (bool, error) {
	if c.Coord() != r.Coord() {
		return false, nil
	}
	digest, err := c.DigestHex()
	if err != nil {
		return false, err
	}
	return digest == r.Digest, nil
}

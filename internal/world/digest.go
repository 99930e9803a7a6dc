package world

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// DigestSize — длина дайджеста чанка.
const DigestSize = blake2b.Size256

// Digest — BLAKE2b-256 над координатами, центром, тайлами и спавнами.
// Спавны входят как JSON их Serialize (ключи map сортируются encoding/json),
// поэтому два чанка с одинаковым дайджестом идентичны на момент вызова.
func (c *Chunk) Digest() ([DigestSize]byte, error) {
	buf := make([]byte, 0, 16+ChunkSize*ChunkSize+4096)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(c.coord.X))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(c.coord.Y))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(c.center.X))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(c.center.Y))
	for y := range ChunkSize {
		for x := range ChunkSize {
			buf = append(buf, byte(c.tiles[y][x]))
		}
	}

	spawns, err := json.Marshal(c.SpawnRecords())
	if err != nil {
		return [DigestSize]byte{}, fmt.Errorf("encoding spawns of chunk %s: %w", c.coord, err)
	}
	buf = append(buf, spawns...)

	return blake2b.Sum256(buf), nil
}

// DigestHex — Digest в hex.
func (c *Chunk) DigestHex() (string, error) {
	d, err := c.Digest()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(d[:]), nil
}

// SpawnRecords — сериализованные сущности чанка по группам:
// "cities", "monsters", "npcs", в порядке генерации.
func (c *Chunk) SpawnRecords() map[string][]map[string]any {
	records := map[string][]map[string]any{
		"cities":   make([]map[string]any, 0, len(c.cities)),
		"monsters": make([]map[string]any, 0, len(c.monsters)),
		"npcs":     make([]map[string]any, 0, len(c.npcs)),
	}
	for _, s := range c.cities {
		records["cities"] = append(records["cities"], s.Object.Serialize())
	}
	for _, s := range c.monsters {
		records["monsters"] = append(records["monsters"], s.Monster.Serialize())
	}
	for _, s := range c.npcs {
		records["npcs"] = append(records["npcs"], s.NPC.Serialize())
	}
	return records
}

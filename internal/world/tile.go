package world

import "fmt"

// ChunkSize — сторона чанка в тайлах.
const ChunkSize = 256

// TileType — тип местности тайла. Порядок значений — от центра чанка к краю.
type TileType uint8

const (
	TileCity TileType = iota
	TileTown
	TileVillage
	TileGrassland
	TileForest
	TileMountain
)

// tileCount — число типов местности.
const tileCount = 6

var (
	tileGlyphs = [tileCount]byte{'@', '#', 'o', '.', 'T', '^'}
	tileNames  = [tileCount]string{"City", "Town", "Village", "Grassland", "Forest", "Mountain"}
)

// Glyph возвращает ASCII-символ тайла для превью.
func (t TileType) Glyph() byte {
	if t < tileCount {
		return tileGlyphs[t]
	}
	return '?'
}

func (t TileType) String() string {
	if t < tileCount {
		return tileNames[t]
	}
	return fmt.Sprintf("TileType(%d)", uint8(t))
}

// IsSettlement — City, Town или Village (там живут NPC).
func (t TileType) IsSettlement() bool {
	return t == TileCity || t == TileTown || t == TileVillage
}

// IsWild — Forest или Mountain (там водятся монстры).
func (t TileType) IsWild() bool {
	return t == TileForest || t == TileMountain
}

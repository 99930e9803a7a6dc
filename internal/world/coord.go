package world

import (
	"errors"
	"fmt"
	"math"
)

// ErrTileOutOfRange — глобальный тайл лежит за пределами адресуемой сетки чанков.
var ErrTileOutOfRange = errors.New("tile outside chunk grid")

// ChunkCoord — координаты чанка в сетке мира.
type ChunkCoord struct {
	X int32
	Y int32
}

// Seed упаковывает координаты в 64-битный seed: старшие 32 бита — X, младшие — Y.
// Отрицательные координаты берутся как uint32 (two's complement).
// Значение уникально для каждой пары и служит ключом кэша.
func (c ChunkCoord) Seed() uint64 {
	return uint64(uint32(c.X))<<32 | uint64(uint32(c.Y))
}

// CoordFromSeed — обратное к Seed.
func CoordFromSeed(seed uint64) ChunkCoord {
	return ChunkCoord{X: int32(uint32(seed >> 32)), Y: int32(uint32(seed))}
}

// Origin возвращает глобальные координаты тайла (0, 0) чанка.
func (c ChunkCoord) Origin() (gx, gy int64) {
	return int64(c.X) * ChunkSize, int64(c.Y) * ChunkSize
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// TileToChunk переводит глобальные координаты тайла в чанк и локальные координаты.
// Деление с округлением вниз: тайл -1 лежит в чанке -1 на позиции 255.
// Индекс чанка вне int32 — ErrTileOutOfRange.
func TileToChunk(gx, gy int64) (coord ChunkCoord, lx, ly int, err error) {
	cx, lx := floorDiv(gx, ChunkSize)
	cy, ly := floorDiv(gy, ChunkSize)
	if !inInt32(cx) || !inInt32(cy) {
		return ChunkCoord{}, 0, 0, fmt.Errorf("tile (%d, %d): %w", gx, gy, ErrTileOutOfRange)
	}
	return ChunkCoord{X: int32(cx), Y: int32(cy)}, lx, ly, nil
}

func inInt32(v int64) bool {
	return v >= math.MinInt32 && v <= math.MaxInt32
}

func floorDiv(v, d int64) (q int64, r int) {
	q = v / d
	m := v % d
	if m < 0 {
		q--
		m += d
	}
	return q, int(m)
}

// Square возвращает координаты квадрата (2r+1)×(2r+1) вокруг center,
// построчно сверху вниз. Отрицательный радиус даёт пустой список.
func Square(center ChunkCoord, radius int32) []ChunkCoord {
	if radius < 0 {
		return nil
	}
	side := 2*int(radius) + 1
	coords := make([]ChunkCoord, 0, side*side)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			coords = append(coords, ChunkCoord{X: center.X + dx, Y: center.Y + dy})
		}
	}
	return coords
}

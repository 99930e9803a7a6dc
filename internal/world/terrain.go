package world

import (
	"math"

	"github.com/udisondev/tileworld/internal/rng"
)

// Пороги нормированной дистанции от центра: ниже порога — этот тип.
// Всё, что не ниже 0.70, — Mountain.
var terrainThresholds = [...]struct {
	limit float32
	tile  TileType
}{
	{0.08, TileCity},
	{0.15, TileTown},
	{0.25, TileVillage},
	{0.45, TileGrassland},
	{0.70, TileForest},
}

// noiseAmplitude — максимальная добавка шума к нормированной дистанции.
const noiseAmplitude = 0.15

// maxDist — диагональ чанка, sqrt(256² + 256²).
var maxDist = float32(math.Sqrt(ChunkSize*ChunkSize + ChunkSize*ChunkSize))

// classify переводит зашумлённую дистанцию в тип местности.
func classify(d float32) TileType {
	for _, th := range terrainThresholds {
		if d < th.limit {
			return th.tile
		}
	}
	return TileMountain
}

// synthesizeTerrain заполняет tiles и возвращает центр.
// Потребляет из r: два Rand(256) на центр, затем по одному Randf на тайл
// в порядке строк (y снаружи, x внутри).
//
// Вся арифметика в float32; явные конверсии не дают компилятору
// склеить умножение и сложение в FMA, иначе результат зависел бы от платформы.
func synthesizeTerrain(r *rng.PCG, tiles *[ChunkSize][ChunkSize]TileType) (cx, cy int32) {
	cx = int32(r.Rand(ChunkSize))
	cy = int32(r.Rand(ChunkSize))

	for y := range int32(ChunkSize) {
		dy := y - cy
		for x := range int32(ChunkSize) {
			dx := x - cx
			dist := float32(math.Sqrt(float64(dx*dx + dy*dy)))
			norm := dist / maxDist

			noise := float32(r.Randf() * noiseAmplitude)
			norm = float32(norm + noise)

			tiles[y][x] = classify(norm)
		}
	}
	return cx, cy
}

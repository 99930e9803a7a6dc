package world

import (
	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/rng"
)

// Шаги сетки сэмплирования и лимиты спавна.
const (
	cityStride    = 8
	monsterStride = 16
	npcStride     = 12

	maxCities   = 5
	maxMonsters = 8
	maxNPCs     = 6
)

// candidates собирает позиции (x, y) на сетке с шагом stride,
// тайлы которых проходят accept. Порядок — построчный (y снаружи).
func candidates(tiles *[ChunkSize][ChunkSize]TileType, stride int32, accept func(TileType) bool) []model.Position {
	var out []model.Position
	for y := int32(0); y < ChunkSize; y += stride {
		for x := int32(0); x < ChunkSize; x += stride {
			if accept(tiles[y][x]) {
				out = append(out, model.NewPosition(x, y))
			}
		}
	}
	return out
}

// sampler выдаёт до limit позиций без повторов.
// Каждая выдача — один Rand(len) и удаление с сохранением порядка остальных.
type sampler struct {
	r         *rng.PCG
	positions []model.Position
	left      int
}

func newSampler(r *rng.PCG, positions []model.Position, limit int) *sampler {
	return &sampler{r: r, positions: positions, left: min(limit, len(positions))}
}

// next возвращает следующую позицию; false — лимит исчерпан.
// Между вызовами вызывающий волен тянуть из того же потока.
func (s *sampler) next() (model.Position, bool) {
	if s.left <= 0 || len(s.positions) == 0 {
		return model.Position{}, false
	}
	idx := s.r.Intn(len(s.positions))
	pos := s.positions[idx]
	s.positions = append(s.positions[:idx], s.positions[idx+1:]...)
	s.left--
	return pos, true
}

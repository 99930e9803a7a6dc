package world

import (
	"fmt"

	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/rng"
)

// CitySpawn — город: контейнер с добычей на тайле City.
type CitySpawn struct {
	Pos    model.Position
	Object *model.WorldObject
}

// MonsterSpawn — монстр на тайле Forest или Mountain.
type MonsterSpawn struct {
	Pos     model.Position
	Monster *model.Monster
}

// NPCSpawn — NPC на тайле City, Town или Village.
type NPCSpawn struct {
	Pos model.Position
	NPC *model.NPC
}

// Chunk — сгенерированный чанк 256×256.
// Местность и списки спавна не меняются после Generate;
// сами сущности изменяемы и синхронизированы своими блокировками.
type Chunk struct {
	coord  ChunkCoord
	tiles  [ChunkSize][ChunkSize]TileType
	center model.Position

	cities   []CitySpawn
	monsters []MonsterSpawn
	npcs     []NPCSpawn
}

// Generate детерминированно строит чанк из координат.
// Один поток PCG на весь чанк: центр, местность, города, монстры, NPC.
// Выбор позиции и заполнение сущности чередуются: позиция, все броски
// сущности, затем следующая позиция.
func Generate(coord ChunkCoord) (*Chunk, error) {
	r := rng.New(coord.Seed())
	c := &Chunk{coord: coord}

	cx, cy := synthesizeTerrain(r, &c.tiles)
	c.center = model.NewPosition(cx, cy)

	if err := c.spawnCities(r); err != nil {
		return nil, fmt.Errorf("generating chunk %s cities: %w", coord, err)
	}
	if err := c.spawnMonsters(r); err != nil {
		return nil, fmt.Errorf("generating chunk %s monsters: %w", coord, err)
	}
	if err := c.spawnNPCs(r); err != nil {
		return nil, fmt.Errorf("generating chunk %s npcs: %w", coord, err)
	}
	return c, nil
}

func (c *Chunk) spawnCities(r *rng.PCG) error {
	s := newSampler(r, candidates(&c.tiles, cityStride, func(t TileType) bool { return t == TileCity }), maxCities)
	for {
		pos, ok := s.next()
		if !ok {
			return nil
		}
		obj, err := populateCity(r, c.coord, pos)
		if err != nil {
			return err
		}
		c.cities = append(c.cities, CitySpawn{Pos: pos, Object: obj})
	}
}

func (c *Chunk) spawnMonsters(r *rng.PCG) error {
	s := newSampler(r, candidates(&c.tiles, monsterStride, TileType.IsWild), maxMonsters)
	for {
		pos, ok := s.next()
		if !ok {
			return nil
		}
		m, err := populateMonster(r, c.coord, pos, c.tileAt(pos))
		if err != nil {
			return err
		}
		c.monsters = append(c.monsters, MonsterSpawn{Pos: pos, Monster: m})
	}
}

func (c *Chunk) spawnNPCs(r *rng.PCG) error {
	s := newSampler(r, candidates(&c.tiles, npcStride, TileType.IsSettlement), maxNPCs)
	for {
		pos, ok := s.next()
		if !ok {
			return nil
		}
		n, err := populateNPC(r, c.coord, pos, c.tileAt(pos))
		if err != nil {
			return err
		}
		c.npcs = append(c.npcs, NPCSpawn{Pos: pos, NPC: n})
	}
}

func (c *Chunk) tileAt(p model.Position) TileType {
	return c.tiles[p.Y][p.X]
}

// Coord возвращает координаты чанка.
func (c *Chunk) Coord() ChunkCoord { return c.coord }

// Center возвращает центр радиального градиента.
func (c *Chunk) Center() model.Position { return c.center }

// Tile возвращает тип тайла по локальным координатам.
// Вне [0, ChunkSize) — false.
func (c *Chunk) Tile(x, y int) (TileType, bool) {
	if x < 0 || x >= ChunkSize || y < 0 || y >= ChunkSize {
		return 0, false
	}
	return c.tiles[y][x], true
}

// Tiles возвращает копию сетки (индексация [y][x]).
func (c *Chunk) Tiles() [ChunkSize][ChunkSize]TileType { return c.tiles }

// TileCounts — сколько тайлов каждого типа.
func (c *Chunk) TileCounts() map[TileType]int {
	counts := make(map[TileType]int, tileCount)
	for y := range ChunkSize {
		for x := range ChunkSize {
			counts[c.tiles[y][x]]++
		}
	}
	return counts
}

// Cities возвращает копию списка городов в порядке генерации.
func (c *Chunk) Cities() []CitySpawn { return append([]CitySpawn(nil), c.cities...) }

// Monsters возвращает копию списка монстров в порядке генерации.
func (c *Chunk) Monsters() []MonsterSpawn { return append([]MonsterSpawn(nil), c.monsters...) }

// NPCs возвращает копию списка NPC в порядке генерации.
func (c *Chunk) NPCs() []NPCSpawn { return append([]NPCSpawn(nil), c.npcs...) }

func (c *Chunk) CityCount() int    { return len(c.cities) }
func (c *Chunk) MonsterCount() int { return len(c.monsters) }
func (c *Chunk) NPCCount() int     { return len(c.npcs) }

// City возвращает город по индексу; вне диапазона — false.
func (c *Chunk) City(i int) (CitySpawn, bool) {
	if i < 0 || i >= len(c.cities) {
		return CitySpawn{}, false
	}
	return c.cities[i], true
}

// Monster возвращает монстра по индексу; вне диапазона — false.
func (c *Chunk) Monster(i int) (MonsterSpawn, bool) {
	if i < 0 || i >= len(c.monsters) {
		return MonsterSpawn{}, false
	}
	return c.monsters[i], true
}

// NPC возвращает NPC по индексу; вне диапазона — false.
func (c *Chunk) NPC(i int) (NPCSpawn, bool) {
	if i < 0 || i >= len(c.npcs) {
		return NPCSpawn{}, false
	}
	return c.npcs[i], true
}

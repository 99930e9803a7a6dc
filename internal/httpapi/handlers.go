package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/udisondev/tileworld/internal/world"
)

type position struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

type chunkSummary struct {
	X        int32          `json:"x"`
	Y        int32          `json:"y"`
	Seed     string         `json:"seed"`
	Center   position       `json:"center"`
	Cities   int            `json:"cities"`
	Monsters int            `json:"monsters"`
	NPCs     int            `json:"npcs"`
	Tiles    map[string]int `json:"tiles"`
	Digest   string         `json:"digest"`
}

func summarize(c *world.Chunk) (chunkSummary, error) {
	digest, err := c.DigestHex()
	if err != nil {
		return chunkSummary{}, err
	}
	tiles := make(map[string]int)
	for t, n := range c.TileCounts() {
		tiles[t.String()] = n
	}
	center := c.Center()
	return chunkSummary{
		X:        c.Coord().X,
		Y:        c.Coord().Y,
		Seed:     strconv.FormatUint(c.Coord().Seed(), 10),
		Center:   position{X: center.X, Y: center.Y},
		Cities:   c.CityCount(),
		Monsters: c.MonsterCount(),
		NPCs:     c.NPCCount(),
		Tiles:    tiles,
		Digest:   digest,
	}, nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "chunks": s.world.Len()})
}

func (s *Server) handleChunkList(c *gin.Context) {
	coords := s.world.Coords()
	out := make([]position, 0, len(coords))
	for _, cc := range coords {
		out = append(out, position{X: cc.X, Y: cc.Y})
	}
	c.JSON(http.StatusOK, out)
}

// chunk разбирает :x/:y и достаёт чанк.
func (s *Server) chunk(c *gin.Context) (*world.Chunk, bool) {
	coord, ok := parseCoord(c)
	if !ok {
		return nil, false
	}
	return s.lookup(c, coord)
}

// lookup берёт чанк из кэша; генерирует только с WithGenerateOnDemand.
func (s *Server) lookup(c *gin.Context, coord world.ChunkCoord) (*world.Chunk, bool) {
	if !s.generate {
		ch, ok := s.world.Peek(coord)
		if !ok {
			abort(c, http.StatusNotFound, "chunk "+coord.String()+" is not generated")
		}
		return ch, ok
	}
	ch, err := s.world.GetChunk(coord.X, coord.Y)
	if err != nil {
		abort(c, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return ch, true
}

func (s *Server) handleChunk(c *gin.Context) {
	ch, ok := s.chunk(c)
	if !ok {
		return
	}
	sum, err := summarize(ch)
	if err != nil {
		abort(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (s *Server) handlePreview(c *gin.Context) {
	ch, ok := s.chunk(c)
	if !ok {
		return
	}
	size := world.DefaultPreviewSize
	if q := c.Query("size"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			abort(c, http.StatusBadRequest, "invalid size: "+q)
			return
		}
		size = n
	}
	c.String(http.StatusOK, ch.Dump(size))
}

func (s *Server) handleCity(c *gin.Context) {
	ch, ok := s.chunk(c)
	if !ok {
		return
	}
	i, ok := parseIndex(c)
	if !ok {
		return
	}
	city, ok := ch.City(i)
	if !ok {
		abort(c, http.StatusNotFound, ch.CityString(i))
		return
	}
	c.JSON(http.StatusOK, city.Object.Serialize())
}

func (s *Server) handleMonster(c *gin.Context) {
	ch, ok := s.chunk(c)
	if !ok {
		return
	}
	i, ok := parseIndex(c)
	if !ok {
		return
	}
	m, ok := ch.Monster(i)
	if !ok {
		abort(c, http.StatusNotFound, ch.MonsterString(i))
		return
	}
	c.JSON(http.StatusOK, m.Monster.Serialize())
}

func (s *Server) handleNPC(c *gin.Context) {
	ch, ok := s.chunk(c)
	if !ok {
		return
	}
	i, ok := parseIndex(c)
	if !ok {
		return
	}
	n, ok := ch.NPC(i)
	if !ok {
		abort(c, http.StatusNotFound, ch.NPCString(i))
		return
	}
	c.JSON(http.StatusOK, n.NPC.Serialize())
}

func (s *Server) handleTile(c *gin.Context) {
	gx, err := strconv.ParseInt(c.Param("gx"), 10, 64)
	if err != nil {
		abort(c, http.StatusBadRequest, "invalid gx: "+c.Param("gx"))
		return
	}
	gy, err := strconv.ParseInt(c.Param("gy"), 10, 64)
	if err != nil {
		abort(c, http.StatusBadRequest, "invalid gy: "+c.Param("gy"))
		return
	}
	coord, lx, ly, err := world.TileToChunk(gx, gy)
	if err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	ch, ok := s.lookup(c, coord)
	if !ok {
		return
	}
	tile, _ := ch.Tile(lx, ly)
	c.JSON(http.StatusOK, gin.H{
		"chunk": position{X: coord.X, Y: coord.Y},
		"local": position{X: int32(lx), Y: int32(ly)},
		"tile":  tile.String(),
		"glyph": string(tile.Glyph()),
	})
}

func (s *Server) handleEntity(c *gin.Context) {
	id := c.Param("id")
	if m, ok := s.spawns.Monster(id); ok {
		c.JSON(http.StatusOK, m.Serialize())
		return
	}
	if n, ok := s.spawns.NPC(id); ok {
		c.JSON(http.StatusOK, n.Serialize())
		return
	}
	abort(c, http.StatusNotFound, "entity not active: "+id)
}

func (s *Server) handleSnapshotList(c *gin.Context) {
	coords, err := s.repo.Coords(c.Request.Context())
	if err != nil {
		abort(c, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]position, 0, len(coords))
	for _, cc := range coords {
		out = append(out, position{X: cc.X, Y: cc.Y})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleSnapshot(c *gin.Context) {
	coord, ok := parseCoord(c)
	if !ok {
		return
	}
	rec, err := s.repo.Get(c.Request.Context(), coord.X, coord.Y)
	if err != nil {
		abort(c, http.StatusInternalServerError, err.Error())
		return
	}
	if rec == nil {
		abort(c, http.StatusNotFound, "no snapshot for chunk "+coord.String())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"x":            rec.X,
		"y":            rec.Y,
		"seed":         strconv.FormatUint(rec.Seed, 10),
		"center":       position{X: rec.CenterX, Y: rec.CenterY},
		"digest":       rec.Digest,
		"tiles_bytes":  len(rec.Tiles),
		"spawns_bytes": len(rec.Spawns),
		"created_at":   rec.CreatedAt,
	})
}

// Package httpapi — read-only HTTP диагностика мира (gin) и поток событий /ws.
package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/udisondev/tileworld/internal/db"
	"github.com/udisondev/tileworld/internal/spawn"
	"github.com/udisondev/tileworld/internal/world"
)

// Server держит зависимости хендлеров. spawns и repo опциональны.
type Server struct {
	world  *world.World
	spawns *spawn.Manager
	repo   db.ChunkRepository
	hub    *Hub
	logger *slog.Logger

	// generate — разрешить GET-запросам генерировать чанки, которых нет в кэше
	generate bool
}

// Option настраивает Server.
type Option func(*Server)

// WithSpawns подключает менеджер живых сущностей (/entities/:id).
func WithSpawns(m *spawn.Manager) Option { return func(s *Server) { s.spawns = m } }

// WithRepository подключает хранилище снимков (/snapshots/:x/:y).
func WithRepository(r db.ChunkRepository) Option { return func(s *Server) { s.repo = r } }

// WithHub подключает рассылку событий (/ws).
func WithHub(h *Hub) Option { return func(s *Server) { s.hub = h } }

// WithGenerateOnDemand разрешает генерацию незакэшированных чанков по запросу.
// По умолчанию отдаются только уже сгенерированные чанки, остальные — 404.
func WithGenerateOnDemand(on bool) Option { return func(s *Server) { s.generate = on } }

// WithLogger задаёт логгер запросов.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates HTTP API over w.
func NewServer(w *world.World, opts ...Option) *Server {
	s := &Server{world: w, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router собирает gin.Engine со всеми маршрутами.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.handleHealth)
	r.GET("/chunks", s.handleChunkList)

	chunk := r.Group("/chunks/:x/:y")
	chunk.GET("", s.handleChunk)
	chunk.GET("/preview", s.handlePreview)
	chunk.GET("/cities/:i", s.handleCity)
	chunk.GET("/monsters/:i", s.handleMonster)
	chunk.GET("/npcs/:i", s.handleNPC)

	r.GET("/tiles/:gx/:gy", s.handleTile)

	if s.spawns != nil {
		r.GET("/entities/:id", s.handleEntity)
	}
	if s.repo != nil {
		r.GET("/snapshots", s.handleSnapshotList)
		r.GET("/snapshots/:x/:y", s.handleSnapshot)
	}
	if s.hub != nil {
		r.GET("/ws", s.hub.ServeWS)
	}
	return r
}

// Handler — Router как http.Handler.
func (s *Server) Handler() http.Handler { return s.Router() }

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}

func parseInt32(c *gin.Context, name string) (int32, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 32)
	if err != nil {
		abort(c, http.StatusBadRequest, "invalid "+name+": "+c.Param(name))
		return 0, false
	}
	return int32(v), true
}

func parseIndex(c *gin.Context) (int, bool) {
	i, err := strconv.Atoi(c.Param("i"))
	if err != nil {
		abort(c, http.StatusBadRequest, "invalid index: "+c.Param("i"))
		return 0, false
	}
	return i, true
}

func parseCoord(c *gin.Context) (world.ChunkCoord, bool) {
	x, ok := parseInt32(c, "x")
	if !ok {
		return world.ChunkCoord{}, false
	}
	y, ok := parseInt32(c, "y")
	if !ok {
		return world.ChunkCoord{}, false
	}
	return world.ChunkCoord{X: x, Y: y}, true
}

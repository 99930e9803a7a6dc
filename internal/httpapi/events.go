package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/world"
)

// Типы событий /ws.
const (
	EventChunkGenerated   = "chunk_generated"
	EventMonsterRespawned = "monster_respawned"
)

const (
	clientSendBuffer = 64
	writeTimeout     = 5 * time.Second
)

// Event — сообщение, рассылаемое подписчикам /ws.
type Event struct {
	Type     string    `json:"type"`
	X        int32     `json:"x"`
	Y        int32     `json:"y"`
	ObjectID string    `json:"object_id,omitempty"`
	Name     string    `json:"name,omitempty"`
	Time     time.Time `json:"time"`
}

// ChunkGeneratedEvent строит событие генерации чанка.
func ChunkGeneratedEvent(c *world.Chunk) Event {
	return Event{
		Type: EventChunkGenerated,
		X:    c.Coord().X,
		Y:    c.Coord().Y,
		Time: time.Now().UTC(),
	}
}

// MonsterRespawnedEvent строит событие респавна; координаты — тайл внутри чанка.
func MonsterRespawnedEvent(m *model.Monster) Event {
	pos := m.Position()
	return Event{
		Type:     EventMonsterRespawned,
		X:        pos.X,
		Y:        pos.Y,
		ObjectID: m.ObjectID(),
		Name:     m.MonsterID(),
		Time:     time.Now().UTC(),
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub рассылает события всем подключённым websocket-клиентам.
// Медленный клиент с полным буфером отключается, Publish не блокируется.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
	logger  *slog.Logger
}

// NewHub создаёт пустой Hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		logger:  logger,
	}
}

// Clients — число подключённых клиентов.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish рассылает событие.
func (h *Hub) Publish(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("encoding event", "type", ev.Type, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("dropping slow websocket client", "remote", c.conn.RemoteAddr().String())
			h.removeLocked(c)
		}
	}
}

// Close отключает всех клиентов; новые подключения отклоняются.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// writeLoop — единственный писатель в conn.
func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug("websocket write failed", "error", err)
			h.remove(c)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
}

// ServeWS апгрейдит соединение и держит его до ошибки чтения.
// Входящие сообщения игнорируются.
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	cl := &client{conn: conn, send: make(chan []byte, clientSendBuffer)}
	if !h.add(cl) {
		_ = conn.Close()
		return
	}
	go h.writeLoop(cl)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.remove(cl)
			return
		}
	}
}

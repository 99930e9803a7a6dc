// Package spawn держит «живые» сущности активных чанков и тикает их:
// регенерация, таймеры смерти и респавн монстров.
package spawn

import (
	"cmp"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/world"
)

// activeChunk — id сущностей, зарегистрированных из одного чанка.
type activeChunk struct {
	monsterIDs []string
	npcIDs     []string
}

// Manager manages spawned monsters and NPCs of active chunks.
type Manager struct {
	mu       sync.RWMutex
	chunks   map[world.ChunkCoord]*activeChunk
	monsters map[string]*model.Monster
	npcs     map[string]*model.NPC

	respawns atomic.Int64
	ticks    atomic.Int64

	logger    *slog.Logger
	onRespawn func(*model.Monster)
}

// Option настраивает Manager.
type Option func(*Manager)

// WithLogger задаёт логгер (по умолчанию slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithOnRespawn регистрирует колбэк на каждый респавн монстра.
// Вызывается из Tick вне блокировок менеджера.
func WithOnRespawn(fn func(*model.Monster)) Option {
	return func(m *Manager) { m.onRespawn = fn }
}

// NewManager creates new spawn manager
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		chunks:   make(map[world.ChunkCoord]*activeChunk),
		monsters: make(map[string]*model.Monster),
		npcs:     make(map[string]*model.NPC),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Activate регистрирует монстров и NPC чанка по object id.
// Повторная активация того же чанка ничего не делает и возвращает false.
func (m *Manager) Activate(c *world.Chunk) bool {
	coord := c.Coord()

	m.mu.Lock()
	if _, ok := m.chunks[coord]; ok {
		m.mu.Unlock()
		return false
	}

	ac := &activeChunk{}
	for _, s := range c.Monsters() {
		id := s.Monster.ObjectID()
		m.monsters[id] = s.Monster
		ac.monsterIDs = append(ac.monsterIDs, id)
	}
	for _, s := range c.NPCs() {
		id := s.NPC.ObjectID()
		m.npcs[id] = s.NPC
		ac.npcIDs = append(ac.npcIDs, id)
	}
	m.chunks[coord] = ac
	m.mu.Unlock()

	m.logger.Debug("chunk activated",
		"coord", coord.String(),
		"monsters", len(ac.monsterIDs),
		"npcs", len(ac.npcIDs))
	return true
}

// Deactivate снимает сущности чанка с тика. false — чанк не был активен.
func (m *Manager) Deactivate(coord world.ChunkCoord) bool {
	m.mu.Lock()
	ac, ok := m.chunks[coord]
	if !ok {
		m.mu.Unlock()
		return false
	}
	for _, id := range ac.monsterIDs {
		delete(m.monsters, id)
	}
	for _, id := range ac.npcIDs {
		delete(m.npcs, id)
	}
	delete(m.chunks, coord)
	m.mu.Unlock()

	m.logger.Debug("chunk deactivated", "coord", coord.String())
	return true
}

// IsActive reports whether the chunk is registered.
func (m *Manager) IsActive(coord world.ChunkCoord) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.chunks[coord]
	return ok
}

// ActiveChunks возвращает активные чанки, по (Y, X).
func (m *Manager) ActiveChunks() []world.ChunkCoord {
	m.mu.RLock()
	coords := make([]world.ChunkCoord, 0, len(m.chunks))
	for c := range m.chunks {
		coords = append(coords, c)
	}
	m.mu.RUnlock()

	slices.SortFunc(coords, func(a, b world.ChunkCoord) int {
		if a.Y != b.Y {
			return cmp.Compare(a.Y, b.Y)
		}
		return cmp.Compare(a.X, b.X)
	})
	return coords
}

// Monster returns registered monster by object id.
func (m *Manager) Monster(id string) (*model.Monster, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mon, ok := m.monsters[id]
	return mon, ok
}

// NPC returns registered NPC by object id.
func (m *Manager) NPC(id string) (*model.NPC, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.npcs[id]
	return n, ok
}

// Count — сколько сущностей зарегистрировано (монстры + NPC).
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.monsters) + len(m.npcs)
}

// Respawns — сколько монстров возродилось с момента создания.
func (m *Manager) Respawns() int64 { return m.respawns.Load() }

// Ticks — сколько раз вызывался Tick.
func (m *Manager) Ticks() int64 { return m.ticks.Load() }

// Tick продвигает всех зарегистрированных на delta секунд.
// Сущности тикаются вне блокировки менеджера: хуки могут звать Activate/Deactivate.
func (m *Manager) Tick(delta float32) {
	m.mu.RLock()
	monsters := make([]*model.Monster, 0, len(m.monsters))
	for _, mon := range m.monsters {
		monsters = append(monsters, mon)
	}
	npcs := make([]*model.NPC, 0, len(m.npcs))
	for _, n := range m.npcs {
		npcs = append(npcs, n)
	}
	m.mu.RUnlock()

	for _, mon := range monsters {
		if !mon.Tick(delta) {
			continue
		}
		m.respawns.Add(1)
		m.logger.Debug("monster respawned",
			"objectID", mon.ObjectID(),
			"monster", mon.MonsterID(),
			"rank", mon.Rank().String())
		if m.onRespawn != nil {
			m.onRespawn(mon)
		}
	}
	for _, n := range npcs {
		n.Tick(delta)
	}
	m.ticks.Add(1)
}

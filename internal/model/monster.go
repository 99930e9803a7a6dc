package model

import "fmt"

// MonsterRank — ранг монстра, задаёт множитель HP и наград.
type MonsterRank int32

const (
	RankNormal MonsterRank = iota
	RankElite
	RankChampion
	RankBoss
	RankWorldBoss
)

var rankNames = [...]string{"Normal", "Elite", "Champion", "Boss", "WorldBoss"}

func (r MonsterRank) String() string {
	if r >= 0 && int(r) < len(rankNames) {
		return rankNames[r]
	}
	return fmt.Sprintf("MonsterRank(%d)", int32(r))
}

// Multiplier возвращает множитель ранга: 1/2/3/5/10, неизвестный ранг — 1.
func (r MonsterRank) Multiplier() float32 {
	switch r {
	case RankElite:
		return 2
	case RankChampion:
		return 3
	case RankBoss:
		return 5
	case RankWorldBoss:
		return 10
	default:
		return 1
	}
}

// MonsterAIState — состояние AI монстра.
type MonsterAIState int32

const (
	AIIdle MonsterAIState = iota
	AIPatrol
	AIChase
	AIAttack
	AIReturn
	AIDead
)

var aiStateNames = [...]string{"Idle", "Patrol", "Chase", "Attack", "Return", "Dead"}

func (s MonsterAIState) String() string {
	if s >= 0 && int(s) < len(aiStateNames) {
		return aiStateNames[s]
	}
	return fmt.Sprintf("MonsterAIState(%d)", int32(s))
}

const (
	defaultMonsterContainer = 4
	defaultRespawnTime      = 60
)

// Monster — враждебное существо с рангом, AI-состоянием, целью и наградой.
// Мёртвый монстр с respawnTime > 0 сам воскресает в Tick на точке спавна.
type Monster struct {
	*Character // embedded

	rank           MonsterRank
	aiState        MonsterAIState
	monsterID      string
	detectionRange float32
	attackRange    float32
	chaseRange     float32
	spawnPosition  Position
	target         Actor
	expReward      int64
	goldReward     int64
	lootTableID    string
	respawnTime    float32
	deathTimer     float32
}

// NewMonster создаёт враждебного монстра с контейнером на 4 слота.
func NewMonster(objectID string) *Monster {
	m := &Monster{
		Character:      NewCharacter(objectID, ""),
		detectionRange: 10,
		attackRange:    2,
		chaseRange:     30,
		expReward:      10,
		goldReward:     5,
		respawnTime:    defaultRespawnTime,
	}
	m.faction = FactionHostile
	_ = m.InitContainer(defaultMonsterContainer)
	return m
}

func (m *Monster) Rank() MonsterRank {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rank
}

func (m *Monster) SetRank(r MonsterRank) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rank = r
}

// RankMultiplier — множитель текущего ранга.
func (m *Monster) RankMultiplier() float32 { return m.Rank().Multiplier() }

func (m *Monster) AIState() MonsterAIState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.aiState
}

// SetAIState меняет состояние AI. Переход в Dead сбрасывает цель.
func (m *Monster) SetAIState(s MonsterAIState) {
	m.mu.Lock()
	if m.aiState == s {
		m.mu.Unlock()
		return
	}
	m.aiState = s
	m.mu.Unlock()

	if s == AIDead {
		m.ClearTarget()
	}
}

func (m *Monster) MonsterID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.monsterID
}

func (m *Monster) SetMonsterID(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.monsterID = id
}

func (m *Monster) DetectionRange() float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.detectionRange
}

func (m *Monster) SetDetectionRange(r float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detectionRange = max(0, r)
}

func (m *Monster) AttackRange() float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.attackRange
}

func (m *Monster) SetAttackRange(r float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attackRange = max(0, r)
}

func (m *Monster) ChaseRange() float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.chaseRange
}

func (m *Monster) SetChaseRange(r float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chaseRange = max(0, r)
}

func (m *Monster) SpawnPosition() Position {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.spawnPosition
}

func (m *Monster) SetSpawnPosition(p Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spawnPosition = p
}

// Target возвращает текущую цель (nil — вне боя).
func (m *Monster) Target() Actor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.target
}

func (m *Monster) HasTarget() bool { return m.Target() != nil }

// IsInCombat — есть цель.
func (m *Monster) IsInCombat() bool { return m.HasTarget() }

// SetTarget меняет цель. Появление цели вызывает AggroHook,
// потеря — DeaggroHook; любая смена — TargetChangedHook.
func (m *Monster) SetTarget(target Actor) {
	m.mu.Lock()
	old := m.target
	if old == target {
		m.mu.Unlock()
		return
	}
	m.target = target
	h := m.hooks
	m.mu.Unlock()

	switch {
	case old == nil && target != nil:
		if ah, ok := h.(AggroHook); ok {
			ah.OnAggro(m, target)
		}
	case old != nil && target == nil:
		if dh, ok := h.(DeaggroHook); ok {
			dh.OnDeaggro(m)
		}
	}
	if th, ok := h.(TargetChangedHook); ok {
		th.OnTargetChanged(m, target)
	}
}

func (m *Monster) ClearTarget() { m.SetTarget(nil) }

// EnterCombat берёт цель и переходит в Chase. Мёртвый монстр и nil-цель игнорируются.
func (m *Monster) EnterCombat(target Actor) {
	if target == nil || !m.IsAlive() {
		return
	}
	m.SetTarget(target)
	m.SetAIState(AIChase)
}

// LeaveCombat сбрасывает цель и отправляет монстра домой.
func (m *Monster) LeaveCombat() {
	m.ClearTarget()
	m.SetAIState(AIReturn)
}

func (m *Monster) ExpReward() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.expReward
}

func (m *Monster) SetExpReward(v int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expReward = max(0, v)
}

func (m *Monster) GoldReward() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.goldReward
}

func (m *Monster) SetGoldReward(v int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goldReward = max(0, v)
}

// ActualExpReward — опыт с учётом ранга.
func (m *Monster) ActualExpReward() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(float32(m.expReward) * m.rank.Multiplier())
}

// ActualGoldReward — золото с учётом ранга.
func (m *Monster) ActualGoldReward() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(float32(m.goldReward) * m.rank.Multiplier())
}

func (m *Monster) LootTableID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lootTableID
}

func (m *Monster) SetLootTableID(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lootTableID = id
}

func (m *Monster) RespawnTime() float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.respawnTime
}

// SetRespawnTime — секунды до воскрешения; 0 отключает респаун.
func (m *Monster) SetRespawnTime(t float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.respawnTime = max(0, t)
}

func (m *Monster) CanRespawn() bool { return m.RespawnTime() > 0 }

// DeathTimer — сколько секунд монстр уже мёртв.
func (m *Monster) DeathTimer() float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.deathTimer
}

// Tick: живой монстр регенерирует; мёртвый копит таймер и по истечении
// respawnTime воскресает с полным здоровьем на точке спавна в состоянии Idle.
// Возвращает true, если на этом тике произошёл респаун.
func (m *Monster) Tick(delta float32) bool {
	if m.IsAlive() {
		m.Character.Tick(delta)
		return false
	}

	m.SetAIState(AIDead)

	m.mu.Lock()
	if m.respawnTime <= 0 {
		m.mu.Unlock()
		return false
	}
	m.deathTimer += delta
	if m.deathTimer < m.respawnTime {
		m.mu.Unlock()
		return false
	}
	m.deathTimer = 0
	spawn := m.spawnPosition
	m.mu.Unlock()

	m.Respawn(1)
	m.SetAIState(AIIdle)
	m.SetPosition(spawn)
	return true
}

// Serialize дополняет ключи Character параметрами монстра.
func (m *Monster) Serialize() map[string]any {
	data := m.Character.Serialize()

	m.mu.RLock()
	defer m.mu.RUnlock()
	data["rank"] = int32(m.rank)
	data["ai_state"] = int32(m.aiState)
	data["monster_id"] = m.monsterID
	data["detection_range"] = m.detectionRange
	data["attack_range"] = m.attackRange
	data["chase_range"] = m.chaseRange
	data["spawn_x"] = m.spawnPosition.X
	data["spawn_y"] = m.spawnPosition.Y
	data["exp_reward"] = m.expReward
	data["gold_reward"] = m.goldReward
	data["loot_table_id"] = m.lootTableID
	data["respawn_time"] = m.respawnTime
	return data
}

// Deserialize восстанавливает монстра. Цель и таймер смерти не сохраняются.
func (m *Monster) Deserialize(data map[string]any) error {
	if err := m.Character.Deserialize(data); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.rank = MonsterRank(getInt32(data, "rank", int32(RankNormal)))
	m.aiState = MonsterAIState(getInt32(data, "ai_state", int32(AIIdle)))
	m.monsterID = getString(data, "monster_id", "")
	m.detectionRange = getFloat32(data, "detection_range", 10)
	m.attackRange = getFloat32(data, "attack_range", 2)
	m.chaseRange = getFloat32(data, "chase_range", 30)
	m.spawnPosition = Position{
		X: getInt32(data, "spawn_x", 0),
		Y: getInt32(data, "spawn_y", 0),
	}
	m.expReward = getInt64(data, "exp_reward", 10)
	m.goldReward = getInt64(data, "gold_reward", 5)
	m.lootTableID = getString(data, "loot_table_id", "")
	m.respawnTime = getFloat32(data, "respawn_time", defaultRespawnTime)
	return nil
}

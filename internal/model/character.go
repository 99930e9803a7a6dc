package model

import "fmt"

// Faction — сторона персонажа.
type Faction int32

const (
	FactionNeutral Faction = iota
	FactionFriendly
	FactionHostile
)

var factionNames = [...]string{"Neutral", "Friendly", "Hostile"}

func (f Faction) String() string {
	if f >= 0 && int(f) < len(factionNames) {
		return factionNames[f]
	}
	return fmt.Sprintf("Faction(%d)", int32(f))
}

// CharacterState — битовая маска временных состояний.
type CharacterState uint32

const (
	StateNone  CharacterState = 0
	StateAlive CharacterState = 1 << (iota - 1)
	StateMoving
	StateAttacking
	StateCasting
	StateStunned
	StateSilenced
	StateRooted
	StateInvincible
	StateInvisible
)

// DamageType определяет, какая защита снижает урон.
type DamageType int32

const (
	DamagePhysical DamageType = iota // armor
	DamageMagical                    // magic resist
	DamageTrue                       // игнорирует armor и magic resist
	DamagePure                       // игнорирует всё, включая неуязвимость
)

// maxReduction — потолок снижения урона (90%).
const maxReduction = 0.9

// Character — базовый класс для живых существ (Player, Monster, NPC).
// Добавляет здоровье, ману, боевые параметры и уровень к WorldObject.
//
// Alive → Dead только один раз (Die идемпотентен), Dead → Alive только через Respawn.
type Character struct {
	*WorldObject // embedded

	name    string
	faction Faction

	health      float32
	maxHealth   float32
	healthRegen float32

	mana      float32
	maxMana   float32
	manaRegen float32

	moveSpeed    float32
	attackDamage float32
	attackSpeed  float32
	armor        float32
	magicResist  float32

	state CharacterState
	level int32

	// lives растёт при каждом Respawn; отличает текущую жизнь от прошлой
	lives uint32
}

// NewCharacter создаёт живого персонажа 1 уровня со 100/100 HP и MP.
func NewCharacter(objectID, name string) *Character {
	return &Character{
		WorldObject:  NewWorldObject(objectID, ObjectInteractable, Position{}),
		name:         name,
		faction:      FactionNeutral,
		health:       100,
		maxHealth:    100,
		mana:         100,
		maxMana:      100,
		moveSpeed:    5,
		attackDamage: 10,
		attackSpeed:  1,
		state:        StateAlive,
		level:        1,
	}
}

// Name возвращает имя персонажа.
func (c *Character) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// SetName устанавливает имя персонажа.
func (c *Character) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
}

func (c *Character) Faction() Faction {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.faction
}

func (c *Character) SetFaction(f Faction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.faction = f
}

// Health возвращает текущее здоровье.
func (c *Character) Health() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.health
}

// MaxHealth возвращает максимальное здоровье.
func (c *Character) MaxHealth() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxHealth
}

// SetHealth устанавливает здоровье с валидацией (clamp 0..maxHealth).
// Ноль у живого персонажа означает смерть без убийцы.
func (c *Character) SetHealth(hp float32) {
	c.mu.Lock()
	c.health = clampFloat32(hp, 0, c.maxHealth)
	died := c.health <= 0 && c.dieLocked()
	c.mu.Unlock()

	if died {
		c.fireDeath(nil)
	}
}

// SetMaxHealth устанавливает максимум (не меньше 1) и корректирует текущее если нужно.
func (c *Character) SetMaxHealth(hp float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.maxHealth = max(1, hp)
	if c.health > c.maxHealth {
		c.health = c.maxHealth
	}
}

// HealthPercent возвращает долю текущего здоровья (0.0 - 1.0).
func (c *Character) HealthPercent() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.maxHealth <= 0 {
		return 0
	}
	return c.health / c.maxHealth
}

func (c *Character) IsFullHealth() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.health >= c.maxHealth
}

func (c *Character) HealthRegen() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.healthRegen
}

func (c *Character) SetHealthRegen(r float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.healthRegen = r
}

// Mana возвращает текущую ману.
func (c *Character) Mana() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mana
}

func (c *Character) MaxMana() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxMana
}

// SetMana устанавливает ману с валидацией (clamp 0..maxMana).
func (c *Character) SetMana(mp float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mana = clampFloat32(mp, 0, c.maxMana)
}

// SetMaxMana устанавливает максимум (не меньше 0) и корректирует текущее если нужно.
func (c *Character) SetMaxMana(mp float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.maxMana = max(0, mp)
	if c.mana > c.maxMana {
		c.mana = c.maxMana
	}
}

func (c *Character) ManaPercent() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.maxMana <= 0 {
		return 0
	}
	return c.mana / c.maxMana
}

func (c *Character) ManaRegen() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.manaRegen
}

func (c *Character) SetManaRegen(r float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.manaRegen = r
}

// HasMana проверяет, хватает ли маны.
func (c *Character) HasMana(amount float32) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mana >= amount
}

// ConsumeMana списывает ману. Неположительная сумма всегда успешна.
func (c *Character) ConsumeMana(amount float32) bool {
	if amount <= 0 {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mana < amount {
		return false
	}
	c.mana -= amount
	return true
}

func (c *Character) MoveSpeed() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.moveSpeed
}

func (c *Character) SetMoveSpeed(v float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.moveSpeed = max(0, v)
}

func (c *Character) AttackDamage() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.attackDamage
}

func (c *Character) SetAttackDamage(v float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attackDamage = max(0, v)
}

func (c *Character) AttackSpeed() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.attackSpeed
}

// SetAttackSpeed — минимум 0.1.
func (c *Character) SetAttackSpeed(v float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attackSpeed = max(0.1, v)
}

func (c *Character) Armor() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.armor
}

func (c *Character) SetArmor(v float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.armor = v
}

func (c *Character) MagicResist() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.magicResist
}

func (c *Character) SetMagicResist(v float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.magicResist = v
}

// States возвращает маску состояний.
func (c *Character) States() CharacterState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// SetStates перезаписывает маску целиком (без хуков).
func (c *Character) SetStates(s CharacterState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

func (c *Character) HasState(s CharacterState) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state&s != 0
}

func (c *Character) AddState(s CharacterState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state |= s
}

func (c *Character) RemoveState(s CharacterState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state &^= s
}

func (c *Character) ClearStates() {
	c.SetStates(StateNone)
}

// IsAlive проверяет флаг Alive.
func (c *Character) IsAlive() bool { return c.HasState(StateAlive) }

// IsDead — обратное IsAlive.
func (c *Character) IsDead() bool { return !c.IsAlive() }

func (c *Character) IsInvincible() bool { return c.HasState(StateInvincible) }

// CanMove: жив, не оглушён и не обездвижен.
func (c *Character) CanMove() bool {
	s := c.States()
	return s&StateAlive != 0 && s&(StateStunned|StateRooted) == 0
}

// CanAttack: жив и не оглушён.
func (c *Character) CanAttack() bool {
	s := c.States()
	return s&StateAlive != 0 && s&StateStunned == 0
}

// CanCast: жив, не оглушён и не под молчанием.
func (c *Character) CanCast() bool {
	s := c.States()
	return s&StateAlive != 0 && s&(StateStunned|StateSilenced) == 0
}

// Level возвращает уровень персонажа.
func (c *Character) Level() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.level
}

// SetLevel устанавливает уровень (минимум 1). Повышение вызывает LevelUpHook.
func (c *Character) SetLevel(level int32) {
	c.mu.Lock()
	old := c.level
	c.level = max(1, level)
	up := c.level > old
	lvl := c.level
	h := c.hooks
	c.mu.Unlock()

	if up {
		if lh, ok := h.(LevelUpHook); ok {
			lh.OnLevelUp(c, lvl)
		}
	}
}

// MitigatedDamage возвращает урон после защиты.
// Physical/Magical: damage × (1 − clamp(r/(r+100), 0, 0.9)); True/Pure без изменений.
func (c *Character) MitigatedDamage(damage float32, damageType DamageType) float32 {
	if damage <= 0 {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mitigateLocked(damage, damageType)
}

func (c *Character) mitigateLocked(damage float32, damageType DamageType) float32 {
	var resist float32
	switch damageType {
	case DamagePhysical:
		resist = c.armor
	case DamageMagical:
		resist = c.magicResist
	default:
		return damage
	}
	reduction := resist / (resist + 100)
	return damage * (1 - clampFloat32(reduction, 0, maxReduction))
}

// TakeDamage применяет урон и возвращает фактически нанесённый.
// Неположительный урон и урон по мёртвому — no-op с результатом 0.
// Неуязвимость блокирует всё, кроме DamagePure.
func (c *Character) TakeDamage(amount float32, damageType DamageType, source Actor) float32 {
	if amount <= 0 {
		return 0
	}

	c.mu.RLock()
	if c.state&StateAlive == 0 || (c.state&StateInvincible != 0 && damageType != DamagePure) {
		c.mu.RUnlock()
		return 0
	}
	actual := c.mitigateLocked(amount, damageType)
	life := c.lives
	h := c.hooks
	c.mu.RUnlock()

	if th, ok := h.(TakeDamageHook); ok {
		th.OnTakeDamage(c, actual, damageType, source)
	}

	c.mu.Lock()
	// пока работал хук, персонаж мог умереть или умереть и воскреснуть
	if c.state&StateAlive == 0 || c.lives != life {
		c.mu.Unlock()
		return 0
	}
	c.health = max(0, c.health-actual)
	died := c.health <= 0 && c.dieLocked()
	c.mu.Unlock()

	if died {
		c.fireDeath(source)
	}
	return actual
}

// Heal восстанавливает здоровье живому персонажу и возвращает фактически вылеченное.
func (c *Character) Heal(amount float32, source Actor) float32 {
	if amount <= 0 {
		return 0
	}

	c.mu.Lock()
	if c.state&StateAlive == 0 {
		c.mu.Unlock()
		return 0
	}
	old := c.health
	c.health = min(c.health+amount, c.maxHealth)
	actual := c.health - old
	h := c.hooks
	c.mu.Unlock()

	if actual > 0 {
		if hh, ok := h.(HealHook); ok {
			hh.OnHeal(c, actual, source)
		}
	}
	return actual
}

// dieLocked переводит персонажа в Dead. false — уже мёртв.
// Вызывается под c.mu.
func (c *Character) dieLocked() bool {
	if c.state&StateAlive == 0 {
		return false
	}
	c.state &^= StateAlive | StateMoving | StateAttacking | StateCasting
	c.health = 0
	return true
}

func (c *Character) fireDeath(killer Actor) {
	c.mu.RLock()
	h := c.hooks
	c.mu.RUnlock()
	if dh, ok := h.(DeathHook); ok {
		dh.OnDeath(c, killer)
	}
}

// Die убивает персонажа. Повторный вызов — no-op.
func (c *Character) Die(killer Actor) {
	c.mu.Lock()
	died := c.dieLocked()
	c.mu.Unlock()

	if died {
		c.fireDeath(killer)
	}
}

// Respawn оживляет мёртвого персонажа с долей здоровья percent ∈ [0.1, 1]
// и полной маной. Для живого — no-op.
func (c *Character) Respawn(percent float32) {
	c.mu.Lock()
	if c.state&StateAlive != 0 {
		c.mu.Unlock()
		return
	}
	c.state |= StateAlive
	c.lives++
	c.health = c.maxHealth * clampFloat32(percent, 0.1, 1)
	c.mana = c.maxMana
	h := c.hooks
	c.mu.Unlock()

	if rh, ok := h.(RespawnHook); ok {
		rh.OnRespawn(c)
	}
}

// Tick применяет регенерацию за delta секунд.
func (c *Character) Tick(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state&StateAlive == 0 {
		return
	}
	if c.healthRegen > 0 && c.health < c.maxHealth {
		c.health = min(c.health+c.healthRegen*delta, c.maxHealth)
	}
	if c.manaRegen > 0 && c.mana < c.maxMana {
		c.mana = min(c.mana+c.manaRegen*delta, c.maxMana)
	}
}

// Serialize дополняет ключи WorldObject параметрами персонажа.
func (c *Character) Serialize() map[string]any {
	data := c.WorldObject.Serialize()

	c.mu.RLock()
	defer c.mu.RUnlock()
	data["character_name"] = c.name
	data["faction"] = int32(c.faction)
	data["health"] = c.health
	data["max_health"] = c.maxHealth
	data["health_regen"] = c.healthRegen
	data["mana"] = c.mana
	data["max_mana"] = c.maxMana
	data["mana_regen"] = c.manaRegen
	data["move_speed"] = c.moveSpeed
	data["attack_damage"] = c.attackDamage
	data["attack_speed"] = c.attackSpeed
	data["armor"] = c.armor
	data["magic_resist"] = c.magicResist
	data["state_flags"] = uint32(c.state)
	data["level"] = c.level
	return data
}

// Deserialize восстанавливает персонажа; отсутствующие поля получают дефолты.
func (c *Character) Deserialize(data map[string]any) error {
	if err := c.WorldObject.Deserialize(data); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = getString(data, "character_name", "")
	c.faction = Faction(getInt32(data, "faction", int32(FactionNeutral)))
	c.maxHealth = getFloat32(data, "max_health", 100)
	c.health = getFloat32(data, "health", c.maxHealth)
	c.healthRegen = getFloat32(data, "health_regen", 0)
	c.maxMana = getFloat32(data, "max_mana", 100)
	c.mana = getFloat32(data, "mana", c.maxMana)
	c.manaRegen = getFloat32(data, "mana_regen", 0)
	c.moveSpeed = getFloat32(data, "move_speed", 5)
	c.attackDamage = getFloat32(data, "attack_damage", 10)
	c.attackSpeed = getFloat32(data, "attack_speed", 1)
	c.armor = getFloat32(data, "armor", 0)
	c.magicResist = getFloat32(data, "magic_resist", 0)
	c.state = CharacterState(getInt64(data, "state_flags", int64(StateAlive)))
	c.level = getInt32(data, "level", 1)
	return nil
}

func clampFloat32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

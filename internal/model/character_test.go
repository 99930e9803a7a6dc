package model

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type combatRecorder struct {
	damage   []float32
	healed   []float32
	deaths   int
	killer   Actor
	respawns int
	levels   []int32

	// healthAtHook — здоровье в момент OnTakeDamage (до вычитания)
	healthAtHook float32
}

func (r *combatRecorder) OnTakeDamage(c *Character, amount float32, _ DamageType, _ Actor) {
	r.damage = append(r.damage, amount)
	r.healthAtHook = c.Health()
}

func (r *combatRecorder) OnHeal(_ *Character, amount float32, _ Actor) {
	r.healed = append(r.healed, amount)
}

func (r *combatRecorder) OnDeath(_ *Character, killer Actor) {
	r.deaths++
	r.killer = killer
}

func (r *combatRecorder) OnRespawn(*Character) { r.respawns++ }

func (r *combatRecorder) OnLevelUp(_ *Character, level int32) {
	r.levels = append(r.levels, level)
}

type deathCounter struct{ n atomic.Int32 }

func (d *deathCounter) OnDeath(*Character, Actor) { d.n.Add(1) }

func TestNewCharacter_Defaults(t *testing.T) {
	c := NewCharacter("hero", "Hero")

	assert.Equal(t, "hero", c.ObjectID())
	assert.Equal(t, "Hero", c.Name())
	assert.Equal(t, ObjectInteractable, c.ObjectType())
	assert.Equal(t, FactionNeutral, c.Faction())
	assert.Equal(t, float32(100), c.Health())
	assert.Equal(t, float32(100), c.MaxHealth())
	assert.Equal(t, float32(100), c.Mana())
	assert.Equal(t, float32(5), c.MoveSpeed())
	assert.Equal(t, float32(10), c.AttackDamage())
	assert.Equal(t, float32(1), c.AttackSpeed())
	assert.Equal(t, int32(1), c.Level())
	assert.True(t, c.IsAlive())
	assert.True(t, c.CanMove())
	assert.True(t, c.CanAttack())
	assert.True(t, c.CanCast())
}

func TestCharacter_HealthClamp(t *testing.T) {
	c := NewCharacter("c", "C")

	c.SetHealth(500)
	assert.Equal(t, float32(100), c.Health())

	c.SetMaxHealth(40)
	assert.Equal(t, float32(40), c.Health(), "health follows lower max")

	c.SetMaxHealth(-10)
	assert.Equal(t, float32(1), c.MaxHealth(), "max health at least 1")

	c.SetMaxMana(-1)
	assert.Equal(t, float32(0), c.MaxMana())
	assert.Equal(t, float32(0), c.Mana())

	c.SetAttackSpeed(0)
	assert.Equal(t, float32(0.1), c.AttackSpeed())
}

func TestCharacter_TakeDamageMitigation(t *testing.T) {
	tests := []struct {
		name        string
		armor       float32
		magicResist float32
		amount      float32
		damageType  DamageType
		want        float32
	}{
		{"armor 100 halves physical", 100, 0, 100, DamagePhysical, 50},
		{"no armor", 0, 0, 30, DamagePhysical, 30},
		{"magic resist 100", 0, 100, 60, DamageMagical, 30},
		{"armor ignored by magic", 100, 0, 60, DamageMagical, 60},
		{"true ignores armor", 300, 300, 40, DamageTrue, 40},
		{"pure ignores armor", 300, 300, 40, DamagePure, 40},
		{"reduction capped at 90%", 100000, 0, 100, DamagePhysical, 10},
		{"negative armor clamps to zero reduction", -50, 0, 20, DamagePhysical, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCharacter("c", "C")
			c.SetMaxHealth(1000)
			c.SetHealth(1000)
			c.SetArmor(tt.armor)
			c.SetMagicResist(tt.magicResist)

			got := c.TakeDamage(tt.amount, tt.damageType, nil)
			assert.InDelta(t, tt.want, got, 1e-3)
			assert.InDelta(t, 1000-tt.want, c.Health(), 1e-3)
		})
	}
}

func TestCharacter_TakeDamageNoop(t *testing.T) {
	c := NewCharacter("c", "C")
	rec := &combatRecorder{}
	c.SetHooks(rec)

	assert.Zero(t, c.TakeDamage(0, DamagePhysical, nil))
	assert.Zero(t, c.TakeDamage(-5, DamagePhysical, nil))

	c.AddState(StateInvincible)
	assert.Zero(t, c.TakeDamage(50, DamageTrue, nil), "invincible blocks true damage")
	assert.Equal(t, float32(40), c.TakeDamage(40, DamagePure, nil), "pure pierces invincibility")

	assert.Equal(t, []float32{40}, rec.damage)
}

func TestCharacter_HookSeesHealthBeforeSubtract(t *testing.T) {
	c := NewCharacter("c", "C")
	rec := &combatRecorder{}
	c.SetHooks(rec)

	c.TakeDamage(30, DamageTrue, nil)
	assert.Equal(t, float32(100), rec.healthAtHook)
	assert.Equal(t, float32(70), c.Health())
}

// lifeSwapper убивает (и при revive воскрешает) персонажа прямо из OnTakeDamage.
type lifeSwapper struct{ revive bool }

func (l lifeSwapper) OnTakeDamage(c *Character, _ float32, _ DamageType, _ Actor) {
	c.Die(nil)
	if l.revive {
		c.Respawn(1)
	}
}

func TestCharacter_DamageDroppedAcrossLives(t *testing.T) {
	tests := []struct {
		name       string
		revive     bool
		wantAlive  bool
		wantHealth float32
	}{
		{"died during hook", false, false, 0},
		{"died and respawned during hook", true, true, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCharacter("c", "C")
			c.SetHooks(lifeSwapper{revive: tt.revive})

			got := c.TakeDamage(30, DamageTrue, nil)
			assert.Zero(t, got)
			assert.Equal(t, tt.wantAlive, c.IsAlive())
			assert.Equal(t, tt.wantHealth, c.Health())
		})
	}
}

func TestCharacter_DeathOnce(t *testing.T) {
	c := NewCharacter("c", "C")
	rec := &combatRecorder{}
	c.SetHooks(rec)
	killer := NewWorldObject("monster_1", ObjectGeneric, Position{})

	c.AddState(StateMoving | StateAttacking | StateCasting | StateStunned)
	got := c.TakeDamage(250, DamageTrue, killer)

	assert.Equal(t, float32(250), got)
	assert.Equal(t, float32(0), c.Health())
	assert.True(t, c.IsDead())
	assert.False(t, c.HasState(StateMoving|StateAttacking|StateCasting))
	assert.True(t, c.HasState(StateStunned), "unrelated states survive death")
	assert.Equal(t, 1, rec.deaths)
	assert.Equal(t, killer, rec.killer)

	// урон и смерть по трупу — no-op
	assert.Zero(t, c.TakeDamage(10, DamagePure, killer))
	c.Die(nil)
	c.SetHealth(0)
	assert.Equal(t, 1, rec.deaths)
	assert.False(t, c.CanMove())
	assert.False(t, c.CanAttack())
	assert.False(t, c.CanCast())
}

func TestCharacter_SetHealthZeroKills(t *testing.T) {
	c := NewCharacter("c", "C")
	rec := &combatRecorder{}
	c.SetHooks(rec)

	c.SetHealth(0)
	assert.True(t, c.IsDead())
	assert.Equal(t, 1, rec.deaths)
	assert.Nil(t, rec.killer)
}

func TestCharacter_Respawn(t *testing.T) {
	tests := []struct {
		name    string
		percent float32
		want    float32
	}{
		{"half", 0.5, 100},
		{"below minimum", 0, 20},
		{"above maximum", 3, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCharacter("c", "C")
			rec := &combatRecorder{}
			c.SetHooks(rec)
			c.SetMaxHealth(200)
			c.SetMana(10)
			c.Die(nil)

			c.Respawn(tt.percent)
			assert.True(t, c.IsAlive())
			assert.InDelta(t, tt.want, c.Health(), 1e-3)
			assert.Equal(t, c.MaxMana(), c.Mana())
			assert.Equal(t, 1, rec.respawns)

			// живого второй раз не воскрешаем
			c.Respawn(1)
			assert.Equal(t, 1, rec.respawns)
		})
	}
}

func TestCharacter_Heal(t *testing.T) {
	c := NewCharacter("c", "C")
	rec := &combatRecorder{}
	c.SetHooks(rec)
	c.SetHealth(90)

	assert.Equal(t, float32(10), c.Heal(25, nil))
	assert.Equal(t, float32(100), c.Health())
	assert.Zero(t, c.Heal(5, nil), "full health")
	assert.Zero(t, c.Heal(-5, nil))
	assert.Equal(t, []float32{10}, rec.healed)

	c.Die(nil)
	assert.Zero(t, c.Heal(50, nil), "dead cannot be healed")
}

func TestCharacter_StatePredicates(t *testing.T) {
	tests := []struct {
		name      string
		states    CharacterState
		canMove   bool
		canAttack bool
		canCast   bool
	}{
		{"alive", StateAlive, true, true, true},
		{"stunned", StateAlive | StateStunned, false, false, false},
		{"rooted", StateAlive | StateRooted, false, true, true},
		{"silenced", StateAlive | StateSilenced, true, true, false},
		{"dead", StateNone, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCharacter("c", "C")
			c.SetStates(tt.states)
			assert.Equal(t, tt.canMove, c.CanMove())
			assert.Equal(t, tt.canAttack, c.CanAttack())
			assert.Equal(t, tt.canCast, c.CanCast())
		})
	}
}

func TestCharacter_ConsumeMana(t *testing.T) {
	c := NewCharacter("c", "C")

	assert.True(t, c.ConsumeMana(30))
	assert.Equal(t, float32(70), c.Mana())
	assert.False(t, c.ConsumeMana(71))
	assert.Equal(t, float32(70), c.Mana())
	assert.True(t, c.ConsumeMana(0))
	assert.True(t, c.HasMana(70))
}

func TestCharacter_Tick(t *testing.T) {
	c := NewCharacter("c", "C")
	c.SetHealthRegen(5)
	c.SetManaRegen(2)
	c.SetHealth(50)
	c.SetMana(95)

	c.Tick(2)
	assert.Equal(t, float32(60), c.Health())
	assert.Equal(t, float32(99), c.Mana())

	c.Tick(10)
	assert.Equal(t, float32(100), c.Health())
	assert.Equal(t, float32(100), c.Mana())

	c.Die(nil)
	c.Tick(10)
	assert.Equal(t, float32(0), c.Health(), "dead characters do not regenerate")
}

func TestCharacter_SetLevel(t *testing.T) {
	c := NewCharacter("c", "C")
	rec := &combatRecorder{}
	c.SetHooks(rec)

	c.SetLevel(3)
	c.SetLevel(2)
	c.SetLevel(0)

	assert.Equal(t, int32(1), c.Level())
	assert.Equal(t, []int32{3}, rec.levels, "only increases fire the hook")
}

func TestCharacter_SerializeRoundTrip(t *testing.T) {
	c := NewCharacter("npc_0_0_36_0", "villager")
	c.SetFaction(FactionFriendly)
	c.SetMaxHealth(137)
	c.SetHealth(120)
	c.SetArmor(12.5)
	c.SetLevel(4)
	c.AddState(StateInvisible)
	c.SetPosition(NewPosition(36, 0))

	raw, err := json.Marshal(c.Serialize())
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	got := NewCharacter("", "")
	require.NoError(t, got.Deserialize(decoded))

	assert.Equal(t, "npc_0_0_36_0", got.ObjectID())
	assert.Equal(t, "villager", got.Name())
	assert.Equal(t, FactionFriendly, got.Faction())
	assert.Equal(t, float32(137), got.MaxHealth())
	assert.Equal(t, float32(120), got.Health())
	assert.Equal(t, float32(12.5), got.Armor())
	assert.Equal(t, int32(4), got.Level())
	assert.Equal(t, StateAlive|StateInvisible, got.States())
	assert.Equal(t, NewPosition(36, 0), got.Position())
}

func TestCharacter_DeserializeDefaults(t *testing.T) {
	c := NewCharacter("c", "C")
	c.SetMaxHealth(500)
	c.SetLevel(10)

	require.NoError(t, c.Deserialize(map[string]any{}))
	assert.Equal(t, float32(100), c.MaxHealth())
	assert.Equal(t, float32(100), c.Health())
	assert.Equal(t, int32(1), c.Level())
	assert.True(t, c.IsAlive())
}

func TestCharacter_ConcurrentDamage(t *testing.T) {
	c := NewCharacter("c", "C")
	c.SetMaxHealth(10000)
	c.SetHealth(10000)
	rec := &deathCounter{}
	c.SetHooks(rec)

	var wg sync.WaitGroup
	for range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.TakeDamage(100, DamageTrue, nil)
		}()
	}
	wg.Wait()

	assert.True(t, c.IsDead())
	assert.Equal(t, int32(1), rec.n.Load(), "death hook fires exactly once")
}

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStack — хелпер: стак itemID с заданным максимумом и количеством.
func newStack(itemID string, maxStack, qty int32) *Item {
	it := NewItem(itemID, 1)
	it.SetMaxStackSize(maxStack)
	it.SetQuantity(qty)
	return it
}

func TestNewItem_Defaults(t *testing.T) {
	it := NewItem("gold_coin", 5)

	assert.Equal(t, "gold_coin", it.ItemID())
	// max stack по умолчанию 1, количество клампится
	assert.Equal(t, int32(1), it.Quantity())
	assert.Equal(t, int32(1), it.MaxStackSize())
	assert.Equal(t, int32(DurabilityInfinite), it.Durability())
	assert.False(t, it.HasDurability())
	assert.Equal(t, CategoryMisc, it.Category())
	assert.Equal(t, RarityCommon, it.Rarity())
	assert.Equal(t, DefaultItemFlags, it.Flags())
	assert.False(t, it.IsStackable(), "max stack 1 is not stackable")
	assert.True(t, it.IsValid())
}

func TestItem_SetQuantityClamp(t *testing.T) {
	tests := []struct {
		name string
		max  int32
		set  int32
		want int32
	}{
		{"within range", 10, 7, 7},
		{"above max", 10, 50, 10},
		{"negative", 10, -3, 0},
		{"zero", 10, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := newStack("bread", tt.max, 1)
			it.SetQuantity(tt.set)
			assert.Equal(t, tt.want, it.Quantity())
		})
	}
}

func TestItem_SetMaxStackSize(t *testing.T) {
	it := newStack("bread", 50, 40)

	it.SetMaxStackSize(20)
	assert.Equal(t, int32(20), it.MaxStackSize())
	assert.Equal(t, int32(20), it.Quantity(), "quantity trimmed to new max")

	it.SetMaxStackSize(0)
	assert.Equal(t, int32(1), it.MaxStackSize())

	it.SetMaxStackSize(100000)
	assert.Equal(t, int32(MaxStackSize), it.MaxStackSize())
}

func TestItem_AddQuantity(t *testing.T) {
	it := newStack("bread", 10, 7)

	overflow, err := it.AddQuantity(5)
	require.NoError(t, err)
	assert.Equal(t, int32(10), it.Quantity())
	assert.Equal(t, int32(2), overflow)
	assert.True(t, it.IsFullStack())
	assert.Equal(t, int32(0), it.AvailableStackSpace())

	_, err = it.AddQuantity(-1)
	require.ErrorIs(t, err, ErrNegativeAmount)
	assert.Equal(t, int32(10), it.Quantity(), "negative amount leaves state unchanged")
}

func TestItem_RemoveQuantity(t *testing.T) {
	it := newStack("bread", 10, 4)

	removed, err := it.RemoveQuantity(3)
	require.NoError(t, err)
	assert.Equal(t, int32(3), removed)
	assert.Equal(t, int32(1), it.Quantity())

	removed, err = it.RemoveQuantity(5)
	require.NoError(t, err)
	assert.Equal(t, int32(1), removed)
	assert.True(t, it.IsEmpty())

	_, err = it.RemoveQuantity(-2)
	require.ErrorIs(t, err, ErrNegativeAmount)
}

func TestItem_StackWith(t *testing.T) {
	a := newStack("bread", 10, 8)
	b := newStack("bread", 10, 5)

	require.True(t, a.CanStackWith(b))
	rest, err := a.StackWith(b)
	require.NoError(t, err)
	assert.Equal(t, int32(3), rest)
	assert.Equal(t, int32(10), a.Quantity())
	assert.Equal(t, int32(3), b.Quantity())

	// полный стак больше не принимает
	assert.False(t, a.CanStackWith(b))
	_, err = a.StackWith(b)
	require.ErrorIs(t, err, ErrCannotStack)
}

func TestItem_StackWith_Rejects(t *testing.T) {
	a := newStack("bread", 10, 2)

	assert.False(t, a.CanStackWith(a))
	_, err := a.StackWith(a)
	require.ErrorIs(t, err, ErrSameItem)
	assert.Equal(t, int32(2), a.Quantity())

	_, err = a.StackWith(nil)
	require.ErrorIs(t, err, ErrNilItem)

	other := newStack("iron_sword", 10, 1)
	assert.False(t, a.CanStackWith(other), "different ids")

	noFlag := newStack("bread", 10, 1)
	noFlag.RemoveFlag(FlagStackable)
	assert.False(t, a.CanStackWith(noFlag), "not stackable")

	worn := newStack("bread", 10, 1)
	worn.SetMaxDurability(100)
	worn.SetDurability(50)
	fresh := newStack("bread", 10, 1)
	fresh.SetMaxDurability(100)
	fresh.SetDurability(100)
	assert.False(t, worn.CanStackWith(fresh), "durability mismatch")
}

func TestItem_Split(t *testing.T) {
	it := newStack("health_potion", 20, 10)
	it.SetCustomValue("quality", "fine")

	part, err := it.Split(4)
	require.NoError(t, err)
	assert.Equal(t, int32(6), it.Quantity())
	assert.Equal(t, int32(4), part.Quantity())
	assert.Equal(t, "health_potion", part.ItemID())
	assert.Equal(t, "fine", part.CustomValue("quality", nil))

	// custom data копируется, а не разделяется
	part.SetCustomValue("quality", "poor")
	assert.Equal(t, "fine", it.CustomValue("quality", nil))

	for _, bad := range []int32{0, -1, 6, 7} {
		_, err := it.Split(bad)
		require.ErrorIs(t, err, ErrInvalidSplit, "split %d", bad)
	}
}

func TestItem_Durability(t *testing.T) {
	it := NewItem("iron_sword", 1)
	require.NoError(t, it.Damage(10), "infinite durability ignores damage")
	assert.False(t, it.IsBroken())
	assert.Equal(t, float32(1), it.DurabilityPercent())

	it.SetMaxDurability(100)
	it.SetDurability(100)

	hook := &itemHookRecorder{}
	it.SetHooks(hook)

	require.NoError(t, it.Damage(30))
	assert.Equal(t, int32(70), it.Durability())
	assert.InDelta(t, 0.7, it.DurabilityPercent(), 1e-6)

	require.ErrorIs(t, it.Damage(-5), ErrNegativeAmount)
	assert.Equal(t, int32(70), it.Durability())

	require.NoError(t, it.Damage(500))
	assert.Equal(t, int32(0), it.Durability())
	assert.True(t, it.IsBroken())
	assert.Equal(t, 1, hook.depleted)

	require.NoError(t, it.Repair(40))
	assert.Equal(t, int32(40), it.Durability())
	require.ErrorIs(t, it.Repair(-1), ErrNegativeAmount)

	it.RepairFull()
	assert.Equal(t, int32(100), it.Durability())
}

func TestItem_ValueAndWeight(t *testing.T) {
	it := newStack("gold_coin", 99, 12)
	it.SetBaseValue(5)
	it.SetWeight(0.5)

	assert.Equal(t, int32(60), it.TotalValue())
	assert.InDelta(t, 6.0, it.TotalWeight(), 1e-6)
}

type itemHookRecorder struct {
	allowUse  bool
	used      int
	equipped  int
	unequip   int
	depleted  int
	lastActor Actor
}

func (r *itemHookRecorder) OnUse(_ *Item, user Actor) bool {
	r.used++
	r.lastActor = user
	return r.allowUse
}

func (r *itemHookRecorder) OnEquip(_ *Item, user Actor) {
	r.equipped++
	r.lastActor = user
}

func (r *itemHookRecorder) OnUnequip(_ *Item, _ Actor)   { r.unequip++ }
func (r *itemHookRecorder) OnDurabilityDepleted(_ *Item) { r.depleted++ }

func TestItem_UseEquip(t *testing.T) {
	user := NewWorldObject("player_1", ObjectGeneric, Position{})

	t.Run("use requires flag and hook", func(t *testing.T) {
		it := newStack("health_potion", 10, 3)
		assert.False(t, it.Use(user), "no Usable flag")

		it.AddFlag(FlagUsable)
		assert.False(t, it.Use(user), "no hook")

		hook := &itemHookRecorder{allowUse: true}
		it.SetHooks(hook)
		assert.True(t, it.Use(user))
		assert.Equal(t, int32(3), it.Quantity(), "not consumable")

		it.AddFlag(FlagConsumable)
		assert.True(t, it.Use(user))
		assert.Equal(t, int32(2), it.Quantity())
		assert.Equal(t, 2, hook.used)
		assert.Equal(t, user, hook.lastActor)
	})

	t.Run("rejected use keeps quantity", func(t *testing.T) {
		it := newStack("health_potion", 10, 3)
		it.AddFlag(FlagUsable | FlagConsumable)
		it.SetHooks(&itemHookRecorder{allowUse: false})
		assert.False(t, it.Use(user))
		assert.Equal(t, int32(3), it.Quantity())
	})

	t.Run("equip requires flag", func(t *testing.T) {
		hook := &itemHookRecorder{}
		it := NewItem("leather_armor", 1)
		it.SetHooks(hook)

		it.Equip(user)
		assert.Equal(t, 0, hook.equipped)

		it.AddFlag(FlagEquippable)
		it.Equip(user)
		it.Unequip(user)
		assert.Equal(t, 1, hook.equipped)
		assert.Equal(t, 1, hook.unequip)
	})
}

func TestItem_SerializeOmitsDefaults(t *testing.T) {
	it := NewItem("bread", 1)

	data := it.Serialize()
	assert.Equal(t, map[string]any{"item_id": "bread", "quantity": int32(1)}, data)
}

func TestItem_SerializeJSONRoundTrip(t *testing.T) {
	it := newStack("magic_scroll", 99, 7)
	it.SetDisplayName("magic_scroll")
	it.SetRarity(RarityEpic)
	it.SetCategory(CategoryConsumable)
	it.SetBaseValue(42)
	it.SetWeight(0.25)
	it.SetMaxDurability(10)
	it.SetDurability(4)
	it.AddFlag(FlagUnique)
	it.SetCustomValue("school", "fire")

	raw, err := json.Marshal(it.Serialize())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	got := ItemFromMap(decoded)
	assert.Equal(t, "magic_scroll", got.ItemID())
	assert.Equal(t, "magic_scroll", got.DisplayName())
	assert.Equal(t, int32(7), got.Quantity())
	assert.Equal(t, int32(99), got.MaxStackSize())
	assert.Equal(t, RarityEpic, got.Rarity())
	assert.Equal(t, CategoryConsumable, got.Category())
	assert.Equal(t, int32(42), got.BaseValue())
	assert.InDelta(t, 0.25, got.Weight(), 1e-6)
	assert.Equal(t, int32(4), got.Durability())
	assert.Equal(t, int32(10), got.MaxDurability())
	assert.True(t, got.HasFlag(FlagUnique))
	assert.Equal(t, "fire", got.CustomValue("school", nil))
}

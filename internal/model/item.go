package model

import (
	"errors"
	"fmt"
)

// Ошибки операций над предметами и контейнерами.
var (
	ErrNegativeAmount    = errors.New("amount must not be negative")
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrNilItem           = errors.New("item is nil")
	ErrCannotStack       = errors.New("items cannot be stacked together")
	ErrSameItem          = errors.New("cannot stack item with itself")
	ErrInvalidSplit      = errors.New("split amount must be in (0, quantity)")
)

const (
	// MaxStackSize — верхняя граница max_stack_size.
	MaxStackSize = 9999

	// DurabilityInfinite — предмет без износа.
	DurabilityInfinite = -1
)

// ItemCategory — категория предмета.
type ItemCategory int32

const (
	CategoryMaterial ItemCategory = iota
	CategoryConsumable
	CategoryEquipment
	CategoryTool
	CategoryQuest
	CategoryMisc
)

var categoryNames = [...]string{"Material", "Consumable", "Equipment", "Tool", "Quest", "Misc"}

func (c ItemCategory) String() string {
	if c >= 0 && int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("ItemCategory(%d)", int32(c))
}

// ItemRarity — редкость предмета.
type ItemRarity int32

const (
	RarityCommon ItemRarity = iota
	RarityUncommon
	RarityRare
	RarityEpic
	RarityLegendary
)

var rarityNames = [...]string{"Common", "Uncommon", "Rare", "Epic", "Legendary"}

func (r ItemRarity) String() string {
	if r >= 0 && int(r) < len(rarityNames) {
		return rarityNames[r]
	}
	return fmt.Sprintf("ItemRarity(%d)", int32(r))
}

// ItemFlags — битовая маска возможностей предмета.
type ItemFlags uint32

const (
	FlagStackable ItemFlags = 1 << iota
	FlagTradeable
	FlagDroppable
	FlagConsumable
	FlagEquippable
	FlagUsable
	FlagQuest
	FlagUnique

	DefaultItemFlags = FlagStackable | FlagTradeable | FlagDroppable
)

// Item — стак предметов одного типа.
//
// Item не синхронизирован: им владеет слот контейнера,
// и все обращения идут под блокировкой этого контейнера.
type Item struct {
	itemID      string
	displayName string
	description string

	quantity     int32
	maxStackSize int32

	durability    int32
	maxDurability int32

	category ItemCategory
	rarity   ItemRarity
	flags    ItemFlags

	baseValue int32
	weight    float32

	customData map[string]any

	hooks any
}

// NewItem создаёт предмет с дефолтами (max stack 1, без износа).
// Количество клампится к [0, max_stack_size].
func NewItem(itemID string, quantity int32) *Item {
	it := &Item{
		itemID:        itemID,
		quantity:      1,
		maxStackSize:  1,
		durability:    DurabilityInfinite,
		maxDurability: DurabilityInfinite,
		category:      CategoryMisc,
		rarity:        RarityCommon,
		flags:         DefaultItemFlags,
	}
	it.SetQuantity(quantity)
	return it
}

// SetHooks подключает объект, реализующий UseHook, EquipHook,
// UnequipHook и/или DurabilityDepletedHook.
func (i *Item) SetHooks(h any) { i.hooks = h }

func (i *Item) ItemID() string          { return i.itemID }
func (i *Item) SetItemID(id string)     { i.itemID = id }
func (i *Item) DisplayName() string     { return i.displayName }
func (i *Item) SetDisplayName(n string) { i.displayName = n }
func (i *Item) Description() string     { return i.description }
func (i *Item) SetDescription(d string) { i.description = d }

// Quantity возвращает размер стака.
func (i *Item) Quantity() int32 { return i.quantity }

// SetQuantity клампит значение к [0, max_stack_size].
func (i *Item) SetQuantity(q int32) {
	i.quantity = clampInt32(q, 0, i.maxStackSize)
}

func (i *Item) MaxStackSize() int32 { return i.maxStackSize }

// SetMaxStackSize клампит к [1, MaxStackSize] и урезает текущий стак.
func (i *Item) SetMaxStackSize(n int32) {
	i.maxStackSize = clampInt32(n, 1, MaxStackSize)
	if i.quantity > i.maxStackSize {
		i.quantity = i.maxStackSize
	}
}

func (i *Item) AvailableStackSpace() int32 { return i.maxStackSize - i.quantity }
func (i *Item) IsFullStack() bool          { return i.quantity >= i.maxStackSize }
func (i *Item) IsEmpty() bool              { return i.quantity <= 0 }

// IsStackable: флаг Stackable и max_stack_size > 1.
func (i *Item) IsStackable() bool {
	return i.HasFlag(FlagStackable) && i.maxStackSize > 1
}

// AddQuantity добавляет amount в стак и возвращает остаток, не поместившийся в стак.
func (i *Item) AddQuantity(amount int32) (int32, error) {
	if amount < 0 {
		return 0, fmt.Errorf("adding %d to %s: %w", amount, i.itemID, ErrNegativeAmount)
	}
	space := i.AvailableStackSpace()
	if amount <= space {
		i.quantity += amount
		return 0, nil
	}
	i.quantity = i.maxStackSize
	return amount - space, nil
}

// RemoveQuantity убирает до amount единиц и возвращает фактически снятое.
func (i *Item) RemoveQuantity(amount int32) (int32, error) {
	if amount < 0 {
		return 0, fmt.Errorf("removing %d from %s: %w", amount, i.itemID, ErrNegativeAmount)
	}
	removed := min(amount, i.quantity)
	i.quantity -= removed
	return removed, nil
}

// CanStackWith проверяет, можно ли влить other в этот стак.
// Стак с самим собой запрещён.
func (i *Item) CanStackWith(other *Item) bool {
	if other == nil || other == i {
		return false
	}
	if !i.IsStackable() || !other.IsStackable() {
		return false
	}
	if i.itemID != other.itemID {
		return false
	}
	if i.IsFullStack() {
		return false
	}
	// предметы с износом стакаются только при равной прочности
	if i.HasDurability() && i.durability != other.durability {
		return false
	}
	return true
}

// StackWith переливает other в этот стак; в other остаётся переполнение,
// которое и возвращается.
func (i *Item) StackWith(other *Item) (int32, error) {
	if other == nil {
		return 0, ErrNilItem
	}
	if other == i {
		return 0, fmt.Errorf("stacking %s: %w", i.itemID, ErrSameItem)
	}
	if !i.CanStackWith(other) {
		return 0, fmt.Errorf("stacking %s with %s: %w", i.itemID, other.itemID, ErrCannotStack)
	}
	overflow, err := i.AddQuantity(other.quantity)
	if err != nil {
		return 0, err
	}
	other.SetQuantity(overflow)
	return overflow, nil
}

// Split отделяет amount единиц в новый стак.
func (i *Item) Split(amount int32) (*Item, error) {
	if amount <= 0 || amount >= i.quantity {
		return nil, fmt.Errorf("splitting %d of %d %s: %w", amount, i.quantity, i.itemID, ErrInvalidSplit)
	}
	part := i.Clone()
	part.SetQuantity(amount)
	i.quantity -= amount
	return part, nil
}

// Clone — глубокая копия (custom data копируется, hooks разделяются).
func (i *Item) Clone() *Item {
	cp := *i
	cp.customData = cloneMap(i.customData)
	return &cp
}

// Durability.

func (i *Item) Durability() int32    { return i.durability }
func (i *Item) MaxDurability() int32 { return i.maxDurability }
func (i *Item) HasDurability() bool  { return i.maxDurability != DurabilityInfinite }
func (i *Item) IsBroken() bool       { return i.HasDurability() && i.durability <= 0 }

// SetDurability: DurabilityInfinite сохраняется как есть, иначе clamp [0, max].
func (i *Item) SetDurability(d int32) {
	if d == DurabilityInfinite {
		i.durability = DurabilityInfinite
		return
	}
	i.durability = clampInt32(d, 0, i.maxDurability)
}

func (i *Item) SetMaxDurability(m int32) {
	i.maxDurability = m
	if m != DurabilityInfinite && i.durability > m {
		i.durability = m
	}
}

// DurabilityPercent возвращает 1 для предметов без износа.
func (i *Item) DurabilityPercent() float32 {
	if !i.HasDurability() || i.maxDurability <= 0 {
		return 1
	}
	return float32(i.durability) / float32(i.maxDurability)
}

// Damage снижает прочность. При достижении нуля вызывается DurabilityDepletedHook.
func (i *Item) Damage(amount int32) error {
	if !i.HasDurability() {
		return nil
	}
	if amount < 0 {
		return fmt.Errorf("damaging %s by %d: %w", i.itemID, amount, ErrNegativeAmount)
	}
	i.durability = max(0, i.durability-amount)
	if i.durability <= 0 {
		if h, ok := i.hooks.(DurabilityDepletedHook); ok {
			h.OnDurabilityDepleted(i)
		}
	}
	return nil
}

func (i *Item) Repair(amount int32) error {
	if !i.HasDurability() {
		return nil
	}
	if amount < 0 {
		return fmt.Errorf("repairing %s by %d: %w", i.itemID, amount, ErrNegativeAmount)
	}
	i.durability = min(i.maxDurability, i.durability+amount)
	return nil
}

func (i *Item) RepairFull() {
	if i.HasDurability() {
		i.durability = i.maxDurability
	}
}

// Classification.

func (i *Item) Category() ItemCategory       { return i.category }
func (i *Item) SetCategory(c ItemCategory)   { i.category = c }
func (i *Item) Rarity() ItemRarity           { return i.rarity }
func (i *Item) SetRarity(r ItemRarity)       { i.rarity = r }
func (i *Item) Flags() ItemFlags             { return i.flags }
func (i *Item) SetFlags(f ItemFlags)         { i.flags = f }
func (i *Item) HasFlag(f ItemFlags) bool     { return i.flags&f != 0 }
func (i *Item) AddFlag(f ItemFlags)          { i.flags |= f }
func (i *Item) RemoveFlag(f ItemFlags)       { i.flags &^= f }
func (i *Item) BaseValue() int32             { return i.baseValue }
func (i *Item) SetBaseValue(v int32)         { i.baseValue = v }
func (i *Item) Weight() float32              { return i.weight }
func (i *Item) SetWeight(w float32)          { i.weight = w }
func (i *Item) TotalValue() int32            { return i.baseValue * i.quantity }
func (i *Item) TotalWeight() float32         { return i.weight * float32(i.quantity) }
func (i *Item) CustomData() map[string]any   { return cloneMap(i.customData) }
func (i *Item) RemoveCustomValue(key string) { delete(i.customData, key) }

func (i *Item) HasCustomValue(key string) bool {
	_, ok := i.customData[key]
	return ok
}

func (i *Item) SetCustomValue(key string, value any) {
	if i.customData == nil {
		i.customData = make(map[string]any)
	}
	i.customData[key] = value
}

// CustomValue возвращает значение по ключу или def.
func (i *Item) CustomValue(key string, def any) any {
	if v, ok := i.customData[key]; ok {
		return v
	}
	return def
}

// IsValid: есть идентификатор и ненулевой стак.
func (i *Item) IsValid() bool { return i.itemID != "" && i.quantity > 0 }

// Use требует флаг Usable и UseHook. Consumable-предмет тратит единицу при успехе.
func (i *Item) Use(user Actor) bool {
	if !i.HasFlag(FlagUsable) {
		return false
	}
	h, ok := i.hooks.(UseHook)
	if !ok {
		return false
	}
	used := h.OnUse(i, user)
	if used && i.HasFlag(FlagConsumable) {
		_, _ = i.RemoveQuantity(1)
	}
	return used
}

func (i *Item) Equip(user Actor) {
	if !i.HasFlag(FlagEquippable) {
		return
	}
	if h, ok := i.hooks.(EquipHook); ok {
		h.OnEquip(i, user)
	}
}

func (i *Item) Unequip(user Actor) {
	if h, ok := i.hooks.(UnequipHook); ok {
		h.OnUnequip(i, user)
	}
}

// Serialize пишет item_id и quantity всегда, остальное — только если отличается от дефолта.
func (i *Item) Serialize() map[string]any {
	data := map[string]any{
		"item_id":  i.itemID,
		"quantity": i.quantity,
	}
	if i.displayName != "" {
		data["display_name"] = i.displayName
	}
	if i.description != "" {
		data["description"] = i.description
	}
	if i.maxStackSize != 1 {
		data["max_stack_size"] = i.maxStackSize
	}
	if i.durability != DurabilityInfinite {
		data["durability"] = i.durability
	}
	if i.maxDurability != DurabilityInfinite {
		data["max_durability"] = i.maxDurability
	}
	if i.category != CategoryMisc {
		data["category"] = int32(i.category)
	}
	if i.rarity != RarityCommon {
		data["rarity"] = int32(i.rarity)
	}
	if i.flags != DefaultItemFlags {
		data["flags"] = uint32(i.flags)
	}
	if i.baseValue != 0 {
		data["base_value"] = i.baseValue
	}
	if i.weight != 0 {
		data["weight"] = i.weight
	}
	if len(i.customData) > 0 {
		data["custom_data"] = cloneMap(i.customData)
	}
	return data
}

// Deserialize восстанавливает предмет; отсутствующие ключи получают дефолты.
// Значения берутся как есть, без клампа.
func (i *Item) Deserialize(data map[string]any) {
	i.itemID = getString(data, "item_id", "")
	i.quantity = getInt32(data, "quantity", 1)
	i.displayName = getString(data, "display_name", "")
	i.description = getString(data, "description", "")
	i.maxStackSize = getInt32(data, "max_stack_size", 1)
	i.durability = getInt32(data, "durability", DurabilityInfinite)
	i.maxDurability = getInt32(data, "max_durability", DurabilityInfinite)
	i.category = ItemCategory(getInt32(data, "category", int32(CategoryMisc)))
	i.rarity = ItemRarity(getInt32(data, "rarity", int32(RarityCommon)))
	i.flags = ItemFlags(getInt64(data, "flags", int64(DefaultItemFlags)))
	i.baseValue = getInt32(data, "base_value", 0)
	i.weight = getFloat32(data, "weight", 0)
	i.customData = cloneMap(getMap(data, "custom_data"))
}

// ItemFromMap — конструктор поверх Deserialize.
func ItemFromMap(data map[string]any) *Item {
	it := NewItem("", 1)
	it.Deserialize(data)
	return it
}

func (i *Item) String() string {
	return fmt.Sprintf("Item[%s x%d]", i.itemID, i.quantity)
}

func clampInt32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

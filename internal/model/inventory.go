package model

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrSlotOutOfRange  = errors.New("slot out of range")
	ErrInvalidCapacity = errors.New("container capacity must not be negative")
	ErrNoContainer     = errors.New("object has no container")
	ErrItemStored      = errors.New("item is already stored in this container")
)

// Container — фиксированный массив слотов под предметы.
// Ёмкость задаётся один раз при создании.
//
// Thread-safe: все операции под c.mu. Хуки OnItemAdded/OnItemRemoved
// вызываются после снятия блокировки.
type Container struct {
	mu    sync.RWMutex
	slots []*Item
	hooks any
}

// slotEvent — отложенный вызов хука.
type slotEvent struct {
	added bool
	slot  int
	item  *Item
}

// NewContainer создаёт контейнер на capacity слотов.
func NewContainer(capacity int) (*Container, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("creating container with %d slots: %w", capacity, ErrInvalidCapacity)
	}
	return &Container{slots: make([]*Item, capacity)}, nil
}

// SetHooks подключает ItemAddedHook и/или ItemRemovedHook.
func (c *Container) SetHooks(h any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = h
}

// Capacity возвращает число слотов.
func (c *Container) Capacity() int {
	return len(c.slots)
}

func (c *Container) fire(events []slotEvent) {
	c.mu.RLock()
	h := c.hooks
	c.mu.RUnlock()
	if h == nil {
		return
	}
	for _, e := range events {
		if e.added {
			if ah, ok := h.(ItemAddedHook); ok {
				ah.OnItemAdded(e.slot, e.item)
			}
			continue
		}
		if rh, ok := h.(ItemRemovedHook); ok {
			rh.OnItemRemoved(e.slot, e.item)
		}
	}
}

func occupied(it *Item) bool {
	return it != nil && !it.IsEmpty()
}

func (c *Container) checkSlot(slot int) error {
	if slot < 0 || slot >= len(c.slots) {
		return fmt.Errorf("slot %d of %d: %w", slot, len(c.slots), ErrSlotOutOfRange)
	}
	return nil
}

func (c *Container) indexOfLocked(item *Item) int {
	for i, it := range c.slots {
		if it == item {
			return i
		}
	}
	return -1
}

func (c *Container) firstFreeLocked() int {
	for i, it := range c.slots {
		if !occupied(it) {
			return i
		}
	}
	return -1
}

func (c *Container) tryStackLocked(item *Item) bool {
	if !item.IsStackable() {
		return false
	}
	stacked := false
	for _, it := range c.slots {
		if item.IsEmpty() {
			break
		}
		if it != nil && it.CanStackWith(item) {
			if _, err := it.StackWith(item); err == nil {
				stacked = true
			}
		}
	}
	return stacked
}

// Add сначала доливает item в существующие стаки, затем кладёт остаток
// в первый свободный слот. false — контейнер полон (остаток остаётся в item).
func (c *Container) Add(item *Item) (bool, error) {
	if item == nil {
		return false, ErrNilItem
	}

	c.mu.Lock()
	if c.indexOfLocked(item) >= 0 {
		c.mu.Unlock()
		return false, fmt.Errorf("adding %s: %w", item.ItemID(), ErrItemStored)
	}
	if c.tryStackLocked(item) && item.IsEmpty() {
		c.mu.Unlock()
		return true, nil
	}
	slot := c.firstFreeLocked()
	if slot < 0 {
		c.mu.Unlock()
		return false, nil
	}
	c.slots[slot] = item
	c.mu.Unlock()

	c.fire([]slotEvent{{added: true, slot: slot, item: item}})
	return true, nil
}

// AddAt кладёт item в конкретный слот. Занятый слот допускает только стак;
// true возвращается, если item влит целиком.
func (c *Container) AddAt(slot int, item *Item) (bool, error) {
	if item == nil {
		return false, ErrNilItem
	}

	c.mu.Lock()
	if err := c.checkSlot(slot); err != nil {
		c.mu.Unlock()
		return false, err
	}
	if i := c.indexOfLocked(item); i >= 0 {
		c.mu.Unlock()
		return false, fmt.Errorf("adding %s at slot %d: %w", item.ItemID(), slot, ErrItemStored)
	}
	if cur := c.slots[slot]; occupied(cur) {
		defer c.mu.Unlock()
		if !cur.CanStackWith(item) {
			return false, nil
		}
		if _, err := cur.StackWith(item); err != nil {
			return false, err
		}
		return item.IsEmpty(), nil
	}
	c.slots[slot] = item
	c.mu.Unlock()

	c.fire([]slotEvent{{added: true, slot: slot, item: item}})
	return true, nil
}

// Remove освобождает слот и возвращает лежавший в нём предмет (может быть nil).
func (c *Container) Remove(slot int) (*Item, error) {
	c.mu.Lock()
	if err := c.checkSlot(slot); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	item := c.slots[slot]
	c.slots[slot] = nil
	c.mu.Unlock()

	if item != nil {
		c.fire([]slotEvent{{slot: slot, item: item}})
	}
	return item, nil
}

// Get возвращает предмет в слоте (nil для пустого слота).
func (c *Container) Get(slot int) (*Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.checkSlot(slot); err != nil {
		return nil, err
	}
	return c.slots[slot], nil
}

// Set заменяет содержимое слота без проверок стака.
func (c *Container) Set(slot int, item *Item) error {
	c.mu.Lock()
	if err := c.checkSlot(slot); err != nil {
		c.mu.Unlock()
		return err
	}
	old := c.slots[slot]
	c.slots[slot] = item
	c.mu.Unlock()

	var events []slotEvent
	if old != nil {
		events = append(events, slotEvent{slot: slot, item: old})
	}
	if item != nil {
		events = append(events, slotEvent{added: true, slot: slot, item: item})
	}
	c.fire(events)
	return nil
}

// Clear очищает все слоты.
func (c *Container) Clear() {
	c.mu.Lock()
	var events []slotEvent
	for i, it := range c.slots {
		if it != nil {
			events = append(events, slotEvent{slot: i, item: it})
			c.slots[i] = nil
		}
	}
	c.mu.Unlock()

	c.fire(events)
}

// Find возвращает первый слот с предметом itemID или -1.
func (c *Container) Find(itemID string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i, it := range c.slots {
		if it != nil && it.ItemID() == itemID {
			return i
		}
	}
	return -1
}

// Count суммирует количество itemID по всем слотам.
func (c *Container) Count(itemID string) int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var n int32
	for _, it := range c.slots {
		if it != nil && it.ItemID() == itemID {
			n += it.Quantity()
		}
	}
	return n
}

// Has проверяет, что в контейнере не меньше quantity единиц itemID.
func (c *Container) Has(itemID string, quantity int32) bool {
	return c.Count(itemID) >= quantity
}

// AddItems добавляет quantity единиц itemID: сначала в неполные стаки,
// затем новыми стаками в свободные слоты. Возвращает то, что не поместилось.
// Новые стаки создаются с дефолтным max_stack_size.
func (c *Container) AddItems(itemID string, quantity int32) (int32, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("adding %d %s: %w", quantity, itemID, ErrNonPositiveAmount)
	}

	c.mu.Lock()
	remaining := quantity
	for _, it := range c.slots {
		if remaining <= 0 {
			break
		}
		if acceptsUnits(it, itemID) {
			remaining, _ = it.AddQuantity(remaining)
		}
	}

	var events []slotEvent
	for remaining > 0 {
		slot := c.firstFreeLocked()
		if slot < 0 {
			break
		}
		it := NewItem(itemID, remaining)
		if it.Quantity() <= 0 {
			break
		}
		remaining -= it.Quantity()
		c.slots[slot] = it
		events = append(events, slotEvent{added: true, slot: slot, item: it})
	}
	c.mu.Unlock()

	c.fire(events)
	return remaining, nil
}

// acceptsUnits — можно ли долить в it новые единицы itemID. Новые единицы
// без износа, поэтому стаки с износом не подходят (как в CanStackWith).
func acceptsUnits(it *Item, itemID string) bool {
	return it != nil && it.ItemID() == itemID &&
		it.IsStackable() && !it.IsFullStack() && !it.HasDurability()
}

// RemoveItems снимает до quantity единиц itemID, начиная с первых слотов.
// Возвращает фактически снятое.
func (c *Container) RemoveItems(itemID string, quantity int32) (int32, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("removing %d %s: %w", quantity, itemID, ErrNonPositiveAmount)
	}

	c.mu.Lock()
	var removed int32
	toRemove := quantity
	var events []slotEvent
	for i, it := range c.slots {
		if toRemove <= 0 {
			break
		}
		if it == nil || it.ItemID() != itemID {
			continue
		}
		qty := it.Quantity()
		if qty <= toRemove {
			removed += qty
			toRemove -= qty
			c.slots[i] = nil
			events = append(events, slotEvent{slot: i, item: it})
			continue
		}
		n, _ := it.RemoveQuantity(toRemove)
		removed += n
		toRemove = 0
	}
	c.mu.Unlock()

	c.fire(events)
	return removed, nil
}

// TryStack доливает item в подходящие стаки. true — хоть что-то влито.
func (c *Container) TryStack(item *Item) (bool, error) {
	if item == nil {
		return false, ErrNilItem
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tryStackLocked(item), nil
}

// Items возвращает непустые предметы в порядке слотов.
func (c *Container) Items() []*Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := make([]*Item, 0, len(c.slots))
	for _, it := range c.slots {
		if occupied(it) {
			items = append(items, it)
		}
	}
	return items
}

// Each вызывает fn для каждого непустого слота по порядку.
// fn не должен обращаться к этому же контейнеру на запись.
func (c *Container) Each(fn func(slot int, item *Item)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i, it := range c.slots {
		if occupied(it) {
			fn(i, it)
		}
	}
}

func (c *Container) UsedSlots() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, it := range c.slots {
		if occupied(it) {
			n++
		}
	}
	return n
}

func (c *Container) EmptySlots() int { return c.Capacity() - c.UsedSlots() }
func (c *Container) IsFull() bool    { return c.UsedSlots() >= c.Capacity() }
func (c *Container) IsEmpty() bool   { return c.UsedSlots() == 0 }

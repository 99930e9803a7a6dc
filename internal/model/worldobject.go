package model

import (
	"fmt"
	"sync"
)

// ObjectType — класс объекта мира.
type ObjectType int32

const (
	ObjectGeneric ObjectType = iota
	ObjectContainer
	ObjectResource
	ObjectFurniture
	ObjectCrafting
	ObjectInteractable
)

var objectTypeNames = [...]string{"Generic", "Container", "Resource", "Furniture", "Crafting", "Interactable"}

func (t ObjectType) String() string {
	if t >= 0 && int(t) < len(objectTypeNames) {
		return objectTypeNames[t]
	}
	return fmt.Sprintf("ObjectType(%d)", int32(t))
}

// WorldObject — базовый класс для всех объектов чанка.
// Все объекты имеют ObjectID, тип и позицию; контейнер опционален.
type WorldObject struct {
	objectID   string
	objectType ObjectType
	position   Position
	container  *Container
	hooks      any

	mu sync.RWMutex
}

// NewWorldObject создаёт объект без контейнера.
func NewWorldObject(objectID string, objectType ObjectType, pos Position) *WorldObject {
	return &WorldObject{
		objectID:   objectID,
		objectType: objectType,
		position:   pos,
	}
}

// SetHooks подключает InteractHook, HarvestHook и хуки контейнера.
func (w *WorldObject) SetHooks(h any) {
	w.mu.Lock()
	w.hooks = h
	c := w.container
	w.mu.Unlock()
	if c != nil {
		c.SetHooks(h)
	}
}

// ObjectID возвращает идентификатор объекта.
func (w *WorldObject) ObjectID() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.objectID
}

// SetObjectID устанавливает идентификатор объекта.
func (w *WorldObject) SetObjectID(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.objectID = id
}

// ObjectType возвращает тип объекта.
func (w *WorldObject) ObjectType() ObjectType {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.objectType
}

// SetObjectType устанавливает тип объекта.
func (w *WorldObject) SetObjectType(t ObjectType) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.objectType = t
}

// Position возвращает копию координат объекта (value type).
func (w *WorldObject) Position() Position {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.position
}

// SetPosition устанавливает новые координаты объекта.
func (w *WorldObject) SetPosition(pos Position) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.position = pos
}

// InitContainer (пере)создаёт контейнер на capacity слотов.
// Старое содержимое теряется.
func (w *WorldObject) InitContainer(capacity int) error {
	c, err := NewContainer(capacity)
	if err != nil {
		return err
	}
	w.mu.Lock()
	c.hooks = w.hooks
	w.container = c
	w.mu.Unlock()
	return nil
}

// Container возвращает контейнер объекта (nil, если не инициализирован).
func (w *WorldObject) Container() *Container {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.container
}

// HasContainer — есть контейнер ненулевой ёмкости.
func (w *WorldObject) HasContainer() bool {
	c := w.Container()
	return c != nil && c.Capacity() > 0
}

// ContainerCapacity возвращает ёмкость или 0.
func (w *WorldObject) ContainerCapacity() int {
	if c := w.Container(); c != nil {
		return c.Capacity()
	}
	return 0
}

// UsedSlots возвращает число занятых слотов или 0.
func (w *WorldObject) UsedSlots() int {
	if c := w.Container(); c != nil {
		return c.UsedSlots()
	}
	return 0
}

// AddItem кладёт предмет в контейнер объекта.
func (w *WorldObject) AddItem(item *Item) (bool, error) {
	if item == nil {
		return false, ErrNilItem
	}
	if !w.HasContainer() {
		return false, fmt.Errorf("adding %s to %s: %w", item.ItemID(), w.ObjectID(), ErrNoContainer)
	}
	return w.Container().Add(item)
}

// Interact вызывает InteractHook, если он подключён.
func (w *WorldObject) Interact(actor Actor) {
	w.mu.RLock()
	h := w.hooks
	w.mu.RUnlock()
	if ih, ok := h.(InteractHook); ok {
		ih.OnInteract(w, actor)
	}
}

// Harvest возвращает сериализованное содержимое контейнера как добычу.
// HarvestHook может заменить список.
func (w *WorldObject) Harvest(actor Actor) []map[string]any {
	loot := make([]map[string]any, 0)
	if c := w.Container(); c != nil {
		c.Each(func(_ int, it *Item) {
			loot = append(loot, it.Serialize())
		})
	}

	w.mu.RLock()
	h := w.hooks
	w.mu.RUnlock()
	if hh, ok := h.(HarvestHook); ok {
		loot = hh.OnHarvest(w, actor, loot)
	}
	return loot
}

// Serialize пишет object_id, object_type, position_x/y и, при наличии,
// container_capacity + container[{slot, item}].
func (w *WorldObject) Serialize() map[string]any {
	w.mu.RLock()
	data := map[string]any{
		"object_id":   w.objectID,
		"object_type": int32(w.objectType),
		"position_x":  w.position.X,
		"position_y":  w.position.Y,
	}
	c := w.container
	w.mu.RUnlock()

	if c != nil && c.Capacity() > 0 {
		data["container_capacity"] = int32(c.Capacity())
		slots := make([]map[string]any, 0)
		c.Each(func(slot int, it *Item) {
			slots = append(slots, map[string]any{
				"slot": int32(slot),
				"item": it.Serialize(),
			})
		})
		if len(slots) > 0 {
			data["container"] = slots
		}
	}
	return data
}

// Deserialize восстанавливает объект. Контейнер пересоздаётся,
// только если в данных есть container_capacity.
func (w *WorldObject) Deserialize(data map[string]any) error {
	w.mu.Lock()
	w.objectID = getString(data, "object_id", "")
	w.objectType = ObjectType(getInt32(data, "object_type", int32(ObjectGeneric)))
	w.position = Position{
		X: getInt32(data, "position_x", 0),
		Y: getInt32(data, "position_y", 0),
	}
	w.mu.Unlock()

	if _, ok := data["container_capacity"]; !ok {
		return nil
	}
	capacity := int(getInt64(data, "container_capacity", 0))
	if err := w.InitContainer(capacity); err != nil {
		return fmt.Errorf("deserializing %s: %w", w.ObjectID(), err)
	}
	c := w.Container()
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, slotData := range getMapSlice(data, "container") {
		slot := int(getInt64(slotData, "slot", -1))
		itemData := getMap(slotData, "item")
		if slot < 0 || slot >= len(c.slots) || itemData == nil {
			continue
		}
		c.slots[slot] = ItemFromMap(itemData)
	}
	return nil
}

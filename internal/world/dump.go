package world

import (
	"fmt"
	"strings"

	"github.com/udisondev/tileworld/internal/model"
)

// DefaultPreviewSize — сторона ASCII-превью по умолчанию.
const DefaultPreviewSize = 32

const legend = "Legend: @ City  # Town  o Village  . Grass  T Forest  ^ Mountain"

// Dump рендерит заголовок, легенду, ASCII-превью preview×preview
// (тайл (x·step, y·step), step = 256/preview) и списки сущностей.
// preview вне [1, 256] заменяется на DefaultPreviewSize.
func (c *Chunk) Dump(preview int) string {
	if preview <= 0 || preview > ChunkSize {
		preview = DefaultPreviewSize
	}
	step := ChunkSize / preview

	var b strings.Builder
	fmt.Fprintf(&b, "=== Chunk (%d, %d) | Center: (%d, %d) ===\n", c.coord.X, c.coord.Y, c.center.X, c.center.Y)
	fmt.Fprintf(&b, "    Cities: %d | Monsters: %d | NPCs: %d\n", len(c.cities), len(c.monsters), len(c.npcs))
	b.WriteString(legend)
	b.WriteByte('\n')

	border := strings.Repeat("-", preview+2)
	b.WriteString(border)
	b.WriteByte('\n')
	for y := range preview {
		b.WriteByte('|')
		for x := range preview {
			b.WriteByte(c.tiles[y*step][x*step].Glyph())
		}
		b.WriteString("|\n")
	}
	b.WriteString(border)
	b.WriteByte('\n')

	if len(c.cities) > 0 {
		b.WriteString("Cities:\n")
		for i, city := range c.cities {
			fmt.Fprintf(&b, "  [%d] Pos: (%d, %d), Items: %d\n", i, city.Pos.X, city.Pos.Y, city.Object.UsedSlots())
		}
	}
	if len(c.monsters) > 0 {
		b.WriteString("Monsters:\n")
		for i, s := range c.monsters {
			fmt.Fprintf(&b, "  [%d] %s (%s) Pos: (%d, %d), Items: %d\n",
				i, s.Monster.MonsterID(), s.Monster.Rank(), s.Pos.X, s.Pos.Y, s.Monster.UsedSlots())
		}
	}
	if len(c.npcs) > 0 {
		b.WriteString("NPCs:\n")
		for i, s := range c.npcs {
			fmt.Fprintf(&b, "  [%d] %s (%s) Pos: (%d, %d), Items: %d\n",
				i, s.NPC.Name(), s.NPC.NPCType(), s.Pos.X, s.Pos.Y, s.NPC.UsedSlots())
		}
	}
	return b.String()
}

// eachItem обходит непустые слоты контейнера объекта.
func eachItem(obj *model.WorldObject, fn func(slot int, it *model.Item)) {
	if cont := obj.Container(); cont != nil {
		cont.Each(fn)
	}
}

// CityString — подробный вид города i.
func (c *Chunk) CityString(i int) string {
	city, ok := c.City(i)
	if !ok {
		return "Invalid city index"
	}
	obj := city.Object

	var b strings.Builder
	fmt.Fprintf(&b, "=== City WorldObject [%d] ===\n", i)
	fmt.Fprintf(&b, "  ID: %s\n", obj.ObjectID())
	fmt.Fprintf(&b, "  Position: (%d, %d)\n", city.Pos.X, city.Pos.Y)
	fmt.Fprintf(&b, "  Type: %d\n", int32(obj.ObjectType()))
	fmt.Fprintf(&b, "  Container: %d/%d slots used\n", obj.UsedSlots(), obj.ContainerCapacity())
	b.WriteString("  Items:\n")
	eachItem(obj, func(slot int, it *model.Item) {
		fmt.Fprintf(&b, "    [Slot %d] %s x%d\n", slot, it.ItemID(), it.Quantity())
		fmt.Fprintf(&b, "             Rarity: %s, Category: %s\n", it.Rarity(), it.Category())
	})
	return b.String()
}

// MonsterString — подробный вид монстра i.
func (c *Chunk) MonsterString(i int) string {
	s, ok := c.Monster(i)
	if !ok {
		return "Invalid monster index"
	}
	m := s.Monster

	var b strings.Builder
	fmt.Fprintf(&b, "=== Monster [%d] ===\n", i)
	fmt.Fprintf(&b, "  ID: %s\n", m.ObjectID())
	fmt.Fprintf(&b, "  Monster Type: %s\n", m.MonsterID())
	fmt.Fprintf(&b, "  Name: %s\n", m.Name())
	fmt.Fprintf(&b, "  Position: (%d, %d)\n", s.Pos.X, s.Pos.Y)
	fmt.Fprintf(&b, "  Rank: %s (x%.1f)\n", m.Rank(), m.RankMultiplier())
	fmt.Fprintf(&b, "  Health: %d/%d\n", int64(m.Health()), int64(m.MaxHealth()))
	fmt.Fprintf(&b, "  Rewards: %d EXP, %d Gold\n", m.ExpReward(), m.GoldReward())
	fmt.Fprintf(&b, "  Container: %d/%d slots used\n", m.UsedSlots(), m.ContainerCapacity())
	if m.UsedSlots() > 0 {
		b.WriteString("  Loot:\n")
		eachItem(m.WorldObject, func(slot int, it *model.Item) {
			fmt.Fprintf(&b, "    [Slot %d] %s x%d (%s)\n", slot, it.ItemID(), it.Quantity(), it.Rarity())
		})
	}
	return b.String()
}

// NPCString — подробный вид NPC i.
func (c *Chunk) NPCString(i int) string {
	s, ok := c.NPC(i)
	if !ok {
		return "Invalid NPC index"
	}
	n := s.NPC

	var b strings.Builder
	fmt.Fprintf(&b, "=== NPC [%d] ===\n", i)
	fmt.Fprintf(&b, "  ID: %s\n", n.ObjectID())
	fmt.Fprintf(&b, "  Name: %s\n", n.Name())
	fmt.Fprintf(&b, "  Position: (%d, %d)\n", s.Pos.X, s.Pos.Y)
	fmt.Fprintf(&b, "  Type: %s\n", n.NPCType())
	fmt.Fprintf(&b, "  Health: %d/%d\n", int64(n.Health()), int64(n.MaxHealth()))
	if n.IsMerchant() {
		b.WriteString("  Is Merchant: Yes\n")
		fmt.Fprintf(&b, "  Shop ID: %s\n", n.ShopID())
	} else {
		b.WriteString("  Is Merchant: No\n")
	}
	fmt.Fprintf(&b, "  Dialogue ID: %s\n", n.DialogueID())
	fmt.Fprintf(&b, "  Container: %d/%d slots used\n", n.UsedSlots(), n.ContainerCapacity())
	if n.UsedSlots() > 0 {
		b.WriteString("  Inventory:\n")
		eachItem(n.WorldObject, func(slot int, it *model.Item) {
			fmt.Fprintf(&b, "    [Slot %d] %s x%d (%s)", slot, it.ItemID(), it.Quantity(), it.Rarity())
			if it.BaseValue() > 0 {
				fmt.Fprintf(&b, " - Value: %d", it.BaseValue())
			}
			b.WriteByte('\n')
		})
	}
	return b.String()
}

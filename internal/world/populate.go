package world

import (
	"fmt"

	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/rng"
)

// Архетипы. Порядок в таблицах — часть формата генерации: индекс берётся из потока.
var (
	ItemArchetypes = [...]string{
		"gold_coin",
		"iron_sword",
		"health_potion",
		"wood_plank",
		"stone_block",
		"magic_scroll",
		"leather_armor",
		"bread",
	}

	MonsterArchetypes = [...]string{
		"goblin",
		"wolf",
		"skeleton",
		"orc",
		"troll",
		"spider",
		"bandit",
		"slime",
	}

	NPCArchetypes = [...]string{
		"blacksmith",
		"merchant",
		"innkeeper",
		"guard",
		"villager",
		"healer",
		"trainer",
	}
)

const (
	// lootStackSize — max_stack_size сгенерированных предметов.
	lootStackSize = 99

	rarityCount   = 5
	categoryCount = 6
	npcTypeCount  = 5
)

func objectID(kind string, coord ChunkCoord, pos model.Position) string {
	return fmt.Sprintf("%s_%d_%d_%d_%d", kind, coord.X, coord.Y, pos.X, pos.Y)
}

// rollItem тянет архетип, количество (1+Rand(qtyRange)), редкость и категорию.
// Городской лут получает max stack до количества; монстрам и NPC количество
// ставится раньше max stack и потому клампится к 1.
func rollItem(r *rng.PCG, qtyRange uint32, stackFirst bool) *model.Item {
	id := ItemArchetypes[r.Intn(len(ItemArchetypes))]
	it := model.NewItem(id, 1)
	it.SetDisplayName(id)

	qty := int32(1 + r.Rand(qtyRange))
	if stackFirst {
		it.SetMaxStackSize(lootStackSize)
		it.SetQuantity(qty)
	} else {
		it.SetQuantity(qty)
		it.SetMaxStackSize(lootStackSize)
	}

	it.SetRarity(model.ItemRarity(r.Rand(rarityCount)))
	it.SetCategory(model.ItemCategory(r.Rand(categoryCount)))
	return it
}

// addLoot кладёт предмет в контейнер; не поместившийся предмет теряется.
func addLoot(obj *model.WorldObject, it *model.Item) error {
	if _, err := obj.AddItem(it); err != nil {
		return fmt.Errorf("adding %s to %s: %w", it.ItemID(), obj.ObjectID(), err)
	}
	return nil
}

// populateCity: контейнер 3+Rand(4) слотов, 1+Rand(3) предметов по 1..10.
func populateCity(r *rng.PCG, coord ChunkCoord, pos model.Position) (*model.WorldObject, error) {
	obj := model.NewWorldObject(objectID("city", coord, pos), model.ObjectContainer, pos)

	capacity := 3 + r.Intn(4)
	if err := obj.InitContainer(capacity); err != nil {
		return nil, err
	}

	count := 1 + r.Intn(3)
	for range count {
		if err := addLoot(obj, rollItem(r, 10, true)); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

// rollMonsterRank: горы щедрее на элиту и боссов, лес — в основном обычные.
// WorldBoss процедурно не выпадает.
func rollMonsterRank(roll uint32, terrain TileType) model.MonsterRank {
	if terrain == TileMountain {
		switch {
		case roll < 60:
			return model.RankNormal
		case roll < 85:
			return model.RankElite
		case roll < 95:
			return model.RankChampion
		default:
			return model.RankBoss
		}
	}
	switch {
	case roll < 80:
		return model.RankNormal
	case roll < 95:
		return model.RankElite
	default:
		return model.RankChampion
	}
}

// populateMonster: архетип, ранг, HP (50+Rand(50))×ранг, награды,
// контейнер 2+Rand(3), Rand(3) предметов.
func populateMonster(r *rng.PCG, coord ChunkCoord, pos model.Position, terrain TileType) (*model.Monster, error) {
	m := model.NewMonster(objectID("monster", coord, pos))

	archetype := MonsterArchetypes[r.Intn(len(MonsterArchetypes))]
	m.SetMonsterID(archetype)
	m.SetName(archetype)
	m.SetPosition(pos)
	m.SetSpawnPosition(pos)

	rank := rollMonsterRank(r.Rand(100), terrain)
	m.SetRank(rank)

	baseHP := 50 + r.Rand(50)
	m.SetMaxHealth(float32(int32(float32(baseHP) * rank.Multiplier())))
	m.SetHealth(m.MaxHealth())

	m.SetExpReward(int64(10 + r.Rand(20)))
	m.SetGoldReward(int64(5 + r.Rand(15)))

	if err := m.InitContainer(2 + r.Intn(3)); err != nil {
		return nil, err
	}
	count := r.Intn(3)
	for range count {
		if err := addLoot(m.WorldObject, rollItem(r, 5, false)); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// rollNPCType: в городе любой из пяти типов, в городке торговцы/жители/стража,
// в деревне только жители (без расхода потока).
func rollNPCType(r *rng.PCG, terrain TileType) model.NPCType {
	switch terrain {
	case TileCity:
		return model.NPCType(r.Rand(npcTypeCount))
	case TileTown:
		roll := r.Rand(100)
		switch {
		case roll < 40:
			return model.NPCMerchant
		case roll < 70:
			return model.NPCVillager
		default:
			return model.NPCGuard
		}
	default:
		return model.NPCVillager
	}
}

// populateNPC: архетип, тип по местности, HP 100+Rand(50).
// Торговец: контейнер 6+Rand(5), 3+Rand(4) предметов с ценой 10+Rand(100);
// остальные: 2+Rand(3) слотов и Rand(3) предметов.
func populateNPC(r *rng.PCG, coord ChunkCoord, pos model.Position, terrain TileType) (*model.NPC, error) {
	archetype := NPCArchetypes[r.Intn(len(NPCArchetypes))]
	n := model.NewNPC(objectID("npc", coord, pos), archetype)
	n.SetPosition(pos)
	n.SetSpawnPosition(pos)

	npcType := rollNPCType(r, terrain)
	n.SetNPCType(npcType)
	merchant := npcType == model.NPCMerchant
	if merchant {
		n.SetIsMerchant(true)
		n.SetShopID("shop_" + archetype)
	}
	n.SetCanTalk(true)
	n.SetDialogueID("dialogue_" + archetype)

	n.SetMaxHealth(float32(100 + r.Rand(50)))
	n.SetHealth(n.MaxHealth())

	var capacity, count int
	if merchant {
		capacity = 6 + r.Intn(5)
	} else {
		capacity = 2 + r.Intn(3)
	}
	if err := n.InitContainer(capacity); err != nil {
		return nil, err
	}

	if merchant {
		count = 3 + r.Intn(4)
	} else {
		count = r.Intn(3)
	}
	for range count {
		it := rollItem(r, 20, false)
		if merchant {
			it.SetBaseValue(int32(10 + r.Rand(100)))
		}
		if err := addLoot(n.WorldObject, it); err != nil {
			return nil, err
		}
	}
	return n, nil
}

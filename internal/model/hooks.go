package model

// Actor — участник взаимодействия: источник урона, цель агро, собеседник.
// Модель не знает, кто за ним стоит (игрок, монстр, скрипт).
type Actor interface {
	ObjectID() string
}

// Хуки подключаются через SetHooks: объект передаётся один раз,
// а модель проверяет, какие из интерфейсов ниже он реализует.
// Хуки вызываются без удерживаемых блокировок, поэтому из них
// можно обращаться к тому же объекту.

// Item hooks.
type (
	// UseHook решает, сработало ли использование предмета.
	UseHook interface {
		OnUse(item *Item, user Actor) bool
	}
	EquipHook interface {
		OnEquip(item *Item, user Actor)
	}
	UnequipHook interface {
		OnUnequip(item *Item, user Actor)
	}
	DurabilityDepletedHook interface {
		OnDurabilityDepleted(item *Item)
	}
)

// Container / WorldObject hooks.
type (
	ItemAddedHook interface {
		OnItemAdded(slot int, item *Item)
	}
	ItemRemovedHook interface {
		OnItemRemoved(slot int, item *Item)
	}
	InteractHook interface {
		OnInteract(obj *WorldObject, actor Actor)
	}
	// HarvestHook может изменить список добычи перед выдачей.
	HarvestHook interface {
		OnHarvest(obj *WorldObject, actor Actor, loot []map[string]any) []map[string]any
	}
)

// Character hooks.
type (
	TakeDamageHook interface {
		OnTakeDamage(c *Character, amount float32, damageType DamageType, source Actor)
	}
	HealHook interface {
		OnHeal(c *Character, amount float32, source Actor)
	}
	DeathHook interface {
		OnDeath(c *Character, killer Actor)
	}
	RespawnHook interface {
		OnRespawn(c *Character)
	}
	LevelUpHook interface {
		OnLevelUp(c *Character, level int32)
	}
)

// Player hooks.
type (
	ExperienceGainedHook interface {
		OnExperienceGained(p *Player, amount int64)
	}
	GoldChangedHook interface {
		OnGoldChanged(p *Player, oldGold, newGold int64)
	}
)

// Monster hooks.
type (
	AggroHook interface {
		OnAggro(m *Monster, target Actor)
	}
	DeaggroHook interface {
		OnDeaggro(m *Monster)
	}
	TargetChangedHook interface {
		OnTargetChanged(m *Monster, target Actor)
	}
)

// NPC hooks.
type (
	TalkToHook interface {
		OnTalkTo(n *NPC, player Actor)
	}
	// CanInteractHook переопределяет правило can_talk || is_merchant.
	CanInteractHook interface {
		CanInteract(n *NPC, actor Actor) bool
	}
)

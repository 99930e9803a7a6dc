package model

import "fmt"

// NPCType — роль NPC.
type NPCType int32

const (
	NPCVillager NPCType = iota
	NPCMerchant
	NPCQuestGiver
	NPCTrainer
	NPCGuard
)

var npcTypeNames = [...]string{"Villager", "Merchant", "QuestGiver", "Trainer", "Guard"}

func (t NPCType) String() string {
	if t >= 0 && int(t) < len(npcTypeNames) {
		return npcTypeNames[t]
	}
	return fmt.Sprintf("NPCType(%d)", int32(t))
}

// NPCBehavior — модель перемещения NPC.
type NPCBehavior int32

const (
	BehaviorIdle NPCBehavior = iota
	BehaviorPatrol
	BehaviorWander
	BehaviorFollow
	BehaviorFlee
)

var behaviorNames = [...]string{"Idle", "Patrol", "Wander", "Follow", "Flee"}

func (b NPCBehavior) String() string {
	if b >= 0 && int(b) < len(behaviorNames) {
		return behaviorNames[b]
	}
	return fmt.Sprintf("NPCBehavior(%d)", int32(b))
}

const defaultNPCContainer = 6

// NPC — нейтральный персонаж: диалог, магазин, охрана.
type NPC struct {
	*Character // embedded

	npcType       NPCType
	behavior      NPCBehavior
	dialogueID    string
	canTalk       bool
	isMerchant    bool
	shopID        string
	aggroRange    float32
	leashRange    float32
	spawnPosition Position
	lootTableID   string
}

// NewNPC создаёт нейтрального NPC с контейнером на 6 слотов.
func NewNPC(objectID, name string) *NPC {
	n := &NPC{
		Character:  NewCharacter(objectID, name),
		canTalk:    true,
		leashRange: 50,
	}
	_ = n.InitContainer(defaultNPCContainer)
	return n
}

func (n *NPC) NPCType() NPCType {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.npcType
}

func (n *NPC) SetNPCType(t NPCType) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.npcType = t
}

func (n *NPC) Behavior() NPCBehavior {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.behavior
}

func (n *NPC) SetBehavior(b NPCBehavior) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.behavior = b
}

func (n *NPC) DialogueID() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.dialogueID
}

func (n *NPC) SetDialogueID(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dialogueID = id
}

func (n *NPC) CanTalk() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.canTalk
}

func (n *NPC) SetCanTalk(v bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.canTalk = v
}

func (n *NPC) IsMerchant() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.isMerchant
}

func (n *NPC) SetIsMerchant(v bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.isMerchant = v
}

func (n *NPC) ShopID() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.shopID
}

func (n *NPC) SetShopID(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.shopID = id
}

func (n *NPC) AggroRange() float32 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.aggroRange
}

func (n *NPC) SetAggroRange(r float32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.aggroRange = max(0, r)
}

// IsAggressive — NPC нападает сам (aggroRange > 0).
func (n *NPC) IsAggressive() bool { return n.AggroRange() > 0 }

func (n *NPC) LeashRange() float32 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.leashRange
}

func (n *NPC) SetLeashRange(r float32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.leashRange = max(0, r)
}

func (n *NPC) SpawnPosition() Position {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.spawnPosition
}

func (n *NPC) SetSpawnPosition(p Position) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.spawnPosition = p
}

func (n *NPC) LootTableID() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.lootTableID
}

func (n *NPC) SetLootTableID(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lootTableID = id
}

// TalkTo запускает диалог. Мёртвый или немой NPC игнорирует вызов.
// Возвращает true, если TalkToHook был вызван или диалог разрешён.
func (n *NPC) TalkTo(player Actor) bool {
	n.mu.RLock()
	ok := n.canTalk && n.state&StateAlive != 0
	h := n.hooks
	n.mu.RUnlock()
	if !ok {
		return false
	}
	if th, ok := h.(TalkToHook); ok {
		th.OnTalkTo(n, player)
	}
	return true
}

// CanInteractWith: мёртвый NPC недоступен; CanInteractHook решает за модель,
// иначе доступен тот, с кем можно говорить или торговать.
func (n *NPC) CanInteractWith(actor Actor) bool {
	n.mu.RLock()
	alive := n.state&StateAlive != 0
	open := n.canTalk || n.isMerchant
	h := n.hooks
	n.mu.RUnlock()

	if !alive {
		return false
	}
	if ch, ok := h.(CanInteractHook); ok {
		return ch.CanInteract(n, actor)
	}
	return open
}

// Serialize дополняет ключи Character параметрами NPC.
func (n *NPC) Serialize() map[string]any {
	data := n.Character.Serialize()

	n.mu.RLock()
	defer n.mu.RUnlock()
	data["npc_type"] = int32(n.npcType)
	data["behavior"] = int32(n.behavior)
	data["dialogue_id"] = n.dialogueID
	data["can_talk"] = n.canTalk
	data["is_merchant"] = n.isMerchant
	data["shop_id"] = n.shopID
	data["aggro_range"] = n.aggroRange
	data["leash_range"] = n.leashRange
	data["spawn_x"] = n.spawnPosition.X
	data["spawn_y"] = n.spawnPosition.Y
	data["loot_table_id"] = n.lootTableID
	return data
}

func (n *NPC) Deserialize(data map[string]any) error {
	if err := n.Character.Deserialize(data); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.npcType = NPCType(getInt32(data, "npc_type", int32(NPCVillager)))
	n.behavior = NPCBehavior(getInt32(data, "behavior", int32(BehaviorIdle)))
	n.dialogueID = getString(data, "dialogue_id", "")
	n.canTalk = getBool(data, "can_talk", true)
	n.isMerchant = getBool(data, "is_merchant", false)
	n.shopID = getString(data, "shop_id", "")
	n.aggroRange = getFloat32(data, "aggro_range", 0)
	n.leashRange = getFloat32(data, "leash_range", 50)
	n.spawnPosition = Position{
		X: getInt32(data, "spawn_x", 0),
		Y: getInt32(data, "spawn_y", 0),
	}
	n.lootTableID = getString(data, "loot_table_id", "")
	return nil
}

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type talkRecorder struct {
	talks int
	allow bool
	asked int
}

func (r *talkRecorder) OnTalkTo(*NPC, Actor) { r.talks++ }

func (r *talkRecorder) CanInteract(*NPC, Actor) bool {
	r.asked++
	return r.allow
}

func TestNewNPC_Defaults(t *testing.T) {
	n := NewNPC("npc_0_0_36_0", "villager")

	assert.Equal(t, "villager", n.Name())
	assert.Equal(t, FactionNeutral, n.Faction())
	assert.Equal(t, 6, n.ContainerCapacity())
	assert.Equal(t, NPCVillager, n.NPCType())
	assert.Equal(t, BehaviorIdle, n.Behavior())
	assert.True(t, n.CanTalk())
	assert.False(t, n.IsMerchant())
	assert.False(t, n.IsAggressive())
	assert.Equal(t, float32(50), n.LeashRange())
}

func TestNPC_TalkTo(t *testing.T) {
	player := NewWorldObject("player", ObjectGeneric, Position{})

	t.Run("alive and talkative", func(t *testing.T) {
		n := NewNPC("n", "healer")
		rec := &talkRecorder{}
		n.SetHooks(rec)

		assert.True(t, n.TalkTo(player))
		assert.Equal(t, 1, rec.talks)
	})

	t.Run("mute", func(t *testing.T) {
		n := NewNPC("n", "guard")
		rec := &talkRecorder{}
		n.SetHooks(rec)
		n.SetCanTalk(false)

		assert.False(t, n.TalkTo(player))
		assert.Zero(t, rec.talks)
	})

	t.Run("dead", func(t *testing.T) {
		n := NewNPC("n", "guard")
		rec := &talkRecorder{}
		n.SetHooks(rec)
		n.Die(nil)

		assert.False(t, n.TalkTo(player))
		assert.Zero(t, rec.talks)
	})
}

func TestNPC_CanInteractWith(t *testing.T) {
	player := NewWorldObject("player", ObjectGeneric, Position{})

	tests := []struct {
		name     string
		canTalk  bool
		merchant bool
		want     bool
	}{
		{"talk only", true, false, true},
		{"merchant only", false, true, true},
		{"neither", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNPC("n", "x")
			n.SetCanTalk(tt.canTalk)
			n.SetIsMerchant(tt.merchant)
			assert.Equal(t, tt.want, n.CanInteractWith(player))
		})
	}

	t.Run("hook overrides", func(t *testing.T) {
		n := NewNPC("n", "x")
		rec := &talkRecorder{allow: false}
		n.SetHooks(rec)
		assert.False(t, n.CanInteractWith(player))
		assert.Equal(t, 1, rec.asked)
	})

	t.Run("dead never interacts", func(t *testing.T) {
		n := NewNPC("n", "x")
		rec := &talkRecorder{allow: true}
		n.SetHooks(rec)
		n.Die(nil)
		assert.False(t, n.CanInteractWith(player))
		assert.Zero(t, rec.asked)
	})
}

func TestNPC_RangesClamp(t *testing.T) {
	n := NewNPC("n", "guard")
	n.SetAggroRange(-1)
	n.SetLeashRange(-1)
	assert.Equal(t, float32(0), n.AggroRange())
	assert.Equal(t, float32(0), n.LeashRange())

	n.SetAggroRange(8)
	assert.True(t, n.IsAggressive())
}

func TestNPC_SerializeRoundTrip(t *testing.T) {
	n := NewNPC("npc_0_0_36_0", "villager")
	n.SetNPCType(NPCMerchant)
	n.SetIsMerchant(true)
	n.SetShopID("shop_villager")
	n.SetDialogueID("dialogue_villager")
	n.SetBehavior(BehaviorWander)
	n.SetSpawnPosition(NewPosition(36, 0))
	_, err := n.AddItem(NewItem("bread", 1))
	require.NoError(t, err)

	raw, err := json.Marshal(n.Serialize())
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	got := NewNPC("", "")
	require.NoError(t, got.Deserialize(decoded))

	assert.Equal(t, NPCMerchant, got.NPCType())
	assert.True(t, got.IsMerchant())
	assert.Equal(t, "shop_villager", got.ShopID())
	assert.Equal(t, "dialogue_villager", got.DialogueID())
	assert.Equal(t, BehaviorWander, got.Behavior())
	assert.Equal(t, NewPosition(36, 0), got.SpawnPosition())
	assert.True(t, got.CanTalk())
	assert.Equal(t, 1, got.UsedSlots())
}

func TestNPCType_String(t *testing.T) {
	assert.Equal(t, "Merchant", NPCMerchant.String())
	assert.Equal(t, "QuestGiver", NPCQuestGiver.String())
	assert.Equal(t, "NPCType(9)", NPCType(9).String())
	assert.Equal(t, "Flee", BehaviorFlee.String())
}

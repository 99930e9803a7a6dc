package world

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_Dump(t *testing.T) {
	c := mustGenerate(t, 0, 0)
	out := c.Dump(DefaultPreviewSize)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")

	assert.Equal(t, "=== Chunk (0, 0) | Center: (63, 27) ===", lines[0])
	assert.Equal(t, "    Cities: 5 | Monsters: 8 | NPCs: 6", lines[1])
	assert.Equal(t, legend, lines[2])
	assert.Equal(t, strings.Repeat("-", 34), lines[3])

	// строка превью y=0 — каждый восьмой тайл первой строки чанка
	var want strings.Builder
	want.WriteByte('|')
	for x := 0; x < ChunkSize; x += 8 {
		want.WriteByte(originRow0[x])
	}
	want.WriteByte('|')
	assert.Equal(t, want.String(), lines[4])

	assert.Equal(t, strings.Repeat("-", 34), lines[4+DefaultPreviewSize])
	assert.Equal(t, "Cities:", lines[5+DefaultPreviewSize])
	assert.Equal(t, "  [0] Pos: (56, 16), Items: 2", lines[6+DefaultPreviewSize])
	assert.Contains(t, out, "Monsters:\n  [0] orc (Normal) Pos: (80, 192), Items: 0\n")
	assert.Contains(t, out, "NPCs:\n  [0] villager (Merchant) Pos: (36, 0), Items: 4\n")
}

func TestChunk_DumpPreviewSize(t *testing.T) {
	c := mustGenerate(t, 0, 0)

	tests := []struct {
		name    string
		preview int
		width   int
	}{
		{"zero falls back", 0, DefaultPreviewSize},
		{"negative falls back", -5, DefaultPreviewSize},
		{"too large falls back", ChunkSize + 1, DefaultPreviewSize},
		{"small", 8, 8},
		{"full", ChunkSize, ChunkSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := strings.Split(c.Dump(tt.preview), "\n")
			assert.Equal(t, strings.Repeat("-", tt.width+2), lines[3])
			assert.Len(t, lines[4], tt.width+2)
		})
	}

	full := strings.Split(c.Dump(ChunkSize), "\n")
	assert.Equal(t, "|"+originRow0+"|", full[4])
}

func TestChunk_DumpEmptySections(t *testing.T) {
	c := mustGenerate(t, -1, -1)
	out := c.Dump(16)

	if c.CityCount() == 0 {
		assert.NotContains(t, out, "Cities:")
	}
	if c.NPCCount() == 0 {
		assert.NotContains(t, out, "NPCs:")
	}
}

func TestChunk_InvalidIndexStrings(t *testing.T) {
	c := mustGenerate(t, 0, 0)

	assert.Equal(t, "Invalid city index", c.CityString(-1))
	assert.Equal(t, "Invalid city index", c.CityString(5))
	assert.Equal(t, "Invalid monster index", c.MonsterString(8))
	assert.Equal(t, "Invalid NPC index", c.NPCString(6))
	assert.Equal(t, "Invalid NPC index", c.NPCString(-1))
}

func TestChunk_CityString(t *testing.T) {
	out := mustGenerate(t, 0, 0).CityString(0)

	assert.True(t, strings.HasPrefix(out, "=== City WorldObject [0] ===\n"))
	assert.Contains(t, out, "  ID: city_0_0_56_16\n")
	assert.Contains(t, out, "  Position: (56, 16)\n")
	assert.Contains(t, out, "  Container: 2/5 slots used\n")
	assert.Contains(t, out, "    [Slot 0] magic_scroll x8\n")
	assert.Contains(t, out, "             Rarity: Rare, Category: Equipment\n")
	assert.Contains(t, out, "    [Slot 1] bread x6\n")
}

func TestChunk_MonsterString(t *testing.T) {
	c := mustGenerate(t, 0, 0)

	out := c.MonsterString(3)
	assert.Contains(t, out, "=== Monster [3] ===\n")
	assert.Contains(t, out, "  Monster Type: wolf\n")
	assert.Contains(t, out, "  Rank: Elite (x2.0)\n")
	assert.Contains(t, out, "  Health: 172/172\n")
	assert.Contains(t, out, "  Rewards: 15 EXP, 12 Gold\n")
	assert.Contains(t, out, "  Loot:\n")

	assert.NotContains(t, c.MonsterString(0), "Loot:")
}

func TestChunk_NPCString(t *testing.T) {
	c := mustGenerate(t, 0, 0)

	out := c.NPCString(0)
	assert.Contains(t, out, "  Name: villager\n")
	assert.Contains(t, out, "  Type: Merchant\n")
	assert.Contains(t, out, "  Health: 137/137\n")
	assert.Contains(t, out, "  Is Merchant: Yes\n")
	assert.Contains(t, out, "  Shop ID: shop_villager\n")
	assert.Contains(t, out, "  Container: 4/9 slots used\n")
	require.Contains(t, out, "  Inventory:\n")
	assert.Contains(t, out, "bread x3")
	assert.Contains(t, out, " - Value: 76\n")

	plain := c.NPCString(1)
	assert.Contains(t, plain, "  Is Merchant: No\n")
	assert.NotContains(t, plain, "Shop ID")
	assert.NotContains(t, plain, "Inventory:")
}

package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOreVariants_RoundTrip(t *testing.T) {
	for _, oreType := range []string{"iron", "gold", "redstone", "nether_gold", "copper"} {
		variants := []string{
			oreType + "_ore",
			"deepslate_" + oreType + "_ore",
			"lit_" + oreType + "_ore",
			"lit_deepslate_" + oreType + "_ore",
		}
		for _, name := range variants {
			t.Run(name, func(t *testing.T) {
				assert.True(t, MatchesOre(name, oreType), "%s должен совпадать с типом %s", name, oreType)
				assert.Equal(t, oreType, NormalizeOreType(name), "Нормализация %s", name)
				assert.True(t, IsOre(name))
			})
		}
	}
}

func TestMatchesOre_Negative(t *testing.T) {
	tests := []struct {
		name    string
		oreType string
	}{
		{"gold_ore", "iron"},
		{"iron_ore_block", "iron"},
		{"raw_iron_ore", "iron"},
		{"deepslate_lit_iron_ore", "iron"},
		{"iron", "iron"},
		{"iron_ore", "deepslate_iron"},
		{"", "iron"},
	}

	for _, tt := range tests {
		assert.False(t, MatchesOre(tt.name, tt.oreType), "%s не должен совпадать с %s", tt.name, tt.oreType)
	}
}

func TestNormalizeOreType_Fallback(t *testing.T) {
	// Без маркера "_ore" возвращается остаток после снятия префиксов
	assert.Equal(t, "stone", NormalizeOreType("deepslate_stone"))
	assert.Equal(t, "stone", NormalizeOreType("lit_stone"))
	// deepslate перед lit не снимает lit
	assert.Equal(t, "lit_iron", NormalizeOreType("deepslate_lit_iron_ore"))
	// "_ore" в начале строки не считается маркером
	assert.Equal(t, "_ore", NormalizeOreType("_ore"))
	// Обрезка по первому вхождению
	assert.Equal(t, "iron", NormalizeOreType("iron_ore_ore"))
}

func TestWoodVariants_RoundTrip(t *testing.T) {
	for _, woodType := range []string{"oak", "dark_oak", "crimson", "warped", "mangrove"} {
		for _, name := range []string{
			woodType + "_log",
			woodType + "_stem",
			"stripped_" + woodType + "_log",
			"stripped_" + woodType + "_stem",
		} {
			assert.True(t, MatchesLogOrWood(name, woodType), "%s должен совпадать с %s", name, woodType)
			assert.True(t, IsLogOrStem(name))
		}

		assert.Equal(t, woodType, NormalizeWoodType(woodType+"_log"))
		assert.Equal(t, woodType, NormalizeWoodType(woodType+"_stem"))
		assert.True(t, MatchesLeaves(woodType+"_leaves", woodType))
	}

	// Обтёсанное бревно нормализуется с сохранением префикса
	assert.Equal(t, "stripped_oak", NormalizeWoodType("stripped_oak_log"))
}

func TestWood_Negative(t *testing.T) {
	assert.False(t, MatchesLogOrWood("oak_planks", "oak"))
	assert.False(t, MatchesLogOrWood("birch_log", "oak"))
	assert.False(t, MatchesLogOrWood("oak_leaves", "oak"))
	assert.False(t, MatchesLeaves("oak_log", "oak"))
	assert.False(t, MatchesLeaves("dark_oak_leaves", "oak"))
	assert.Equal(t, "oak_planks", NormalizeWoodType("oak_planks"))
	assert.False(t, IsLogOrStem("oak_leaves"))
	assert.True(t, IsLeaves("oak_leaves"))
}

package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDropFor(t *testing.T) {
	tests := []struct {
		name string
		want Drop
	}{
		{"air", Drop{}},
		{"", Drop{}},
		{"coal_ore", Drop{Item: "coal", XP: 1}},
		{"deepslate_coal_ore", Drop{Item: "coal", XP: 1}},
		{"lit_redstone_ore", Drop{Item: "redstone", XP: 2}},
		{"iron_ore", Drop{Item: "raw_iron"}},
		{"deepslate_gold_ore", Drop{Item: "raw_gold"}},
		{"oak_leaves", Drop{}},
		{"oak_log", Drop{Item: "oak_log"}},
		{"stone", Drop{Item: "stone"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DropFor(tt.name))
		})
	}
}

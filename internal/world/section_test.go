package world

import (
	"testing"

	"github.com/annel0/veinminer/internal/vec"
	"github.com/stretchr/testify/assert"
)

func TestSection_SetGet(t *testing.T) {
	s := NewSection(vec.Vec3{X: 1, Y: -2, Z: 3})
	assert.Equal(t, vec.Vec3{X: 16, Y: -32, Z: 48}, s.Origin())

	local := vec.Vec3{X: 4, Y: 5, Z: 6}
	assert.Equal(t, "air", s.GetBlock(local))
	assert.False(t, s.HasChanges())

	s.SetBlock(local, "gold_ore")
	s.SetBlock(local, "gold_ore") // Повторная установка не считается изменением
	assert.Equal(t, "gold_ore", s.GetBlock(local))
	assert.Equal(t, 1, s.ChangeCounter)
	assert.Equal(t, 1, s.CountNonAir())

	s.ClearChanges()
	assert.False(t, s.HasChanges())
}

func TestSection_SnapshotRoundTrip(t *testing.T) {
	s := NewSection(vec.Vec3{X: -1, Y: 4, Z: 0})
	s.SetBlock(vec.Vec3{X: 0, Y: 0, Z: 0}, "oak_log")
	s.SetBlock(vec.Vec3{X: 15, Y: 15, Z: 15}, "oak_leaves")
	s.SetBlock(vec.Vec3{X: 7, Y: 3, Z: 9}, "oak_log")

	restored := SectionFromSnapshot(s.Snapshot())

	assert.Equal(t, s.Coords, restored.Coords)
	assert.Equal(t, "oak_log", restored.GetBlock(vec.Vec3{X: 0, Y: 0, Z: 0}))
	assert.Equal(t, "oak_leaves", restored.GetBlock(vec.Vec3{X: 15, Y: 15, Z: 15}))
	assert.Equal(t, "oak_log", restored.GetBlock(vec.Vec3{X: 7, Y: 3, Z: 9}))
	assert.Equal(t, 3, restored.CountNonAir())
	assert.False(t, restored.HasChanges(), "Загруженная секция не должна быть грязной")
}

func TestSectionFromSnapshot_ForeignPalette(t *testing.T) {
	// Палитра без воздуха на нулевой позиции и индекс за пределами палитры
	snap := SectionSnapshot{
		Coords:  vec.Vec3{},
		Palette: []string{"stone", "air"},
		Blocks:  make([]uint16, SectionSize*SectionSize*SectionSize),
	}
	snap.Blocks[1] = 1
	snap.Blocks[2] = 9

	s := SectionFromSnapshot(snap)
	assert.Equal(t, "stone", s.GetBlock(vec.Vec3{X: 0, Y: 0, Z: 0}))
	assert.Equal(t, "air", s.GetBlock(vec.Vec3{X: 0, Y: 0, Z: 1}))
	assert.Equal(t, "air", s.GetBlock(vec.Vec3{X: 0, Y: 0, Z: 2}))
}

package world

import (
	"errors"
	"testing"

	"github.com/annel0/veinminer/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrid_SampleBlock(t *testing.T) {
	grid := NewGrid(DefaultMinY, DefaultMaxY)

	pos := vec.Vec3{X: -5, Y: 12, Z: 40}
	require.NoError(t, grid.SetBlock(pos, "iron_ore"))

	name, err := grid.SampleBlock(pos)
	require.NoError(t, err)
	assert.Equal(t, "iron_ore", name)

	// В той же секции, но без блока — воздух
	name, err = grid.SampleBlock(pos.Add(vec.Vec3{X: 1}))
	require.NoError(t, err)
	assert.Equal(t, "air", name)

	// Секция не загружена
	_, err = grid.SampleBlock(vec.Vec3{X: 1000, Y: 12, Z: 1000})
	assert.True(t, errors.Is(err, ErrNotLoaded), "Ожидалась ErrNotLoaded, получено %v", err)

	// Вне диапазона высот
	_, err = grid.SampleBlock(vec.Vec3{X: -5, Y: DefaultMaxY + 1, Z: 40})
	assert.True(t, errors.Is(err, ErrOutOfRange), "Ожидалась ErrOutOfRange, получено %v", err)
	assert.ErrorIs(t, grid.SetBlock(vec.Vec3{Y: DefaultMinY - 1}, "stone"), ErrOutOfRange)
}

func TestGrid_RemoveBlockSpawnsDrops(t *testing.T) {
	grid := NewGrid(DefaultMinY, DefaultMaxY)

	ore := vec.Vec3{X: 3, Y: 20, Z: 3}
	logPos := vec.Vec3{X: 8, Y: 70, Z: 8}
	require.NoError(t, grid.SetBlock(ore, "deepslate_coal_ore"))
	require.NoError(t, grid.SetBlock(logPos, "oak_log"))

	name, err := grid.RemoveBlock(ore)
	require.NoError(t, err)
	assert.Equal(t, "deepslate_coal_ore", name)

	after, err := grid.SampleBlock(ore)
	require.NoError(t, err)
	assert.Equal(t, "air", after, "После разрушения должен остаться воздух")

	entities := grid.Entities()
	require.Len(t, entities, 2, "Уголь даёт предмет и одну сферу опыта")
	assert.Equal(t, EntityKindItem, entities[0].Kind)
	assert.Equal(t, "coal", entities[0].Item)
	assert.Equal(t, EntityKindXP, entities[1].Kind)
	assert.Equal(t, ore.Center(), entities[0].Position)

	_, err = grid.RemoveBlock(logPos)
	require.NoError(t, err)
	assert.Len(t, grid.Entities(), 3)

	// Повторное разрушение воздуха ничего не создаёт
	name, err = grid.RemoveBlock(logPos)
	require.NoError(t, err)
	assert.Equal(t, "air", name)
	assert.Len(t, grid.Entities(), 3)
}

func TestGrid_Entities(t *testing.T) {
	grid := NewGrid(0, 128)

	id := grid.SpawnEntity(EntityKindItem, "raw_iron", vec.Vec3Float{X: 1, Y: 2, Z: 3})
	assert.Equal(t, uint64(1001), id, "ID сущностей начинаются после 1000")

	target := vec.Vec3Float{X: 10.5, Y: 65, Z: -3}
	require.NoError(t, grid.MoveEntity(id, target))

	e, ok := grid.Entity(id)
	require.True(t, ok)
	assert.Equal(t, target, e.Position)

	assert.ErrorIs(t, grid.MoveEntity(42, target), ErrEntityNotFound)

	grid.RemoveEntity(id)
	_, ok = grid.Entity(id)
	assert.False(t, ok)
}

func TestGrid_SectionsLifecycle(t *testing.T) {
	grid := NewGrid(DefaultMinY, DefaultMaxY)
	require.NoError(t, grid.SetBlock(vec.Vec3{X: 0, Y: 0, Z: 0}, "stone"))
	require.NoError(t, grid.SetBlock(vec.Vec3{X: -1, Y: 0, Z: 0}, "stone"))

	coords := grid.Sections()
	assert.Equal(t, []vec.Vec3{{X: -1, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 0}}, coords)
	assert.Len(t, grid.DirtySections(), 2)

	section, ok := grid.UnloadSection(vec.Vec3{})
	require.True(t, ok)
	_, err := grid.SampleBlock(vec.Vec3{})
	assert.ErrorIs(t, err, ErrNotLoaded)

	grid.LoadSection(section)
	name, err := grid.SampleBlock(vec.Vec3{})
	require.NoError(t, err)
	assert.Equal(t, "stone", name)

	found := grid.Find(func(name string) bool { return name == "stone" })
	assert.ElementsMatch(t, []vec.Vec3{{X: 0, Y: 0, Z: 0}, {X: -1, Y: 0, Z: 0}}, found)
}

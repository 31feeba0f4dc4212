package world

import (
	"testing"

	"github.com/annel0/veinminer/internal/vec"
	"github.com/annel0/veinminer/internal/world/block"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Deterministic(t *testing.T) {
	a := NewGrid(DefaultMinY, DefaultMaxY)
	b := NewGrid(DefaultMinY, DefaultMaxY)

	from, to := vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 15, Y: 15}
	statsA := NewGenerator(12345).Generate(a, from, to)
	statsB := NewGenerator(12345).Generate(b, from, to)

	assert.Equal(t, statsA, statsB, "Один и тот же сид должен давать одинаковый мир")
	assert.Equal(t, 256, statsA.Columns)

	for _, coords := range a.Sections() {
		sa, _ := a.Section(coords)
		sb, ok := b.Section(coords)
		require.True(t, ok, "Секция %v отсутствует во втором мире", coords)
		if diff := cmp.Diff(sa.Snapshot(), sb.Snapshot()); diff != "" {
			t.Errorf("Секция %v различается (-a +b):\n%s", coords, diff)
		}
	}
}

func TestGenerator_ColumnLayers(t *testing.T) {
	grid := NewGrid(DefaultMinY, DefaultMaxY)
	gen := NewGenerator(7)
	gen.ForestDensity = 0
	gen.Generate(grid, vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 3, Y: 3})

	for x := 0; x <= 3; x++ {
		for z := 0; z <= 3; z++ {
			surface := gen.SurfaceHeight(x, z)

			bottom, err := grid.SampleBlock(vec.Vec3{X: x, Y: DefaultMinY, Z: z})
			require.NoError(t, err)
			assert.Equal(t, "bedrock", bottom)

			top, err := grid.SampleBlock(vec.Vec3{X: x, Y: surface, Z: z})
			require.NoError(t, err)
			if surface >= SeaLevel {
				assert.Equal(t, "grass_block", top)
			} else {
				assert.Equal(t, "dirt", top)
				water, err := grid.SampleBlock(vec.Vec3{X: x, Y: SeaLevel, Z: z})
				require.NoError(t, err)
				assert.Equal(t, "water", water)
			}

			deep, err := grid.SampleBlock(vec.Vec3{X: x, Y: -10, Z: z})
			require.NoError(t, err)
			assert.True(t, deep == "deepslate" || block.IsOre(deep), "Ниже нуля только глубинный сланец или руда, получено %s", deep)
		}
	}
}

func TestGenerator_OresUseDeepslateBelowZero(t *testing.T) {
	grid := NewGrid(DefaultMinY, DefaultMaxY)
	gen := NewGenerator(99)
	gen.ForestDensity = 0
	gen.Generate(grid, vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 15, Y: 15})

	for _, pos := range grid.Find(block.IsOre) {
		name, err := grid.SampleBlock(pos)
		require.NoError(t, err)
		oreType := block.NormalizeOreType(name)
		assert.True(t, block.MatchesOre(name, oreType))
		if pos.Y < 0 {
			assert.Contains(t, name, "deepslate_", "Руда %v на глубине %d должна быть глубинной", name, pos.Y)
		} else {
			assert.NotContains(t, name, "deepslate_")
		}
	}
}

func TestPlaceTree(t *testing.T) {
	grid := NewGrid(DefaultMinY, DefaultMaxY)
	base := vec.Vec3{X: 0, Y: 70, Z: 0}
	PlaceTree(grid, base, "birch", 5)

	for i := 0; i < 5; i++ {
		name, err := grid.SampleBlock(base.Add(vec.Vec3{Y: i}))
		require.NoError(t, err)
		assert.Equal(t, "birch_log", name)
	}

	// Над стволом — листва
	name, err := grid.SampleBlock(base.Add(vec.Vec3{Y: 5}))
	require.NoError(t, err)
	assert.Equal(t, "birch_leaves", name)

	// Углы широкой части кроны срезаны
	name, err = grid.SampleBlock(base.Add(vec.Vec3{X: 2, Y: 2, Z: 2}))
	require.NoError(t, err)
	assert.Equal(t, "air", name)

	leaves := grid.Find(func(n string) bool { return n == "birch_leaves" })
	// 2 слоя по 5x5-4-1 + слой 3x3-1 + слой 3x3
	assert.Len(t, leaves, 20+20+8+9)
}

package storage

import (
	"context"
	"testing"

	"github.com/annel0/veinminer/internal/vec"
	"github.com/annel0/veinminer/internal/vein"
	"github.com/annel0/veinminer/internal/world"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisSampler(t *testing.T) *RedisSampler {
	t.Helper()

	config := DefaultRedisConfig()
	config.DB = 15
	config.KeyPrefix = "vein:test:" + uuid.NewString() + ":"

	rs, err := NewRedisSampler(config)
	if err != nil {
		t.Skipf("Redis недоступен: %v", err)
	}

	t.Cleanup(func() {
		rs.Forget(context.Background())
		rs.Close()
	})
	return rs
}

func TestRedisSampler_OutOfRange(t *testing.T) {
	// Проверка диапазона не обращается к Redis
	rs := &RedisSampler{minY: -64, maxY: 319}

	_, err := rs.SampleBlock(vec.Vec3{Y: 320})
	assert.ErrorIs(t, err, world.ErrOutOfRange)
	_, err = rs.SampleBlock(vec.Vec3{Y: -65})
	assert.ErrorIs(t, err, world.ErrOutOfRange)
}

func TestRedisSampler_MirrorAndSample(t *testing.T) {
	rs := setupRedisSampler(t)
	ctx := context.Background()

	grid := world.NewGrid(world.DefaultMinY, world.DefaultMaxY)
	require.NoError(t, grid.SetBlock(vec.Vec3{X: 1, Y: 20, Z: 1}, "gold_ore"))
	require.NoError(t, grid.SetBlock(vec.Vec3{X: -3, Y: 20, Z: 2}, "stone"))
	grid.EnsureSection(vec.Vec3{X: 5, Y: 5, Z: 5}) // пустая секция

	n, err := rs.Mirror(ctx, grid)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	name, err := rs.SampleBlock(vec.Vec3{X: 1, Y: 20, Z: 1})
	require.NoError(t, err)
	assert.Equal(t, "gold_ore", name)

	name, err = rs.SampleBlock(vec.Vec3{X: 2, Y: 20, Z: 1})
	require.NoError(t, err)
	assert.Equal(t, "air", name)

	name, err = rs.SampleBlock(vec.Vec3{X: 80, Y: 80, Z: 80})
	require.NoError(t, err)
	assert.Equal(t, "air", name)

	_, err = rs.SampleBlock(vec.Vec3{X: 500, Y: 20, Z: 500})
	assert.ErrorIs(t, err, world.ErrNotLoaded)

	require.NoError(t, rs.SetBlock(ctx, vec.Vec3{X: 1, Y: 20, Z: 1}, "air"))
	name, err = rs.SampleBlock(vec.Vec3{X: 1, Y: 20, Z: 1})
	require.NoError(t, err)
	assert.Equal(t, "air", name)
}

func TestRedisSampler_DrivesSearch(t *testing.T) {
	rs := setupRedisSampler(t)
	ctx := context.Background()

	grid := world.NewGrid(world.DefaultMinY, world.DefaultMaxY)
	blocks := []vec.Vec3{{X: 0, Y: 10, Z: 0}, {X: 1, Y: 11, Z: 0}, {X: 2, Y: 11, Z: 1}}
	for _, pos := range blocks {
		require.NoError(t, grid.SetBlock(pos, "lapis_ore"))
	}
	_, err := rs.Mirror(ctx, grid)
	require.NoError(t, err)

	res, err := vein.NewEngine().SearchOre(ctx, rs, blocks[0], "lapis")
	require.NoError(t, err)
	assert.ElementsMatch(t, blocks, res.Blocks)
}

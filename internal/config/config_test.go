package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "veinminer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_DefaultsWithoutPath(t *testing.T) {
	t.Setenv("VEIN_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.True(t, cfg.Harvest.BreakLeaves)
	assert.Equal(t, 8, cfg.Harvest.MaxLeafDistance)
	assert.Equal(t, TeleportPlayer, cfg.Harvest.TeleportMode)
	require.NoError(t, cfg.Validate())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
harvest:
  break_leaves: false
  max_leaf_distance: 12
  teleport_mode: FIRST_BLOCK
world:
  seed: 1337
eventbus:
  url: nats://127.0.0.1:4222
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Harvest.BreakLeaves)
	assert.True(t, cfg.Harvest.EnableOre, "Незаданные поля сохраняют значения по умолчанию")
	assert.Equal(t, 12, cfg.Harvest.MaxLeafDistance)
	assert.Equal(t, TeleportFirstBlock, cfg.Harvest.TeleportMode)
	assert.Equal(t, int64(1337), cfg.World.Seed)
	assert.Equal(t, -64, cfg.World.MinY)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.EventBus.URL)
	assert.Equal(t, "VEINMINER", cfg.EventBus.Stream)
}

func TestLoad_FromEnv(t *testing.T) {
	path := writeConfig(t, "world:\n  seed: 9\n")
	t.Setenv("VEIN_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, int64(9), cfg.World.Seed)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	tests := map[string]string{
		"leaf distance": "harvest:\n  max_leaf_distance: 33\n",
		"zero distance": "harvest:\n  max_leaf_distance: 0\n",
		"teleport mode": "harvest:\n  teleport_mode: orbit\n",
		"height range":  "world:\n  min_y: 10\n  max_y: 10\n",
		"broken yaml":   "harvest: [\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestGetMetricsPort(t *testing.T) {
	t.Setenv("VEIN_METRICS_PORT", "")
	m := MetricsConfig{}
	assert.Equal(t, 2112, m.GetMetricsPort())

	t.Setenv("VEIN_METRICS_PORT", "9100")
	assert.Equal(t, 9100, m.GetMetricsPort())

	t.Setenv("VEIN_METRICS_PORT", "not-a-port")
	assert.Equal(t, 2112, m.GetMetricsPort())

	m.Port = 8000
	assert.Equal(t, 8000, m.GetMetricsPort())
}

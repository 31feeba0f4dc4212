package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// TeleportMode определяет, куда переносятся выпавшие предметы
type TeleportMode string

const (
	TeleportNone       TeleportMode = "none"        // Не переносить
	TeleportFirstBlock TeleportMode = "first_block" // К центру первого разрушенного блока
	TeleportPlayer     TeleportMode = "player"      // К игроку
)

// Допустимый диапазон дальности поиска листвы
const (
	MinLeafDistance = 1
	MaxLeafDistance = 32
)

// Config корневая структура конфигурации приложения.
type Config struct {
	Harvest   HarvestConfig   `yaml:"harvest"`
	World     WorldConfig     `yaml:"world"`
	Redis     RedisConfig     `yaml:"redis"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// HarvestConfig содержит настройки добычи
type HarvestConfig struct {
	EnableOre       bool         `yaml:"enable_ore"`
	EnableTree      bool         `yaml:"enable_tree"`
	BreakLeaves     bool         `yaml:"break_leaves"`
	MaxLeafDistance int          `yaml:"max_leaf_distance"`
	TeleportMode    TeleportMode `yaml:"teleport_mode"`
}

// WorldConfig содержит параметры генерируемого мира
type WorldConfig struct {
	Seed     int64  `yaml:"seed"`
	DataPath string `yaml:"data_path"` // Пусто — мир не сохраняется
	MinY     int    `yaml:"min_y"`
	MaxY     int    `yaml:"max_y"`
	Radius   int    `yaml:"radius"` // Полуразмер генерируемой области в блоках
}

// RedisConfig настраивает зеркало мира в Redis. Пустой Addr отключает зеркало.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// EventBusConfig настраивает NATS JetStream. При пустом URL используется шина в памяти процесса.
type EventBusConfig struct {
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
}

// MetricsConfig настраивает эндпоинт Prometheus
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// TelemetryConfig настраивает экспорт трасс OpenTelemetry
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// LoggingConfig задаёт уровень логирования
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Harvest: HarvestConfig{
			EnableOre:       true,
			EnableTree:      true,
			BreakLeaves:     true,
			MaxLeafDistance: 8,
			TeleportMode:    TeleportPlayer,
		},
		World: WorldConfig{
			Seed:   42,
			MinY:   -64,
			MaxY:   319,
			Radius: 24,
		},
		Redis: RedisConfig{
			KeyPrefix: "vein:section:",
		},
		EventBus: EventBusConfig{
			Stream:    "VEINMINER",
			Retention: 24,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "veinminer",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// GetMetricsPort возвращает порт метрик с поддержкой fallback значений
func (m *MetricsConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(m.Port, "VEIN_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Validate проверяет значения, которые нельзя молча исправить
func (c *Config) Validate() error {
	h := c.Harvest
	if h.MaxLeafDistance < MinLeafDistance || h.MaxLeafDistance > MaxLeafDistance {
		return fmt.Errorf("harvest.max_leaf_distance: %d вне диапазона %d..%d",
			h.MaxLeafDistance, MinLeafDistance, MaxLeafDistance)
	}

	switch h.TeleportMode {
	case TeleportNone, TeleportFirstBlock, TeleportPlayer:
	default:
		return fmt.Errorf("harvest.teleport_mode: неизвестный режим %q", h.TeleportMode)
	}

	if c.World.MinY >= c.World.MaxY {
		return fmt.Errorf("world: min_y (%d) должен быть меньше max_y (%d)", c.World.MinY, c.World.MaxY)
	}
	if c.World.Radius <= 0 {
		return fmt.Errorf("world.radius: должен быть положительным, получено %d", c.World.Radius)
	}
	return nil
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать путь из ENV VEIN_CONFIG; если он
// тоже не задан, возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("VEIN_CONFIG")
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
	}

	cfg.Harvest.TeleportMode = TeleportMode(strings.ToLower(string(cfg.Harvest.TeleportMode)))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

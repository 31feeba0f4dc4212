package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/annel0/veinminer/internal/logging"
	"github.com/annel0/veinminer/internal/vec"
	"github.com/annel0/veinminer/internal/world"
	"github.com/annel0/veinminer/internal/world/block"
	"github.com/go-redis/redis/v8"
)

// Служебное поле хэша секции: присутствует у каждой зеркалированной секции,
// даже если в ней только воздух.
const sectionMarkerField = "_loaded"

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr      string        // Адрес Redis сервера
	Password  string        // Пароль (пустой если не требуется)
	DB        int           // Номер базы данных
	KeyPrefix string        // Префикс ключей секций
	Timeout   time.Duration // Таймаут одного запроса
	MinY      int           // Нижняя граница высот мира
	MaxY      int           // Верхняя граница высот мира
}

// DefaultRedisConfig возвращает конфигурацию по умолчанию
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:      "localhost:6379",
		KeyPrefix: "vein:section:",
		Timeout:   200 * time.Millisecond,
		MinY:      world.DefaultMinY,
		MaxY:      world.DefaultMaxY,
	}
}

// RedisSampler читает блоки из зеркала мира в Redis. Каждая секция хранится
// хэшем {prefix}{sx}:{sy}:{sz}, поле "{x}:{y}:{z}" — имя непустого блока.
// Отсутствующее поле в существующем хэше означает воздух.
type RedisSampler struct {
	client    *redis.Client
	ctx       context.Context
	keyPrefix string
	timeout   time.Duration
	minY      int
	maxY      int
}

// NewRedisSampler подключается к Redis и проверяет соединение
func NewRedisSampler(config *RedisConfig) (*RedisSampler, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultRedisConfig().Timeout
	}

	logging.Info("🔴 Connected to Redis at %s", config.Addr)
	return &RedisSampler{
		client:    client,
		ctx:       ctx,
		keyPrefix: config.KeyPrefix,
		timeout:   timeout,
		minY:      config.MinY,
		maxY:      config.MaxY,
	}, nil
}

// Close закрывает соединение
func (rs *RedisSampler) Close() error {
	return rs.client.Close()
}

func (rs *RedisSampler) sectionKey(coords vec.Vec3) string {
	return fmt.Sprintf("%s%d:%d:%d", rs.keyPrefix, coords.X, coords.Y, coords.Z)
}

func blockField(pos vec.Vec3) string {
	return fmt.Sprintf("%d:%d:%d", pos.X, pos.Y, pos.Z)
}

// SampleBlock реализует world.BlockSampler
func (rs *RedisSampler) SampleBlock(pos vec.Vec3) (string, error) {
	if pos.Y < rs.minY || pos.Y > rs.maxY {
		return "", fmt.Errorf("%w: y=%d", world.ErrOutOfRange, pos.Y)
	}

	ctx, cancel := context.WithTimeout(rs.ctx, rs.timeout)
	defer cancel()

	key := rs.sectionKey(pos.ToSectionCoords())
	pipe := rs.client.Pipeline()
	nameCmd := pipe.HGet(ctx, key, blockField(pos))
	existsCmd := pipe.Exists(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return "", fmt.Errorf("failed to sample block %v: %w", pos, err)
	}

	if existsCmd.Val() == 0 {
		return "", fmt.Errorf("%w: %s", world.ErrNotLoaded, key)
	}

	name, err := nameCmd.Result()
	if err == redis.Nil {
		return block.Air, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to sample block %v: %w", pos, err)
	}
	return name, nil
}

// MirrorSection заменяет хэш секции её текущим содержимым
func (rs *RedisSampler) MirrorSection(ctx context.Context, section *world.Section) error {
	snap := section.Snapshot()
	origin := section.Origin()

	fields := map[string]interface{}{sectionMarkerField: "1"}
	for i, idx := range snap.Blocks {
		if idx == 0 {
			continue
		}
		local := vec.Vec3{
			X: i / (world.SectionSize * world.SectionSize),
			Y: (i / world.SectionSize) % world.SectionSize,
			Z: i % world.SectionSize,
		}
		fields[blockField(origin.Add(local))] = snap.Palette[idx]
	}

	key := rs.sectionKey(section.Coords)
	pipe := rs.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to mirror section %v: %w", section.Coords, err)
	}
	return nil
}

// Mirror копирует все загруженные секции сетки в Redis. Возвращает число
// записанных секций.
func (rs *RedisSampler) Mirror(ctx context.Context, grid *world.Grid) (int, error) {
	n := 0
	for _, coords := range grid.Sections() {
		section, ok := grid.Section(coords)
		if !ok {
			continue
		}
		if err := rs.MirrorSection(ctx, section); err != nil {
			return n, err
		}
		n++
	}
	logging.Debug("🔴 Зеркалировано секций в Redis: %d", n)
	return n, nil
}

// SetBlock обновляет один блок зеркала. Воздух удаляет поле.
func (rs *RedisSampler) SetBlock(ctx context.Context, pos vec.Vec3, name string) error {
	key := rs.sectionKey(pos.ToSectionCoords())
	pipe := rs.client.TxPipeline()
	pipe.HSet(ctx, key, sectionMarkerField, "1")
	if name == "" || name == block.Air {
		pipe.HDel(ctx, key, blockField(pos))
	} else {
		pipe.HSet(ctx, key, blockField(pos), name)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set block %v: %w", pos, err)
	}
	return nil
}

// Forget удаляет секции с префиксом зеркала
func (rs *RedisSampler) Forget(ctx context.Context) (int64, error) {
	var deleted int64
	iter := rs.client.Scan(ctx, 0, rs.keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		n, err := rs.client.Del(ctx, iter.Val()).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to delete %s: %w", iter.Val(), err)
		}
		deleted += n
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("failed to scan sections: %w", err)
	}
	return deleted, nil
}

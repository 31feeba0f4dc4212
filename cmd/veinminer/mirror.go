package main

import (
	"context"

	"github.com/annel0/veinminer/internal/harvest"
	"github.com/annel0/veinminer/internal/logging"
	"github.com/annel0/veinminer/internal/storage"
	"github.com/annel0/veinminer/internal/vec"
	"github.com/annel0/veinminer/internal/world/block"
)

// mirroredHost читает блоки из зеркала в Redis, а разрушения применяет
// и к сетке, и к зеркалу.
type mirroredHost struct {
	*harvest.WorldHost
	redis *storage.RedisSampler
}

func (h *mirroredHost) SampleBlock(pos vec.Vec3) (string, error) {
	return h.redis.SampleBlock(pos)
}

func (h *mirroredHost) RemoveBlock(pos vec.Vec3) (string, error) {
	name, err := h.WorldHost.RemoveBlock(pos)
	if err != nil {
		return name, err
	}
	if err := h.redis.SetBlock(context.Background(), pos, block.Air); err != nil {
		logging.Warn("Зеркало Redis отстаёт для %v: %v", pos, err)
	}
	return name, nil
}

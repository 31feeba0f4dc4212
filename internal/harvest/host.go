package harvest

import (
	"sync"

	"github.com/annel0/veinminer/internal/vec"
	"github.com/annel0/veinminer/internal/world"
)

// Host описывает мир, в котором работает исполнитель добычи. Кроме чтения блоков
// он умеет разрушать блоки, перечислять и двигать свободные сущности и
// знает позицию игрока.
type Host interface {
	world.BlockSampler
	RemoveBlock(pos vec.Vec3) (string, error)
	Entities() []world.Entity
	MoveEntity(id uint64, pos vec.Vec3Float) error
	PlayerPosition() vec.Vec3Float
}

// WorldHost привязывает сетку мира к позиции одного игрока
type WorldHost struct {
	*world.Grid

	mu     sync.RWMutex
	player vec.Vec3Float
}

// NewWorldHost создаёт хост поверх сетки с игроком в точке player
func NewWorldHost(grid *world.Grid, player vec.Vec3Float) *WorldHost {
	return &WorldHost{Grid: grid, player: player}
}

// PlayerPosition возвращает позицию игрока
func (h *WorldHost) PlayerPosition() vec.Vec3Float {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.player
}

// SetPlayerPosition перемещает игрока
func (h *WorldHost) SetPlayerPosition(pos vec.Vec3Float) {
	h.mu.Lock()
	h.player = pos
	h.mu.Unlock()
}

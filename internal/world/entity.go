package world

import (
	"errors"
	"sort"

	"github.com/annel0/veinminer/internal/vec"
)

// Виды сущностей, которые появляются при разрушении блоков
const (
	EntityKindItem = "item"
	EntityKindXP   = "xp_orb"
)

// ErrEntityNotFound возвращается при обращении к несуществующей сущности
var ErrEntityNotFound = errors.New("world: сущность не найдена")

// Entity представляет свободную сущность в мире (выпавший предмет или опыт)
type Entity struct {
	ID       uint64        `json:"id"`       // Уникальный ID сущности
	Kind     string        `json:"kind"`     // item / xp_orb
	Item     string        `json:"item"`     // Имя предмета (для item)
	Position vec.Vec3Float `json:"position"` // Точная позиция
}

// SpawnEntity создаёт сущность и возвращает её ID
func (g *Grid) SpawnEntity(kind, item string, pos vec.Vec3Float) uint64 {
	g.entityMu.Lock()
	defer g.entityMu.Unlock()

	g.nextEntityID++
	id := g.nextEntityID
	g.entities[id] = &Entity{ID: id, Kind: kind, Item: item, Position: pos}
	return id
}

// Entities возвращает копии всех сущностей, упорядоченные по ID
func (g *Grid) Entities() []Entity {
	g.entityMu.Lock()
	defer g.entityMu.Unlock()

	out := make([]Entity, 0, len(g.entities))
	for _, e := range g.entities {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Entity возвращает копию сущности по ID
func (g *Grid) Entity(id uint64) (Entity, bool) {
	g.entityMu.Lock()
	defer g.entityMu.Unlock()

	e, ok := g.entities[id]
	if !ok {
		return Entity{}, false
	}
	return *e, true
}

// MoveEntity перемещает сущность
func (g *Grid) MoveEntity(id uint64, pos vec.Vec3Float) error {
	g.entityMu.Lock()
	defer g.entityMu.Unlock()

	e, ok := g.entities[id]
	if !ok {
		return ErrEntityNotFound
	}
	e.Position = pos
	return nil
}

// RemoveEntity удаляет сущность (например, подобранную игроком)
func (g *Grid) RemoveEntity(id uint64) {
	g.entityMu.Lock()
	defer g.entityMu.Unlock()

	delete(g.entities, id)
}

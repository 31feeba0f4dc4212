package world

import (
	"fmt"
	"sort"
	"sync"

	"github.com/annel0/veinminer/internal/vec"
	"github.com/annel0/veinminer/internal/world/block"
)

// Границы высот мира по умолчанию
const (
	DefaultMinY = -64
	DefaultMaxY = 319
)

// Grid представляет разреженный трёхмерный мир из секций 16x16x16.
// Реализует BlockSampler: выгруженные секции и координаты вне диапазона
// высот возвращают ошибку, а не воздух.
type Grid struct {
	sections map[vec.Vec3]*Section // Загруженные секции
	minY     int
	maxY     int
	mu       sync.RWMutex

	entities     map[uint64]*Entity
	nextEntityID uint64
	entityMu     sync.Mutex
}

// NewGrid создаёт пустой мир с заданным диапазоном высот (включительно)
func NewGrid(minY, maxY int) *Grid {
	if maxY < minY {
		minY, maxY = maxY, minY
	}
	return &Grid{
		sections:     make(map[vec.Vec3]*Section),
		minY:         minY,
		maxY:         maxY,
		entities:     make(map[uint64]*Entity),
		nextEntityID: 1000, // Начинаем с 1000, чтобы избежать конфликтов с малыми ID
	}
}

// HeightRange возвращает допустимый диапазон высот
func (g *Grid) HeightRange() (minY, maxY int) {
	return g.minY, g.maxY
}

// InRange проверяет, что высота координаты допустима
func (g *Grid) InRange(pos vec.Vec3) bool {
	return pos.Y >= g.minY && pos.Y <= g.maxY
}

// SampleBlock возвращает имя блока по мировым координатам
func (g *Grid) SampleBlock(pos vec.Vec3) (string, error) {
	if !g.InRange(pos) {
		return "", fmt.Errorf("%w: y=%d", ErrOutOfRange, pos.Y)
	}

	g.mu.RLock()
	section, exists := g.sections[pos.ToSectionCoords()]
	g.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("%w: %v", ErrNotLoaded, pos.ToSectionCoords())
	}
	return section.GetBlock(pos.LocalInSection()), nil
}

// SetBlock устанавливает блок, создавая секцию при необходимости
func (g *Grid) SetBlock(pos vec.Vec3, name string) error {
	if !g.InRange(pos) {
		return fmt.Errorf("%w: y=%d", ErrOutOfRange, pos.Y)
	}
	g.EnsureSection(pos.ToSectionCoords()).SetBlock(pos.LocalInSection(), name)
	return nil
}

// RemoveBlock заменяет блок воздухом и создаёт выпадающие сущности
// в центре блока. Возвращает имя разрушенного блока.
func (g *Grid) RemoveBlock(pos vec.Vec3) (string, error) {
	name, err := g.SampleBlock(pos)
	if err != nil {
		return "", err
	}
	if name == block.Air {
		return name, nil
	}

	g.EnsureSection(pos.ToSectionCoords()).SetBlock(pos.LocalInSection(), block.Air)

	drop := block.DropFor(name)
	if drop.Item != "" {
		g.SpawnEntity(EntityKindItem, drop.Item, pos.Center())
	}
	for i := 0; i < drop.XP; i++ {
		g.SpawnEntity(EntityKindXP, "", pos.Center())
	}
	return name, nil
}

// EnsureSection возвращает секцию, создавая пустую при отсутствии
func (g *Grid) EnsureSection(coords vec.Vec3) *Section {
	g.mu.RLock()
	section, exists := g.sections[coords]
	g.mu.RUnlock()
	if exists {
		return section
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	// Проверяем еще раз на случай гонки
	if section, exists = g.sections[coords]; exists {
		return section
	}
	section = NewSection(coords)
	g.sections[coords] = section
	return section
}

// Section возвращает загруженную секцию
func (g *Grid) Section(coords vec.Vec3) (*Section, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	section, exists := g.sections[coords]
	return section, exists
}

// LoadSection добавляет (или заменяет) секцию
func (g *Grid) LoadSection(section *Section) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.sections[section.Coords] = section
}

// UnloadSection выгружает секцию и возвращает её
func (g *Grid) UnloadSection(coords vec.Vec3) (*Section, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	section, exists := g.sections[coords]
	if exists {
		delete(g.sections, coords)
	}
	return section, exists
}

// Sections возвращает координаты всех загруженных секций в стабильном порядке
func (g *Grid) Sections() []vec.Vec3 {
	g.mu.RLock()
	coords := make([]vec.Vec3, 0, len(g.sections))
	for c := range g.sections {
		coords = append(coords, c)
	}
	g.mu.RUnlock()

	sortCoords(coords)
	return coords
}

// DirtySections возвращает секции с несохранёнными изменениями
func (g *Grid) DirtySections() []*Section {
	g.mu.RLock()
	dirty := make([]*Section, 0)
	for _, s := range g.sections {
		if s.HasChanges() {
			dirty = append(dirty, s)
		}
	}
	g.mu.RUnlock()

	sort.Slice(dirty, func(i, j int) bool { return lessCoords(dirty[i].Coords, dirty[j].Coords) })
	return dirty
}

// Find возвращает все загруженные блоки, для которых match вернул true
func (g *Grid) Find(match func(name string) bool) []vec.Vec3 {
	var found []vec.Vec3
	for _, coords := range g.Sections() {
		section, ok := g.Section(coords)
		if !ok {
			continue
		}
		origin := section.Origin()

		section.Mu.RLock()
		for x := 0; x < SectionSize; x++ {
			for y := 0; y < SectionSize; y++ {
				for z := 0; z < SectionSize; z++ {
					if match(section.Palette[section.Blocks[x][y][z]]) {
						found = append(found, origin.Add(vec.Vec3{X: x, Y: y, Z: z}))
					}
				}
			}
		}
		section.Mu.RUnlock()
	}
	return found
}

func sortCoords(coords []vec.Vec3) {
	sort.Slice(coords, func(i, j int) bool { return lessCoords(coords[i], coords[j]) })
}

func lessCoords(a, b vec.Vec3) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}

package world

import (
	"sync"

	"github.com/annel0/veinminer/internal/vec"
	"github.com/annel0/veinminer/internal/world/block"
)

// SectionSize задаёт размер секции по каждой оси
const SectionSize = 16

// Section представляет участок мира размером 16x16x16 блоков.
// Имена блоков хранятся через палитру: Blocks содержит индексы в Palette,
// индекс 0 всегда соответствует воздуху.
type Section struct {
	Coords vec.Vec3 // Координаты секции в мире

	Palette []string                                    // Индекс -> имя блока
	Blocks  [SectionSize][SectionSize][SectionSize]uint16 // Blocks[x][y][z]

	paletteIndex map[string]uint16

	Changes       map[vec.Vec3]struct{} // Изменённые блоки (локальные координаты)
	ChangeCounter int                   // Счетчик изменений
	Mu            sync.RWMutex          // Мьютекс для безопасного доступа
}

// NewSection создаёт пустую (заполненную воздухом) секцию
func NewSection(coords vec.Vec3) *Section {
	return &Section{
		Coords:       coords,
		Palette:      []string{block.Air},
		paletteIndex: map[string]uint16{block.Air: 0},
		Changes:      make(map[vec.Vec3]struct{}),
	}
}

// Origin возвращает мировые координаты блока (0,0,0) секции
func (s *Section) Origin() vec.Vec3 {
	return vec.Vec3{X: s.Coords.X * SectionSize, Y: s.Coords.Y * SectionSize, Z: s.Coords.Z * SectionSize}
}

// GetBlock возвращает имя блока по локальным координатам
func (s *Section) GetBlock(local vec.Vec3) string {
	s.Mu.RLock()
	defer s.Mu.RUnlock()

	return s.Palette[s.Blocks[local.X][local.Y][local.Z]]
}

// SetBlock устанавливает блок по локальным координатам
func (s *Section) SetBlock(local vec.Vec3, name string) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	idx := s.paletteID(name)
	if s.Blocks[local.X][local.Y][local.Z] == idx {
		return
	}

	s.Blocks[local.X][local.Y][local.Z] = idx
	s.Changes[local] = struct{}{}
	s.ChangeCounter++
}

// paletteID возвращает индекс имени в палитре, добавляя его при необходимости.
// Вызывается под s.Mu.
func (s *Section) paletteID(name string) uint16 {
	if name == "" {
		name = block.Air
	}
	if idx, ok := s.paletteIndex[name]; ok {
		return idx
	}
	idx := uint16(len(s.Palette))
	s.Palette = append(s.Palette, name)
	s.paletteIndex[name] = idx
	return idx
}

// HasChanges возвращает true, если в секции есть изменения
func (s *Section) HasChanges() bool {
	s.Mu.RLock()
	defer s.Mu.RUnlock()

	return s.ChangeCounter > 0
}

// ClearChanges очищает список изменений
func (s *Section) ClearChanges() {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	s.Changes = make(map[vec.Vec3]struct{})
	s.ChangeCounter = 0
}

// CountNonAir возвращает количество непустых блоков
func (s *Section) CountNonAir() int {
	s.Mu.RLock()
	defer s.Mu.RUnlock()

	n := 0
	for x := 0; x < SectionSize; x++ {
		for y := 0; y < SectionSize; y++ {
			for z := 0; z < SectionSize; z++ {
				if s.Blocks[x][y][z] != 0 {
					n++
				}
			}
		}
	}
	return n
}

// SectionSnapshot содержит сериализуемое представление секции
type SectionSnapshot struct {
	Coords  vec.Vec3 `json:"coords"`
	Palette []string `json:"palette"`
	Blocks  []uint16 `json:"blocks"` // x*256 + y*16 + z
}

// Snapshot создаёт копию секции для сохранения
func (s *Section) Snapshot() SectionSnapshot {
	s.Mu.RLock()
	defer s.Mu.RUnlock()

	snap := SectionSnapshot{
		Coords:  s.Coords,
		Palette: append([]string(nil), s.Palette...),
		Blocks:  make([]uint16, 0, SectionSize*SectionSize*SectionSize),
	}
	for x := 0; x < SectionSize; x++ {
		for y := 0; y < SectionSize; y++ {
			for z := 0; z < SectionSize; z++ {
				snap.Blocks = append(snap.Blocks, s.Blocks[x][y][z])
			}
		}
	}
	return snap
}

// SectionFromSnapshot восстанавливает секцию. Индексы вне палитры
// заменяются воздухом.
func SectionFromSnapshot(snap SectionSnapshot) *Section {
	s := NewSection(snap.Coords)

	// Палитра снапшота может начинаться не с воздуха, поэтому переиндексируем
	remap := make([]uint16, len(snap.Palette))
	for i, name := range snap.Palette {
		remap[i] = s.paletteID(name)
	}

	for i, idx := range snap.Blocks {
		if i >= SectionSize*SectionSize*SectionSize {
			break
		}
		x := i / (SectionSize * SectionSize)
		y := (i / SectionSize) % SectionSize
		z := i % SectionSize
		if int(idx) < len(remap) {
			s.Blocks[x][y][z] = remap[idx]
		}
	}
	return s
}

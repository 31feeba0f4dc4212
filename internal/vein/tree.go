package vein

import (
	"sort"

	"github.com/annel0/veinminer/internal/vec"
	"github.com/annel0/veinminer/internal/world/block"
)

// Параметры проверки правдоподобности дерева
const (
	treeCheckRadius     = 4   // Полуширина области по горизонтали
	treeCheckHeight     = 8   // Высота области над началом
	treeCheckMaxQueries = 200 // Лимит запросов к миру
	lowTrunkMaxY        = 62  // Стволы не выше этой высоты рубятся без листвы
)

// Вертикальный диапазон, в котором проверка ищет листву
var treeCheckBand = heightBand{minY: -60, maxY: 320}

// treeCheckOffsets хранит смещения области проверки от ближних колонок к дальним:
// сначала колонка самого ствола, затем кольца радиуса 1..4, внутри колонки
// снизу вверх. Лимит запросов обрезает дальние кольца, а не ближние.
var treeCheckOffsets = func() []vec.Vec3 {
	offsets := make([]vec.Vec3, 0, (2*treeCheckRadius+1)*(2*treeCheckRadius+1)*(treeCheckHeight+1)-1)
	for dx := -treeCheckRadius; dx <= treeCheckRadius; dx++ {
		for dy := 0; dy <= treeCheckHeight; dy++ {
			for dz := -treeCheckRadius; dz <= treeCheckRadius; dz++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				offsets = append(offsets, vec.Vec3{X: dx, Y: dy, Z: dz})
			}
		}
	}

	ring := func(d vec.Vec3) int {
		return max(abs(d.X), abs(d.Z))
	}
	sort.SliceStable(offsets, func(i, j int) bool {
		ri, rj := ring(offsets[i]), ring(offsets[j])
		if ri != rj {
			return ri < rj
		}
		return offsets[i].Y < offsets[j].Y
	})
	return offsets
}()

// treeCheck содержит результат проверки правдоподобности
type treeCheck struct {
	plausible    bool
	leavesNearby bool
	queries      int
	failed       int
}

// checkTree ищет листву нужной породы над началом поиска. Дерево считается
// правдоподобным, если листва найдена или начало не выше lowTrunkMaxY.
// Ошибки запросов пропускаются.
func checkTree(t *traversal, origin vec.Vec3, woodType string) treeCheck {
	var res treeCheck

	for _, d := range treeCheckOffsets {
		if res.queries >= treeCheckMaxQueries {
			break
		}

		pos := origin.Add(d)
		if !treeCheckBand.contains(pos.Y) {
			continue
		}

		res.queries++
		name, ok := lookup(t.sampler, pos)
		if !ok {
			res.failed++
			continue
		}
		if block.MatchesLeaves(name, woodType) {
			res.leavesNearby = true
			break
		}
	}

	res.plausible = res.leavesNearby || origin.Y <= lowTrunkMaxY
	return res
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

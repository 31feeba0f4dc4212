package world

import (
	"math/rand"

	"github.com/annel0/veinminer/internal/util"
	"github.com/annel0/veinminer/internal/vec"
	"github.com/annel0/veinminer/internal/world/block"
)

// Константы генерации ландшафта
const (
	SeaLevel        = 62 // Уровень моря
	BaseHeight      = 64 // Средняя высота поверхности
	HeightVariation = 28 // Амплитуда рельефа
	DirtDepth       = 3  // Толщина слоя земли под травой
)

// oreLayer описывает распределение одного типа руды по глубине
type oreLayer struct {
	oreType   string
	minY      int
	maxY      int
	threshold float64 // Порог шума, выше которого появляется руда
	offset    float64 // Смещение шума, чтобы жилы разных руд не совпадали
}

var oreLayers = []oreLayer{
	{oreType: "diamond", minY: -64, maxY: 16, threshold: 0.80, offset: 311.0},
	{oreType: "redstone", minY: -64, maxY: 16, threshold: 0.78, offset: 97.0},
	{oreType: "gold", minY: -64, maxY: 32, threshold: 0.78, offset: 173.0},
	{oreType: "iron", minY: -24, maxY: 72, threshold: 0.76, offset: 53.0},
	{oreType: "coal", minY: 0, maxY: 128, threshold: 0.74, offset: 11.0},
}

// GenerateStats содержит статистику генерации области
type GenerateStats struct {
	Columns int // Сгенерировано колонок
	Ores    int // Поставлено блоков руды
	Trees   int // Посажено деревьев
}

// Generator генерирует ландшафт, рудные жилы и деревья
type Generator struct {
	Seed          int64   // Сид для генерации шума
	NoiseScale    float64 // Масштаб шума высоты
	BiomeScale    float64 // Масштаб шума биомов
	OreScale      float64 // Масштаб трёхмерного шума руд
	ForestDensity float64 // Вероятность дерева на травяной колонке

	height *util.Noise
	biome  *util.Noise
	ore    *util.Noise
}

// NewGenerator создаёт генератор мира с указанным сидом
func NewGenerator(seed int64) *Generator {
	return &Generator{
		Seed:          seed,
		NoiseScale:    0.02,
		BiomeScale:    0.01,
		OreScale:      0.15,
		ForestDensity: 0.04,
		height:        util.NewNoise(seed),
		biome:         util.NewNoise(seed + 42),
		ore:           util.NewNoise(seed + 7),
	}
}

// SurfaceHeight возвращает высоту поверхности в колонке
func (wg *Generator) SurfaceHeight(x, z int) int {
	h := wg.height.At2D(float64(x)*wg.NoiseScale, float64(z)*wg.NoiseScale)
	return BaseHeight + int((h-0.5)*2*HeightVariation)
}

// WoodTypeAt выбирает породу дерева по шуму биома
func (wg *Generator) WoodTypeAt(x, z int) string {
	v := wg.biome.At2D(float64(x)*wg.BiomeScale, float64(z)*wg.BiomeScale)
	switch {
	case v < 0.42:
		return "birch"
	case v > 0.58:
		return "spruce"
	default:
		return "oak"
	}
}

// Generate заполняет колонки прямоугольника [from, to] (включительно).
// Сначала строится рельеф с рудами, затем сажаются деревья, поэтому кроны
// могут выходить за пределы области.
func (wg *Generator) Generate(grid *Grid, from, to vec.Vec2) GenerateStats {
	if to.X < from.X {
		from.X, to.X = to.X, from.X
	}
	if to.Y < from.Y {
		from.Y, to.Y = to.Y, from.Y
	}

	var stats GenerateStats
	for x := from.X; x <= to.X; x++ {
		for z := from.Y; z <= to.Y; z++ {
			stats.Ores += wg.generateColumn(grid, vec.Vec2{X: x, Y: z})
			stats.Columns++
		}
	}

	trunks := make(map[vec.Vec2]struct{})
	for x := from.X; x <= to.X; x++ {
		for z := from.Y; z <= to.Y; z++ {
			col := vec.Vec2{X: x, Y: z}
			if wg.tryPlaceTree(grid, col, trunks) {
				stats.Trees++
			}
		}
	}
	return stats
}

// generateColumn строит одну колонку рельефа и возвращает число блоков руды
func (wg *Generator) generateColumn(grid *Grid, col vec.Vec2) int {
	minY, maxY := grid.HeightRange()
	surface := wg.SurfaceHeight(col.X, col.Y)
	if surface > maxY {
		surface = maxY
	}

	ores := 0
	for y := minY; y <= surface; y++ {
		pos := col.At(y)
		var name string
		switch {
		case y == minY:
			name = "bedrock"
		case y == surface && surface >= SeaLevel:
			name = "grass_block"
		case y > surface-DirtDepth-1:
			name = "dirt"
		default:
			name = wg.stoneAt(pos)
			if block.IsOre(name) {
				ores++
			}
		}
		_ = grid.SetBlock(pos, name)
	}

	// Низины заливаем водой до уровня моря
	for y := surface + 1; y <= SeaLevel && y <= maxY; y++ {
		_ = grid.SetBlock(col.At(y), "water")
	}
	return ores
}

// stoneAt возвращает камень или руду для подземного блока
func (wg *Generator) stoneAt(pos vec.Vec3) string {
	deep := pos.Y < 0

	for _, layer := range oreLayers {
		if pos.Y < layer.minY || pos.Y > layer.maxY {
			continue
		}
		v := wg.ore.At3D(
			float64(pos.X)*wg.OreScale+layer.offset,
			float64(pos.Y)*wg.OreScale,
			float64(pos.Z)*wg.OreScale-layer.offset,
		)
		if v < layer.threshold {
			continue
		}

		name := layer.oreType + "_ore"
		if deep {
			name = "deepslate_" + name
		}
		// Часть редстоуна «светится»
		if layer.oreType == "redstone" && positionHash(pos, wg.Seed)%5 == 0 {
			name = "lit_" + name
		}
		return name
	}

	if deep {
		return "deepslate"
	}
	return "stone"
}

// tryPlaceTree сажает дерево на травяной колонке с вероятностью ForestDensity
func (wg *Generator) tryPlaceTree(grid *Grid, col vec.Vec2, trunks map[vec.Vec2]struct{}) bool {
	// Для каждой колонки создаем свой генератор для детерминированности
	rng := rand.New(rand.NewSource(wg.Seed + int64(col.X*31) + int64(col.Y*17)))
	if rng.Float64() >= wg.ForestDensity {
		return false
	}

	surface := wg.SurfaceHeight(col.X, col.Y)
	if name, err := grid.SampleBlock(col.At(surface)); err != nil || name != "grass_block" {
		return false
	}

	// Не сажаем деревья вплотную друг к другу
	for dx := -2; dx <= 2; dx++ {
		for dz := -2; dz <= 2; dz++ {
			if _, taken := trunks[vec.Vec2{X: col.X + dx, Y: col.Y + dz}]; taken {
				return false
			}
		}
	}

	woodType := wg.WoodTypeAt(col.X, col.Y)
	height := 4 + rng.Intn(3) // Высота ствола 4-6 блоков
	PlaceTree(grid, col.At(surface+1), woodType, height)
	trunks[col] = struct{}{}
	return true
}

// PlaceTree строит ствол высотой height от base и крону из листвы.
// Листва ставится только в воздух, чтобы не затирать соседние стволы.
func PlaceTree(grid *Grid, base vec.Vec3, woodType string, height int) {
	logName := woodType + "_log"
	leavesName := woodType + "_leaves"

	for i := 0; i < height; i++ {
		_ = grid.SetBlock(base.Add(vec.Vec3{Y: i}), logName)
	}

	top := base.Y + height - 1
	for y := top - 2; y <= top+1; y++ {
		radius := 2
		if y >= top {
			radius = 1
		}
		for dx := -radius; dx <= radius; dx++ {
			for dz := -radius; dz <= radius; dz++ {
				// Срезаем углы широкой части кроны
				if radius == 2 && (dx == -2 || dx == 2) && (dz == -2 || dz == 2) {
					continue
				}
				pos := vec.Vec3{X: base.X + dx, Y: y, Z: base.Z + dz}
				if name, err := grid.SampleBlock(pos); err == nil && name != block.Air {
					continue
				}
				_ = grid.SetBlock(pos, leavesName)
			}
		}
	}
}

// positionHash возвращает детерминированный хеш координаты
func positionHash(pos vec.Vec3, seed int64) uint64 {
	h := uint64(seed) ^ 0x9E3779B97F4A7C15
	h ^= uint64(int64(pos.X)) * 0xBF58476D1CE4E5B9
	h ^= uint64(int64(pos.Y)) * 0x94D049BB133111EB
	h ^= uint64(int64(pos.Z)) * 0xD6E8FEB86659FD93
	h ^= h >> 31
	return h
}

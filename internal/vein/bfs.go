package vein

import (
	"github.com/annel0/veinminer/internal/vec"
	"github.com/annel0/veinminer/internal/world"
)

// Stop описывает, почему завершилась фаза обхода
type Stop int

const (
	StopNone      Stop = iota // Фаза не запускалась
	StopExhausted             // Очередь опустела
	StopBlockCap              // Достигнут лимит найденных блоков
	StopQueryCap              // Достигнут лимит запросов к миру
)

// String возвращает строковое представление причины остановки
func (s Stop) String() string {
	switch s {
	case StopNone:
		return "none"
	case StopExhausted:
		return "exhausted"
	case StopBlockCap:
		return "block_cap"
	case StopQueryCap:
		return "query_cap"
	default:
		return "unknown"
	}
}

// heightBand задаёт вертикальный диапазон, вне которого мир не опрашивается
type heightBand struct {
	minY, maxY int
}

func (b *heightBand) contains(y int) bool {
	return b == nil || (y >= b.minY && y <= b.maxY)
}

// lookup запрашивает блок у мира. Любая ошибка означает «блока нет»:
// выгруженные и недопустимые координаты не прерывают обход.
func lookup(sampler world.BlockSampler, pos vec.Vec3) (string, bool) {
	name, err := sampler.SampleBlock(pos)
	if err != nil {
		return "", false
	}
	return name, true
}

// cluster хранит упорядоченное множество найденных координат
type cluster struct {
	order []vec.Vec3
	set   map[vec.Vec3]struct{}
}

func newCluster() *cluster {
	return &cluster{set: make(map[vec.Vec3]struct{})}
}

func (c *cluster) add(pos vec.Vec3) bool {
	if _, exists := c.set[pos]; exists {
		return false
	}
	c.set[pos] = struct{}{}
	c.order = append(c.order, pos)
	return true
}

func (c *cluster) len() int {
	return len(c.order)
}

// phase задаёт параметры одной ограниченной фазы поиска в ширину.
// Несколько вызовов expand с одной фазой разделяют накопитель и
// бюджет запросов.
type phase struct {
	match       func(name string) bool
	maxFound    int         // Лимит размера накопителя
	maxDistance int         // Найденный блок должен быть ближе этого числа шагов от затравки; 0 — без ограничения
	maxQueries  int         // Лимит запросов к миру за всю фазу; 0 — без ограничения
	band        *heightBand // nil — без вертикального ограничения

	found   *cluster
	queries int // Запросов к миру за фазу
	failed  int // Из них завершились ошибкой
	stop    Stop
}

func (p *phase) full() bool {
	return p.found.len() >= p.maxFound
}

func (p *phase) exhausted() bool {
	return p.maxQueries > 0 && p.queries >= p.maxQueries
}

// halted сообщает, что фаза исчерпала один из лимитов
func (p *phase) halted() bool {
	switch {
	case p.full():
		p.stop = StopBlockCap
	case p.exhausted():
		p.stop = StopQueryCap
	default:
		return false
	}
	return true
}

// node описывает элемент очереди с расстоянием от затравки в шагах
type node struct {
	pos  vec.Vec3
	dist int
}

// traversal хранит общее для всего вызова поиска множество посещённых
// координат: ни одна координата не запрашивается дважды.
type traversal struct {
	sampler world.BlockSampler
	visited map[vec.Vec3]struct{}
}

func newTraversal(sampler world.BlockSampler) *traversal {
	return &traversal{
		sampler: sampler,
		visited: make(map[vec.Vec3]struct{}),
	}
}

// visit помечает координату посещённой; false, если уже была посещена
func (t *traversal) visit(pos vec.Vec3) bool {
	if _, seen := t.visited[pos]; seen {
		return false
	}
	t.visited[pos] = struct{}{}
	return true
}

// sample выполняет учтённый в фазе запрос к миру
func (t *traversal) sample(p *phase, pos vec.Vec3) (string, bool) {
	p.queries++
	name, ok := lookup(t.sampler, pos)
	if !ok {
		p.failed++
	}
	return name, ok
}

// expand выполняет поиск в ширину по 26-окрестности от затравки seed.
// Затравка должна быть уже помечена посещённой. Совпавшие соседи
// добавляются в накопитель фазы и в очередь. Обход останавливается,
// когда очередь пуста или исчерпан лимит блоков либо запросов.
func (t *traversal) expand(p *phase, seed vec.Vec3) {
	if p.halted() {
		return
	}

	offsets := vec.Neighbors26()
	queue := []node{{pos: seed}}

	for head := 0; head < len(queue); head++ {
		cur := queue[head]

		// Соседи окажутся на расстоянии cur.dist+1, не расширяем дальше лимита
		if p.maxDistance > 0 && cur.dist+1 >= p.maxDistance {
			continue
		}

		for _, d := range offsets {
			if p.halted() {
				return
			}

			pos := cur.pos.Add(d)
			if !p.band.contains(pos.Y) {
				continue
			}
			if !t.visit(pos) {
				continue
			}

			name, ok := t.sample(p, pos)
			if !ok || !p.match(name) {
				continue
			}

			p.found.add(pos)
			queue = append(queue, node{pos: pos, dist: cur.dist + 1})
		}
	}

	if !p.halted() && p.stop == StopNone {
		p.stop = StopExhausted
	}
}

// seed помечает начальную координату посещённой и опрашивает её.
// Совпавшая затравка становится первым найденным блоком фазы.
func (t *traversal) seed(p *phase, origin vec.Vec3) {
	t.visit(origin)
	if name, ok := t.sample(p, origin); ok && p.match(name) {
		p.found.add(origin)
	}
}

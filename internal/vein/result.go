package vein

import (
	"time"

	"github.com/annel0/veinminer/internal/vec"
)

// Kind определяет тип кластера
type Kind int

const (
	KindOre Kind = iota // Рудная жила
	KindLog             // Дерево (брёвна и, возможно, листва)
)

// String возвращает строковое представление типа кластера
func (k Kind) String() string {
	switch k {
	case KindOre:
		return "ore"
	case KindLog:
		return "log"
	default:
		return "unknown"
	}
}

// State описывает состояние движка поиска
type State int

const (
	StateIdle           State = iota // Нет незавершённого результата
	StateSearching                   // Выполняется поиск
	StateResultsPending              // Найден кластер, блоки ещё не разобраны
)

// String возвращает строковое представление состояния
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSearching:
		return "searching"
	case StateResultsPending:
		return "results_pending"
	default:
		return "unknown"
	}
}

// Stats содержит статистику одного вызова поиска
type Stats struct {
	Queries  int           // Всего запросов к миру
	Failed   int           // Запросов, завершившихся ошибкой
	Stop     Stop          // Причина остановки основной фазы (руда или брёвна)
	Duration time.Duration // Время выполнения поиска

	// Только для деревьев
	TreeChecked  bool // Проверка правдоподобности выполнялась
	Plausible    bool // Дерево признано правдоподобным
	LeavesNearby bool // Рядом найдена листва нужной породы
	Logs         int  // Найдено брёвен
	Leaves       int  // Найдено листвы
	LeafStop     Stop // Причина остановки фазы листвы
}

// Result содержит неизменяемый результат одного поиска
type Result struct {
	ID           string     // Идентификатор поиска (UUID)
	Kind         Kind       // Тип кластера
	ResourceType string     // Нормализованный тип ресурса
	Origin       vec.Vec3   // Начало поиска
	Blocks       []vec.Vec3 // Найденные блоки в порядке обнаружения
	Targets      []vec.Vec3 // Точки притяжения предметов без повторов, начало всегда первое
	Stats        Stats
}

// Empty сообщает, что кластер не найден
func (r Result) Empty() bool {
	return len(r.Blocks) == 0
}

// Contains проверяет, входит ли блок в кластер
func (r Result) Contains(pos vec.Vec3) bool {
	for _, p := range r.Blocks {
		if p == pos {
			return true
		}
	}
	return false
}

// clone возвращает копию с независимыми срезами
func (r Result) clone() Result {
	r.Blocks = append([]vec.Vec3(nil), r.Blocks...)
	r.Targets = append([]vec.Vec3(nil), r.Targets...)
	return r
}

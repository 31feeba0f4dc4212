package vein

import (
	"context"
	"errors"
	"time"

	"github.com/annel0/veinminer/internal/logging"
	"github.com/annel0/veinminer/internal/vec"
	"github.com/annel0/veinminer/internal/world"
	"github.com/annel0/veinminer/internal/world/block"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Лимиты обхода. Это политика ядра, вызывающий их не настраивает.
const (
	MaxOreBlocks           = 128  // Лимит рудной жилы
	MaxLogBlocks           = 64   // Лимит брёвен одного дерева
	MaxLeafBlocks          = 512  // Лимит листвы за всю фазу
	MaxLeafQueries         = 1000 // Лимит запросов за всю фазу листвы
	DefaultMaxLeafDistance = 8    // Дальность поиска листвы от бревна по умолчанию
	leafBandMinY           = -64
	leafBandMaxY           = 364
	tracerName             = "github.com/annel0/veinminer/internal/vein"
)

// ErrSearchInProgress возвращается при попытке начать поиск во время другого поиска
var ErrSearchInProgress = errors.New("vein: search already in progress")

// LogOptions содержит параметры поиска дерева
type LogOptions struct {
	IncludeLeaves   bool // Добавлять листву к брёвнам
	MaxLeafDistance int  // Дальность поиска листвы в шагах; <= 0 — DefaultMaxLeafDistance
}

// Observer получает каждый завершённый результат поиска
type Observer interface {
	SearchCompleted(res Result)
}

// Option настраивает Engine
type Option func(*Engine)

// WithObserver добавляет наблюдателя завершённых поисков
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, o)
	}
}

// WithTracer задаёт трассировщик OpenTelemetry. По умолчанию используется
// глобальный провайдер.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

// Engine ищет кластеры блоков и хранит разбираемое оболочкой состояние:
// список блоков на удаление, точки притяжения предметов, перемещённые
// сущности и счётчик темпа. Методы Engine не безопасны для конкурентного
// использования: движком владеет одна оболочка.
type Engine struct {
	state  State
	result Result

	pending   []vec.Vec3
	targets   []vec.Vec3
	relocated map[uint64]struct{}
	pacing    int

	observers []Observer
	tracer    trace.Tracer
}

// NewEngine создаёт движок в состоянии StateIdle
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		relocated: make(map[uint64]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer(tracerName)
	}
	return e
}

// SearchOre ищет рудную жилу типа oreType от origin. Тип должен быть уже
// нормализован (block.NormalizeOreType).
func (e *Engine) SearchOre(ctx context.Context, sampler world.BlockSampler, origin vec.Vec3, oreType string) (Result, error) {
	if err := e.begin(origin); err != nil {
		return Result{}, err
	}
	defer e.abort()

	_, span := e.tracer.Start(ctx, "vein.SearchOre", trace.WithAttributes(
		attribute.String("vein.ore_type", oreType),
		attribute.Int("vein.origin.y", origin.Y),
	))
	defer span.End()

	started := time.Now()
	t := newTraversal(sampler)
	p := &phase{
		match:    func(name string) bool { return block.MatchesOre(name, oreType) },
		maxFound: MaxOreBlocks,
		found:    newCluster(),
	}
	t.seed(p, origin)
	t.expand(p, origin)

	res := Result{
		Kind:         KindOre,
		ResourceType: oreType,
		Origin:       origin,
		Blocks:       p.found.order,
		Stats: Stats{
			Queries:  p.queries,
			Failed:   p.failed,
			Stop:     p.stop,
			Duration: time.Since(started),
		},
	}
	res = e.complete(res)

	span.SetAttributes(
		attribute.Int("vein.blocks", len(res.Blocks)),
		attribute.Int("vein.queries", res.Stats.Queries),
		attribute.String("vein.stop", res.Stats.Stop.String()),
	)
	logging.Debug("⛏️ Жила %s от %v: %d блоков, %d запросов (%s)",
		oreType, origin, len(res.Blocks), res.Stats.Queries, res.Stats.Stop)
	return res, nil
}

// SearchLogs ищет дерево породы woodType от origin. Сначала проверяется
// правдоподобность дерева, затем собираются брёвна и, если нужно, листва.
func (e *Engine) SearchLogs(ctx context.Context, sampler world.BlockSampler, origin vec.Vec3, woodType string, opts LogOptions) (Result, error) {
	if err := e.begin(origin); err != nil {
		return Result{}, err
	}
	defer e.abort()

	if opts.MaxLeafDistance <= 0 {
		opts.MaxLeafDistance = DefaultMaxLeafDistance
	}

	_, span := e.tracer.Start(ctx, "vein.SearchLogs", trace.WithAttributes(
		attribute.String("vein.wood_type", woodType),
		attribute.Int("vein.origin.y", origin.Y),
		attribute.Bool("vein.include_leaves", opts.IncludeLeaves),
		attribute.Int("vein.max_leaf_distance", opts.MaxLeafDistance),
	))
	defer span.End()

	started := time.Now()
	t := newTraversal(sampler)
	check := checkTree(t, origin, woodType)

	res := Result{
		Kind:         KindLog,
		ResourceType: woodType,
		Origin:       origin,
		Stats: Stats{
			Queries:      check.queries,
			Failed:       check.failed,
			TreeChecked:  true,
			Plausible:    check.plausible,
			LeavesNearby: check.leavesNearby,
		},
	}

	if check.plausible {
		logs := &phase{
			match:    func(name string) bool { return block.MatchesLogOrWood(name, woodType) },
			maxFound: MaxLogBlocks,
			found:    newCluster(),
		}
		t.seed(logs, origin)
		t.expand(logs, origin)

		res.Blocks = logs.found.order
		res.Stats.Queries += logs.queries
		res.Stats.Failed += logs.failed
		res.Stats.Stop = logs.stop
		res.Stats.Logs = logs.found.len()

		if opts.IncludeLeaves && logs.found.len() > 0 {
			leaves := e.searchLeaves(sampler, logs.found, woodType, opts.MaxLeafDistance)
			res.Blocks = append(res.Blocks, leaves.found.order...)
			res.Stats.Queries += leaves.queries
			res.Stats.Failed += leaves.failed
			res.Stats.Leaves = leaves.found.len()
			res.Stats.LeafStop = leaves.stop
		}
	}

	res.Stats.Duration = time.Since(started)
	res = e.complete(res)

	span.SetAttributes(
		attribute.Bool("vein.plausible", res.Stats.Plausible),
		attribute.Int("vein.logs", res.Stats.Logs),
		attribute.Int("vein.leaves", res.Stats.Leaves),
		attribute.Int("vein.queries", res.Stats.Queries),
	)
	logging.Debug("🌳 Дерево %s от %v: правдоподобно=%t, брёвен %d, листвы %d, %d запросов",
		woodType, origin, res.Stats.Plausible, res.Stats.Logs, res.Stats.Leaves, res.Stats.Queries)
	return res, nil
}

// searchLeaves запускает поиск листвы от каждого бревна в порядке их
// обнаружения. Все запуски разделяют множество посещённых координат,
// накопитель и бюджет запросов, поэтому поздние брёвна могут остаться
// без листвы, если ранние исчерпали бюджет. Брёвна заранее помечены
// посещёнными, и обход листвы через них не проходит.
func (e *Engine) searchLeaves(sampler world.BlockSampler, logs *cluster, woodType string, maxDistance int) *phase {
	t := newTraversal(sampler)
	for _, pos := range logs.order {
		t.visit(pos)
	}

	p := &phase{
		match:       func(name string) bool { return block.MatchesLeaves(name, woodType) },
		maxFound:    MaxLeafBlocks,
		maxDistance: maxDistance,
		maxQueries:  MaxLeafQueries,
		band:        &heightBand{minY: leafBandMinY, maxY: leafBandMaxY},
		found:       newCluster(),
	}
	for _, pos := range logs.order {
		if p.halted() {
			break
		}
		t.expand(p, pos)
	}
	return p
}

// begin сбрасывает состояние перед новым поиском
func (e *Engine) begin(origin vec.Vec3) error {
	if e.state == StateSearching {
		return ErrSearchInProgress
	}

	e.state = StateSearching
	e.result = Result{}
	e.pending = nil
	e.targets = []vec.Vec3{origin}
	e.relocated = make(map[uint64]struct{})
	e.pacing = 0
	return nil
}

// abort возвращает движок в Idle, если поиск прервался до complete
// (например, сэмплер запаниковал)
func (e *Engine) abort() {
	if e.state != StateSearching {
		return
	}
	e.state = StateIdle
	e.pending = nil
}

// complete фиксирует результат и переводит движок в следующее состояние
func (e *Engine) complete(res Result) Result {
	res.ID = uuid.NewString()
	if res.Blocks == nil {
		res.Blocks = []vec.Vec3{}
	}

	e.pending = append([]vec.Vec3(nil), res.Blocks...)
	for _, pos := range res.Blocks {
		if pos == res.Origin {
			continue
		}
		e.targets = append(e.targets, pos)
	}
	res.Targets = append([]vec.Vec3(nil), e.targets...)
	e.result = res

	if len(e.pending) > 0 {
		e.state = StateResultsPending
	} else {
		e.state = StateIdle
	}

	for _, o := range e.observers {
		o.SearchCompleted(res.clone())
	}
	return res.clone()
}

// State возвращает текущее состояние движка
func (e *Engine) State() State {
	return e.state
}

// InProgress сообщает, что выполняется поиск
func (e *Engine) InProgress() bool {
	return e.state == StateSearching
}

// Active сообщает, что найденный кластер ещё не разобран
func (e *Engine) Active() bool {
	return e.state == StateResultsPending
}

// Result возвращает копию последнего результата поиска
func (e *Engine) Result() Result {
	return e.result.clone()
}

// Pending возвращает ещё не удалённые блоки в порядке обнаружения
func (e *Engine) Pending() []vec.Vec3 {
	return append([]vec.Vec3(nil), e.pending...)
}

// PendingCount возвращает число неразобранных блоков
func (e *Engine) PendingCount() int {
	return len(e.pending)
}

// Take убирает блок из списка на удаление. Когда список пустеет,
// движок возвращается в StateIdle.
func (e *Engine) Take(pos vec.Vec3) bool {
	for i, p := range e.pending {
		if p != pos {
			continue
		}
		e.pending = append(e.pending[:i], e.pending[i+1:]...)
		if len(e.pending) == 0 && e.state == StateResultsPending {
			e.state = StateIdle
		}
		return true
	}
	return false
}

// Targets возвращает точки притяжения предметов без повторов; начало поиска
// всегда первое, даже если оно само вошло в кластер
func (e *Engine) Targets() []vec.Vec3 {
	return append([]vec.Vec3(nil), e.targets...)
}

// MarkRelocated запоминает перемещённую сущность
func (e *Engine) MarkRelocated(id uint64) {
	e.relocated[id] = struct{}{}
}

// IsRelocated сообщает, перемещалась ли сущность после последнего поиска
func (e *Engine) IsRelocated(id uint64) bool {
	_, ok := e.relocated[id]
	return ok
}

// Pacing возвращает счётчик тиков до удаления следующего блока
func (e *Engine) Pacing() int {
	return e.pacing
}

// SetPacing устанавливает счётчик темпа
func (e *Engine) SetPacing(ticks int) {
	if ticks < 0 {
		ticks = 0
	}
	e.pacing = ticks
}

// TickPacing уменьшает счётчик темпа. Возвращает true, если счётчик был
// положительным и тик нужно пропустить.
func (e *Engine) TickPacing() bool {
	if e.pacing <= 0 {
		return false
	}
	e.pacing--
	return true
}

// Finish сбрасывает точки притяжения и перемещённые сущности после
// окончания добычи. Незавершённый поиск и неразобранный кластер не трогаются.
func (e *Engine) Finish() {
	if e.state != StateIdle {
		return
	}
	e.targets = nil
	e.relocated = make(map[uint64]struct{})
}

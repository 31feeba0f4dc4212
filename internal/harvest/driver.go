package harvest

import (
	"context"
	"fmt"
	"sync"

	"github.com/annel0/veinminer/internal/config"
	"github.com/annel0/veinminer/internal/eventbus"
	"github.com/annel0/veinminer/internal/logging"
	"github.com/annel0/veinminer/internal/vec"
	"github.com/annel0/veinminer/internal/vein"
	"github.com/annel0/veinminer/internal/world"
	"github.com/annel0/veinminer/internal/world/block"
)

// Тайминги исполнителя в тиках
const (
	ItemCheckInterval = 2  // Период переноса выпавших предметов
	ProximityRadius   = 3  // Радиус (по каждой оси) вокруг точки притяжения
	PostMiningDelay   = 60 // Сколько ещё собирать предметы после разбора кластера
	BreakPacing       = 1  // Пропуск тиков между разрушениями
)

// Recorder учитывает действия исполнителя. *metrics.Collector удовлетворяет
// этому интерфейсу.
type Recorder interface {
	BlockRemoved()
	EntityRelocated(kind string)
	HarvestFinished()
}

type noopRecorder struct{}

func (noopRecorder) BlockRemoved()          {}
func (noopRecorder) EntityRelocated(string) {}
func (noopRecorder) HarvestFinished()       {}

// Option настраивает Driver
type Option func(*Driver)

// WithEventBus задаёт шину событий. По умолчанию события уходят в
// глобальную шину eventbus.Publish.
func WithEventBus(bus eventbus.EventBus) Option {
	return func(d *Driver) {
		d.bus = bus
	}
}

// WithRecorder задаёт учёт действий (метрики)
func WithRecorder(r Recorder) Option {
	return func(d *Driver) {
		if r != nil {
			d.recorder = r
		}
	}
}

// Driver разбирает найденные движком кластеры по одному блоку за тик и
// собирает выпавшие предметы к игроку или к первому блоку.
type Driver struct {
	mu sync.Mutex

	host     Host
	engine   *vein.Engine
	cfg      config.HarvestConfig
	bus      eventbus.EventBus
	recorder Recorder

	anchor    vec.Vec3Float // Центр последнего разрушенного игроком блока
	ticks     uint64
	postDelay int
	searchID  string
	removed   int
	relocated int
}

// NewDriver создаёт исполнитель поверх хоста и движка
func NewDriver(host Host, engine *vein.Engine, cfg config.HarvestConfig, opts ...Option) *Driver {
	d := &Driver{
		host:     host,
		engine:   engine,
		cfg:      cfg,
		recorder: noopRecorder{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// OnBreakBlock реагирует на разрушение блока игроком: для руды или бревна
// запускает поиск кластера. Возвращает результат и true, если поиск
// выполнялся. Пока идёт поиск или кластер не разобран, новые разрушения
// игнорируются.
func (d *Driver) OnBreakBlock(ctx context.Context, pos vec.Vec3) (vein.Result, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.onBreakBlock(ctx, pos)
}

func (d *Driver) onBreakBlock(ctx context.Context, pos vec.Vec3) (vein.Result, bool, error) {
	if d.engine.InProgress() || d.engine.Active() {
		return vein.Result{}, false, nil
	}

	name, err := d.host.SampleBlock(pos)
	if err != nil {
		return vein.Result{}, false, fmt.Errorf("read block %v: %w", pos, err)
	}
	d.anchor = pos.Center()

	var res vein.Result
	switch {
	case d.cfg.EnableOre && block.IsOre(name):
		res, err = d.engine.SearchOre(ctx, d.host, pos, block.NormalizeOreType(name))
		if err != nil {
			return vein.Result{}, false, err
		}
		if !d.engine.Active() && len(d.engine.Targets()) > 0 {
			d.postDelay = PostMiningDelay
		}
	case d.cfg.EnableTree && block.IsLogOrStem(name):
		res, err = d.engine.SearchLogs(ctx, d.host, pos, block.NormalizeWoodType(name), vein.LogOptions{
			IncludeLeaves:   d.cfg.BreakLeaves,
			MaxLeafDistance: d.cfg.MaxLeafDistance,
		})
		if err != nil {
			return vein.Result{}, false, err
		}
	default:
		return vein.Result{}, false, nil
	}

	d.searchID = res.ID
	d.removed = 0
	d.relocated = 0
	logging.Info("🔎 %s %s от %v: %d блоков", res.Kind, res.ResourceType, pos, len(res.Blocks))

	d.publish(ctx, eventbus.EventClusterFound, eventbus.ClusterFound{
		SearchID:     res.ID,
		Kind:         res.Kind.String(),
		ResourceType: res.ResourceType,
		Origin:       res.Origin,
		Blocks:       len(res.Blocks),
		Logs:         res.Stats.Logs,
		Leaves:       res.Stats.Leaves,
		Queries:      res.Stats.Queries,
		Stop:         res.Stats.Stop.String(),
		Plausible:    res.Stats.Plausible,
	})
	return res, true, nil
}

// BreakBlock имитирует разрушение блока игроком: сначала срабатывает
// OnBreakBlock, затем блок убирается из мира и из списка на удаление.
func (d *Driver) BreakBlock(ctx context.Context, pos vec.Vec3) (vein.Result, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	res, started, err := d.onBreakBlock(ctx, pos)
	if err != nil {
		return res, started, err
	}

	name, err := d.host.RemoveBlock(pos)
	if err != nil {
		return res, started, fmt.Errorf("break block %v: %w", pos, err)
	}
	if d.engine.Take(pos) {
		d.blockRemoved(ctx, pos, name)
		if !d.engine.Active() {
			d.postDelay = PostMiningDelay
		}
	}
	return res, started, nil
}

// Tick выполняет один игровой тик: перенос предметов, разрушение
// следующего блока кластера и отсчёт задержки после добычи.
func (d *Driver) Tick(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.ticks++
	if d.ticks%ItemCheckInterval == 0 && d.collecting() {
		d.relocateDrops(ctx)
	}

	if d.engine.Active() {
		d.mineNext(ctx)
		return
	}

	if d.postDelay > 0 {
		d.postDelay--
		if d.postDelay == 0 {
			d.finish(ctx)
		}
	}
}

// Busy сообщает, что исполнитель ещё разбирает кластер или собирает предметы
func (d *Driver) Busy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.engine.Active() || d.postDelay > 0
}

// PostDelay возвращает оставшиеся тики задержки после добычи
func (d *Driver) PostDelay() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.postDelay
}

// Counters возвращает число разрушенных блоков и перенесённых сущностей
// с начала текущей добычи
func (d *Driver) Counters() (removed, relocated int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.removed, d.relocated
}

func (d *Driver) collecting() bool {
	if d.cfg.TeleportMode == config.TeleportNone {
		return false
	}
	if !d.engine.Active() && d.postDelay == 0 {
		return false
	}
	return len(d.engine.Targets()) > 0
}

// relocateDrops переносит выпавшие рядом с кластером предметы и опыт
func (d *Driver) relocateDrops(ctx context.Context) {
	dest := d.anchor
	if d.cfg.TeleportMode == config.TeleportPlayer {
		dest = d.host.PlayerPosition()
	}
	dest = dest.Add(vec.Vec3Float{Y: 1})

	targets := d.engine.Targets()
	for _, e := range d.host.Entities() {
		if e.Kind != world.EntityKindItem && e.Kind != world.EntityKindXP {
			continue
		}
		if d.engine.IsRelocated(e.ID) || !nearAny(e.Position.Floor(), targets) {
			continue
		}

		if err := d.host.MoveEntity(e.ID, dest); err != nil {
			logging.Warn("Не удалось перенести сущность %d: %v", e.ID, err)
			continue
		}
		d.engine.MarkRelocated(e.ID)
		d.relocated++
		d.recorder.EntityRelocated(e.Kind)
		d.publish(ctx, eventbus.EventEntityRelocated, eventbus.EntityRelocated{
			SearchID: d.searchID,
			EntityID: e.ID,
			Kind:     e.Kind,
			Item:     e.Item,
			From:     e.Position,
			To:       dest,
		})
	}
}

func nearAny(pos vec.Vec3, targets []vec.Vec3) bool {
	for _, t := range targets {
		if pos.WithinBox(t, ProximityRadius) {
			return true
		}
	}
	return false
}

// mineNext разрушает ближайший к игроку блок из списка на удаление
func (d *Driver) mineNext(ctx context.Context) {
	if d.engine.TickPacing() {
		return
	}

	player := d.host.PlayerPosition().Floor()
	pending := d.engine.Pending()
	next := pending[0]
	best := next.DistanceSq(player)
	for _, pos := range pending[1:] {
		if dist := pos.DistanceSq(player); dist < best {
			next, best = pos, dist
		}
	}

	name, err := d.host.RemoveBlock(next)
	if err != nil {
		logging.Warn("Не удалось разрушить блок %v: %v", next, err)
	}
	d.engine.Take(next)
	d.engine.SetPacing(BreakPacing)
	if err == nil {
		d.blockRemoved(ctx, next, name)
	}
	if !d.engine.Active() {
		d.postDelay = PostMiningDelay
	}
}

func (d *Driver) blockRemoved(ctx context.Context, pos vec.Vec3, name string) {
	d.removed++
	d.recorder.BlockRemoved()
	d.publish(ctx, eventbus.EventBlockRemoved, eventbus.BlockRemoved{
		SearchID:  d.searchID,
		Pos:       pos,
		Block:     name,
		Remaining: d.engine.PendingCount(),
	})
}

func (d *Driver) finish(ctx context.Context) {
	d.engine.Finish()
	d.recorder.HarvestFinished()
	logging.Info("✅ Добыча завершена: блоков %d, предметов %d", d.removed, d.relocated)
	d.publish(ctx, eventbus.EventHarvestFinished, eventbus.HarvestFinished{
		SearchID:  d.searchID,
		Removed:   d.removed,
		Relocated: d.relocated,
	})
}

func (d *Driver) publish(ctx context.Context, eventType string, payload interface{}) {
	ev, err := eventbus.NewEnvelope(eventbus.SourceHarvest, eventType, d.searchID, payload)
	if err != nil {
		logging.Error("Событие %s: %v", eventType, err)
		return
	}

	if d.bus != nil {
		err = d.bus.Publish(ctx, ev)
	} else {
		err = eventbus.Publish(ctx, ev)
	}
	if err != nil {
		logging.Warn("Не удалось опубликовать %s: %v", eventType, err)
	}
}

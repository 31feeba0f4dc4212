package metrics

import (
	"github.com/annel0/veinminer/internal/vein"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "veinminer"

// Collector собирает метрики поиска и добычи. Реализует vein.Observer
// и интерфейс записи метрик исполнителя добычи.
//
// Метрики:
// * veinminer_searches_total{kind,stop} — counter
// * veinminer_search_blocks{kind} — histogram размеров кластеров
// * veinminer_search_queries{kind} — histogram запросов к миру
// * veinminer_search_failed_queries_total{kind} — counter
// * veinminer_search_duration_seconds{kind} — histogram
// * veinminer_implausible_trees_total — counter
// * veinminer_blocks_removed_total — counter
// * veinminer_entities_relocated_total{kind} — counter
// * veinminer_harvests_finished_total — counter
type Collector struct {
	searches    *prometheus.CounterVec
	blocks      *prometheus.HistogramVec
	queries     *prometheus.HistogramVec
	failed      *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	implausible prometheus.Counter
	removed     prometheus.Counter
	relocated   *prometheus.CounterVec
	finished    prometheus.Counter
}

// NewCollector создаёт метрики и регистрирует их в reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Число поисков кластеров по типу и причине остановки.",
		}, []string{"kind", "stop"}),
		blocks: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_blocks",
			Help:      "Размер найденного кластера.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64, 128, 256, 576},
		}, []string{"kind"}),
		queries: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_queries",
			Help:      "Число запросов к миру за поиск.",
			Buckets:   prometheus.ExponentialBuckets(8, 2, 10),
		}, []string{"kind"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_failed_queries_total",
			Help:      "Запросы к миру, завершившиеся ошибкой (выгруженные или недопустимые координаты).",
		}, []string{"kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Длительность поиска.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"kind"}),
		implausible: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "implausible_trees_total",
			Help:      "Стволы, отвергнутые проверкой правдоподобности дерева.",
		}),
		removed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_removed_total",
			Help:      "Блоки, разрушенные исполнителем добычи.",
		}),
		relocated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_relocated_total",
			Help:      "Перенесённые к точке сбора предметы и сферы опыта.",
		}, []string{"kind"}),
		finished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "harvests_finished_total",
			Help:      "Завершённые циклы добычи.",
		}),
	}

	reg.MustRegister(c.searches, c.blocks, c.queries, c.failed, c.duration,
		c.implausible, c.removed, c.relocated, c.finished)
	return c
}

// SearchCompleted реализует vein.Observer
func (c *Collector) SearchCompleted(res vein.Result) {
	kind := res.Kind.String()

	c.searches.WithLabelValues(kind, res.Stats.Stop.String()).Inc()
	c.blocks.WithLabelValues(kind).Observe(float64(len(res.Blocks)))
	c.queries.WithLabelValues(kind).Observe(float64(res.Stats.Queries))
	c.failed.WithLabelValues(kind).Add(float64(res.Stats.Failed))
	c.duration.WithLabelValues(kind).Observe(res.Stats.Duration.Seconds())

	if res.Stats.TreeChecked && !res.Stats.Plausible {
		c.implausible.Inc()
	}
}

// BlockRemoved учитывает разрушенный блок
func (c *Collector) BlockRemoved() {
	c.removed.Inc()
}

// EntityRelocated учитывает перенесённую сущность
func (c *Collector) EntityRelocated(kind string) {
	c.relocated.WithLabelValues(kind).Inc()
}

// HarvestFinished учитывает завершённый цикл добычи
func (c *Collector) HarvestFinished() {
	c.finished.Inc()
}

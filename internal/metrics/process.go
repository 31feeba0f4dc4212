package metrics

import (
	"os"
	"runtime"
	"time"

	"github.com/annel0/veinminer/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

// ProcessStats публикует показатели процесса: время работы, CPU, RSS
// и число горутин. Значения читаются при каждом сборе метрик.
type ProcessStats struct {
	StartTime time.Time
	proc      *process.Process
}

// NewProcessStats создаёт сборщик показателей текущего процесса
func NewProcessStats() (*ProcessStats, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &ProcessStats{StartTime: time.Now(), proc: proc}, nil
}

// Uptime возвращает время работы процесса
func (ps *ProcessStats) Uptime() time.Duration {
	return time.Since(ps.StartTime)
}

// CPUPercent возвращает использование CPU процессом в процентах.
// Если метрика процесса недоступна, возвращается системная.
func (ps *ProcessStats) CPUPercent() (float64, error) {
	cpuPercent, err := ps.proc.CPUPercent()
	if err != nil {
		cpuPercents, err := cpu.Percent(100*time.Millisecond, false)
		if err != nil || len(cpuPercents) == 0 {
			return 0, err
		}
		return cpuPercents[0], nil
	}
	return cpuPercent, nil
}

// RSSBytes возвращает резидентную память процесса
func (ps *ProcessStats) RSSBytes() (uint64, error) {
	mem, err := ps.proc.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return mem.RSS, nil
}

// Register регистрирует показатели как GaugeFunc в reg
func (ps *ProcessStats) Register(reg prometheus.Registerer) error {
	gauges := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Время работы процесса.",
		}, func() float64 {
			return ps.Uptime().Seconds()
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cpu_percent",
			Help:      "Использование CPU процессом в процентах.",
		}, func() float64 {
			v, err := ps.CPUPercent()
			if err != nil {
				logging.Warn("cpu_percent: %v", err)
			}
			return v
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rss_bytes",
			Help:      "Резидентная память процесса.",
		}, func() float64 {
			v, err := ps.RSSBytes()
			if err != nil {
				logging.Warn("rss_bytes: %v", err)
			}
			return float64(v)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "goroutines",
			Help:      "Число горутин.",
		}, func() float64 {
			return float64(runtime.NumGoroutine())
		}),
	}

	for _, g := range gauges {
		if err := reg.Register(g); err != nil {
			return err
		}
	}
	return nil
}

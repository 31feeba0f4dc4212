package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/veinminer/internal/config"
	"github.com/annel0/veinminer/internal/eventbus"
	"github.com/annel0/veinminer/internal/harvest"
	"github.com/annel0/veinminer/internal/logging"
	"github.com/annel0/veinminer/internal/metrics"
	"github.com/annel0/veinminer/internal/observability"
	"github.com/annel0/veinminer/internal/storage"
	"github.com/annel0/veinminer/internal/vec"
	"github.com/annel0/veinminer/internal/vein"
	"github.com/annel0/veinminer/internal/world"
	"github.com/annel0/veinminer/internal/world/block"
	"github.com/prometheus/client_golang/prometheus"
)

// options содержит параметры командной строки поверх конфигурации
type options struct {
	configPath  string
	seed        int64
	pos         vec.Vec3
	posSet      bool
	maxTicks    int
	natsURL     string
	metricsAddr string
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "путь к YAML конфигурации (или VEIN_CONFIG)")
	flag.Int64Var(&opts.seed, "seed", 0, "сид мира (0 — из конфигурации)")
	flag.IntVar(&opts.pos.X, "x", 0, "X разрушаемого блока")
	flag.IntVar(&opts.pos.Y, "y", 0, "Y разрушаемого блока")
	flag.IntVar(&opts.pos.Z, "z", 0, "Z разрушаемого блока")
	flag.IntVar(&opts.maxTicks, "ticks", 2000, "максимум игровых тиков")
	flag.StringVar(&opts.natsURL, "nats", "", "URL NATS JetStream (пусто — шина в памяти)")
	flag.StringVar(&opts.metricsAddr, "metrics", "", "адрес /metrics, например :2112")
	flag.Parse()

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "x", "y", "z":
			opts.posSet = true
		}
	})
	return opts
}

func main() {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	if opts.seed != 0 {
		cfg.World.Seed = opts.seed
	}
	if opts.natsURL != "" {
		cfg.EventBus.URL = opts.natsURL
	}

	level, levelErr := logging.ParseLevel(cfg.Logging.Level)
	logger, err := logging.NewLogger("veinminer")
	if err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	logger.SetConsoleLevel(level)
	logging.SetDefaultLogger(logger)
	defer logging.CloseDefaultLogger()
	logging.GetLoggerManager().SetLevels(level, logging.TRACE)
	defer logging.GetLoggerManager().CloseAll()

	if levelErr != nil {
		logging.Warn("%v, используется INFO", levelErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts); err != nil {
		logging.Error("❌ %v", err)
		logging.GetLoggerManager().CloseAll()
		logging.CloseDefaultLogger()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options) error {
	// === ТЕЛЕМЕТРИЯ ===
	shutdownTracing := observability.ShutdownFunc(observability.Noop)
	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, cfg.Telemetry.ServiceName)
		if err != nil {
			logging.Warn("OpenTelemetry отключена: %v", err)
		} else {
			shutdownTracing = shutdown
		}
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logging.Warn("Остановка трассировки: %v", err)
		}
	}()

	// === МЕТРИКИ ===
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	if ps, err := metrics.NewProcessStats(); err != nil {
		logging.Warn("Метрики процесса недоступны: %v", err)
	} else if err := ps.Register(reg); err != nil {
		logging.Warn("Регистрация метрик процесса: %v", err)
	}

	metricsAddr := opts.metricsAddr
	if metricsAddr == "" && cfg.Metrics.Enabled {
		metricsAddr = fmt.Sprintf(":%d", cfg.Metrics.GetMetricsPort())
	}
	if metricsAddr != "" {
		srv := metrics.StartServer(metricsAddr, reg)
		defer srv.Shutdown(context.Background())
	}

	// === ШИНА СОБЫТИЙ ===
	bus, err := newEventBus(cfg.EventBus)
	if err != nil {
		return err
	}
	defer bus.Close()
	eventbus.Init(bus)
	defer eventbus.Init(nil)

	if _, err := eventbus.StartLoggingListener(bus); err != nil {
		logging.Warn("LoggingListener: %v", err)
	}
	exporter := eventbus.NewMetricsExporter(bus, reg)
	exporter.Start(time.Second)
	defer exporter.Stop()

	// === МИР ===
	grid := world.NewGrid(cfg.World.MinY, cfg.World.MaxY)
	var store *storage.SectionStore
	if cfg.World.DataPath != "" {
		store, err = storage.NewSectionStore(cfg.World.DataPath, logging.GetStorageLogger())
		if err != nil {
			return err
		}
		defer store.Close()

		loaded, err := store.LoadInto(grid)
		if err != nil {
			return fmt.Errorf("загрузка мира: %w", err)
		}
		logging.Info("💾 Загружено секций из %s: %d", store.Path(), loaded)
	}

	if len(grid.Sections()) == 0 {
		r := cfg.World.Radius
		started := time.Now()
		stats := world.NewGenerator(cfg.World.Seed).Generate(grid, vec.Vec2{X: -r, Y: -r}, vec.Vec2{X: r, Y: r})
		logging.Info("🌍 Мир сгенерирован за %v: колонок %d, руды %d, деревьев %d",
			time.Since(started).Round(time.Millisecond), stats.Columns, stats.Ores, stats.Trees)
	}

	target := opts.pos
	if !opts.posSet {
		ores := grid.Find(block.IsOre)
		if len(ores) == 0 {
			return fmt.Errorf("в мире нет руды, укажите блок через -x -y -z")
		}
		target = ores[0]
	}

	player := harvest.NewWorldHost(grid, target.Center())
	var host harvest.Host = player
	if cfg.Redis.Addr != "" {
		rs, err := newRedisSampler(ctx, cfg, grid)
		if err != nil {
			logging.Warn("Зеркало Redis отключено: %v", err)
		} else {
			defer rs.Close()
			host = &mirroredHost{WorldHost: player, redis: rs}
		}
	}

	// === ДОБЫЧА ===
	engine := vein.NewEngine(vein.WithObserver(collector))
	driver := harvest.NewDriver(host, engine, cfg.Harvest, harvest.WithEventBus(bus), harvest.WithRecorder(collector))

	name, _ := grid.SampleBlock(target)
	logging.Info("⛏️ Разрушение %s в %v", name, target)

	res, started, err := driver.BreakBlock(ctx, target)
	if err != nil {
		return err
	}
	if !started {
		logging.Info("Блок %s не запускает поиск", name)
	}

	ticks := 0
	for ticks < opts.maxTicks && driver.Busy() {
		if ctx.Err() != nil {
			logging.Info("📡 Прервано после %d тиков", ticks)
			break
		}
		driver.Tick(ctx)
		ticks++
	}

	if store != nil {
		saved, err := store.SaveGrid(grid)
		if err != nil {
			return fmt.Errorf("сохранение мира: %w", err)
		}
		logging.Info("💾 Сохранено секций: %d", saved)
	}

	removed, relocated := driver.Counters()
	printSummary(res, started, ticks, removed, relocated)
	return nil
}

func newEventBus(cfg config.EventBusConfig) (eventbus.EventBus, error) {
	if cfg.URL == "" {
		return eventbus.NewMemoryBus(1024), nil
	}
	bus, err := eventbus.NewJetStreamBus(cfg.URL, cfg.Stream, time.Duration(cfg.Retention)*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("шина событий: %w", err)
	}
	return bus, nil
}

func newRedisSampler(ctx context.Context, cfg *config.Config, grid *world.Grid) (*storage.RedisSampler, error) {
	rc := storage.DefaultRedisConfig()
	rc.Addr = cfg.Redis.Addr
	rc.Password = cfg.Redis.Password
	rc.DB = cfg.Redis.DB
	if cfg.Redis.KeyPrefix != "" {
		rc.KeyPrefix = cfg.Redis.KeyPrefix
	}
	rc.MinY = cfg.World.MinY
	rc.MaxY = cfg.World.MaxY

	rs, err := storage.NewRedisSampler(rc)
	if err != nil {
		return nil, err
	}
	if _, err := rs.Mirror(ctx, grid); err != nil {
		rs.Close()
		return nil, err
	}
	return rs, nil
}

func printSummary(res vein.Result, started bool, ticks, removed, relocated int) {
	if !started {
		fmt.Println("Поиск не запускался")
		return
	}
	fmt.Printf("Кластер %s (%s) от %v\n", res.Kind, res.ResourceType, res.Origin)
	fmt.Printf("  блоков:       %d", len(res.Blocks))
	if res.Kind == vein.KindLog {
		fmt.Printf(" (брёвен %d, листвы %d, правдоподобно %t)", res.Stats.Logs, res.Stats.Leaves, res.Stats.Plausible)
	}
	fmt.Println()
	fmt.Printf("  запросов:     %d (ошибок %d), остановка: %s\n", res.Stats.Queries, res.Stats.Failed, res.Stats.Stop)
	fmt.Printf("  разрушено:    %d за %d тиков\n", removed, ticks)
	fmt.Printf("  перенесено:   %d\n", relocated)
	fmt.Printf("  время поиска: %v\n", res.Stats.Duration)
}

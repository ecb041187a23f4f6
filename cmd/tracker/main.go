package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bluabaleno/premarket-tracker/config"
	"github.com/bluabaleno/premarket-tracker/internal/adapters/cache"
	"github.com/bluabaleno/premarket-tracker/internal/adapters/limitless"
	"github.com/bluabaleno/premarket-tracker/internal/adapters/notify"
	"github.com/bluabaleno/premarket-tracker/internal/adapters/polymarket"
	"github.com/bluabaleno/premarket-tracker/internal/adapters/publish"
	"github.com/bluabaleno/premarket-tracker/internal/adapters/storage"
	"github.com/bluabaleno/premarket-tracker/internal/ports"
	"github.com/bluabaleno/premarket-tracker/internal/tracker"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one tracking cycle and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	budget := flag.Float64("budget", -1, "USDC budget for arbitrage splits (overrides config)")
	compact := flag.Bool("compact", false, "print a compact summary instead of tables")
	cached := flag.Bool("cached", false, "print the last cached cycle summary from Redis and exit")
	history := flag.Int("history", 0, "print the last N stored cycles and exit")
	noStore := flag.Bool("no-store", false, "do not read or write the SQLite history")
	addPositions := flag.String("add-positions", "", "import positions from a JSON file and exit")
	removePosition := flag.String("remove-position", "", "delete the position with this id and exit")
	listLaunches := flag.Bool("launches", false, "print every recorded launch and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *budget >= 0 {
		cfg.Tracker.BudgetUSDC = *budget
	}
	setupLogger(cfg.Log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *cached {
		if err := printCached(ctx, cfg); err != nil {
			slog.Error("cached summary unavailable", "err", err)
			os.Exit(1)
		}
		return
	}

	console := notify.NewConsole(cfg.Tracker.BudgetUSDC, cfg.TableOutput() && !*compact, cfg.Tracker.TopMovers)

	var store ports.Storage
	var db *storage.SQLiteStorage
	if !*noStore {
		db, err = storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer db.Close()
		store = db
	}

	if *addPositions != "" || *removePosition != "" || *listLaunches {
		if db == nil {
			slog.Error("portfolio and launch commands need storage, drop -no-store")
			os.Exit(1)
		}
		if err := runStoreCommand(ctx, db, console, *addPositions, *removePosition, *listLaunches); err != nil {
			slog.Error("command failed", "err", err)
			os.Exit(1)
		}
		return
	}

	if *history > 0 {
		if store == nil {
			slog.Error("-history needs storage, drop -no-store")
			os.Exit(1)
		}
		cycles, err := store.ListCycles(ctx, *history)
		if err != nil {
			slog.Error("failed to list cycles", "err", err)
			os.Exit(1)
		}
		console.PrintHistory(cycles)
		return
	}

	slog.Info("premarket tracker starting",
		"config", *configPath,
		"schedule", cfg.Tracker.Schedule,
		"budget", cfg.Tracker.BudgetUSDC,
		"once", *once,
		"store", store != nil,
	)

	poly := polymarket.NewClient(polymarket.Options{
		GammaBase: cfg.API.GammaBase,
		CLOBBase:  cfg.API.CLOBBase,
		Tag:       cfg.API.PreMarketTag,
		Limit:     cfg.API.PreMarketLimit,
		Timeout:   cfg.Timeout(),
		SkipBooks: cfg.API.SkipBooks,
	})
	lim := limitless.NewClient(limitless.Options{
		Base:       cfg.API.LimitlessBase,
		CategoryID: cfg.API.LimitlessCategoryID,
		Timeout:    cfg.Timeout(),
		SkipBooks:  cfg.API.SkipBooks,
	})

	var opts []tracker.Option
	if cfg.Cache.RedisAddr != "" {
		rc, err := newCache(cfg)
		if err != nil {
			slog.Error("failed to create cache", "err", err)
			os.Exit(1)
		}
		defer rc.Close()
		opts = append(opts, tracker.WithCache(rc))
	}
	if len(cfg.Publish.Brokers) > 0 {
		pub, err := publish.NewKafkaPublisher(cfg.Publish.Brokers, cfg.Publish.Topic, cfg.Tracker.BudgetUSDC)
		if err != nil {
			slog.Error("failed to create publisher", "err", err)
			os.Exit(1)
		}
		defer pub.Close()
		opts = append(opts, tracker.WithPublisher(pub))
	}

	if db != nil {
		opts = append(opts, tracker.WithLaunches(db), tracker.WithPortfolio(db))
	}

	trCfg := tracker.DefaultConfig()
	trCfg.Schedule = cfg.Tracker.Schedule
	trCfg.Thresholds.MinVolume = cfg.Tracker.MinLiquidityVolume

	t := tracker.New(trCfg, poly, lim, store, console, opts...)

	if *once {
		if _, err := t.RunOnce(ctx); err != nil {
			slog.Error("tracking cycle failed", "err", err)
			os.Exit(1)
		}
		return
	}

	if err := t.Run(ctx); err != nil {
		slog.Error("tracker exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("premarket tracker stopped cleanly")
}

// runStoreCommand ejecuta los comandos de portfolio y lanzamientos sin tocar las APIs.
func runStoreCommand(ctx context.Context, db *storage.SQLiteStorage, console *notify.Console,
	addPath, removeID string, listLaunches bool) error {
	if addPath != "" {
		positions, err := positionsFromFile(addPath, time.Now())
		if err != nil {
			return err
		}
		for _, p := range positions {
			if err := db.SavePosition(ctx, p); err != nil {
				return err
			}
			slog.Info("position saved", "id", p.ID, "legs", len(p.Legs))
		}
	}
	if removeID != "" {
		if err := db.DeletePosition(ctx, removeID); err != nil {
			return err
		}
		slog.Info("position removed", "id", removeID)
	}
	if listLaunches {
		launches, err := db.ListLaunches(ctx)
		if err != nil {
			return err
		}
		console.PrintLaunches(launches)
	}
	return nil
}

func newCache(cfg *config.Config) (*cache.RedisReportCache, error) {
	return cache.NewRedisReportCache(cache.Options{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
		TTL:      cfg.CacheTTL(),
	})
}

// printCached imprime el último resumen guardado en Redis sin tocar las APIs.
func printCached(ctx context.Context, cfg *config.Config) error {
	rc, err := newCache(cfg)
	if err != nil {
		return err
	}
	defer rc.Close()

	raw, ok, err := rc.LatestSummary(ctx)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("no cached cycle summary")
		return nil
	}

	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return fmt.Errorf("indent summary: %w", err)
	}
	fmt.Println(out.String())
	return nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"signal-trading-bot/internal/broker/brokerobs"
	"signal-trading-bot/internal/broker/zerodha"
	"signal-trading-bot/internal/engine"
	"signal-trading-bot/internal/engine/engineobs"
	"signal-trading-bot/internal/eod"
	"signal-trading-bot/internal/eod/eodobs"
	"signal-trading-bot/internal/feed"
	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/journal"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/store"
	"signal-trading-bot/internal/trace"
	"signal-trading-bot/internal/tradelog"
)

// initializeSystem loads .env and starts the logger and tracer.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(os.Getenv("SERVICE_NAME")); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs gzips journal files past the retention window.
func compressOldLogs(ctx context.Context, cfg *store.Config, sink *tradelog.FileSink) {
	if cfg.Journal.RetentionDays <= 0 {
		return
	}
	if err := sink.CompressOlder(cfg.Journal.RetentionDays); err != nil {
		logger.Warn(ctx, "Failed to compress old logs", "error", err)
	}
}

func initializeBroker(ctx context.Context, cfg *store.Config) (*zerodha.Zerodha, interfaces.Broker) {
	z := zerodha.NewZerodha(zerodha.Params{
		Mode:        cfg.Mode,
		APIKey:      cfg.APIKey,
		AccessToken: cfg.AccessToken,
		Exchange:    cfg.Exchange,
	})
	if cfg.Mode == "DRY_RUN" {
		logger.Warn(ctx, "Running in DRY_RUN mode - orders will be simulated")
	}
	return z, brokerobs.Wrap(z)
}

// initializeSource picks the tick feed named by cfg.Feed.
func initializeSource(ctx context.Context, cfg *store.Config, z *zerodha.Zerodha) (interfaces.TickSource, func(context.Context), error) {
	switch cfg.Feed {
	case "REPLAY":
		logger.Info(ctx, "Replaying ticks from file", "path", cfg.Replay.Path, "speed", cfg.Replay.Speed)
		return feed.NewReplay(cfg.Replay.Path, cfg.Replay.Speed), func(context.Context) {}, nil
	case "WS":
		logger.Info(ctx, "Streaming ticks from websocket", "url", cfg.WS.URL)
		return feed.NewWebSocket(cfg.WS.URL), func(context.Context) {}, nil
	default:
		tm, err := z.Ticker()
		if err != nil {
			return nil, nil, err
		}
		if err := tm.Subscribe(ctx, cfg.Universe); err != nil {
			return nil, nil, fmt.Errorf("subscribe universe: %w", err)
		}
		logger.Info(ctx, "Streaming ticks from Kite ticker", "symbols", len(cfg.Universe))
		return tm, tm.Stop, nil
	}
}

// initializeJournal always writes the daily file and adds Postgres when a
// DSN is configured.
func initializeJournal(ctx context.Context, cfg *store.Config) (*journal.Journal, *tradelog.FileSink, func()) {
	files := tradelog.NewFileSink(cfg.Journal.Dir)
	sinks := []interfaces.TradeSink{files}
	closeFn := func() {}

	if cfg.Journal.PostgresDSN != "" {
		pg, err := tradelog.NewPgSink(ctx, cfg.Journal.PostgresDSN)
		if err != nil {
			logger.Warn(ctx, "Postgres journal unavailable, using files only", "error", err)
		} else {
			sinks = append(sinks, pg)
			closeFn = pg.Close
			logger.Info(ctx, "Postgres journal enabled")
		}
	}
	return journal.New(sinks...), files, closeFn
}

func initializeEngine(cfg *store.Config, brk interfaces.Broker, j *journal.Journal, signals *tradelog.FileSink) interfaces.Engine {
	return engineobs.Wrap(engine.New(cfg, brk, j, engine.WithSignalLog(signals)))
}

func initializeEOD(files *tradelog.FileSink) interfaces.EodSummarizer {
	return eodobs.Wrap(eod.NewSummarizer(files))
}

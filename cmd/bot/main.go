package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/journal"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/server"
	"signal-trading-bot/internal/store"
	"signal-trading-bot/internal/trace"
	"signal-trading-bot/internal/types"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the yaml config")
	flag.Parse()

	if err := initializeSystem(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(*configPath); err != nil {
		logger.ErrorWithErr(context.Background(), "Bot exited with error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(ctx, configPath)
	if err != nil {
		return err
	}

	j, files, closeJournal := initializeJournal(ctx, cfg)
	defer closeJournal()
	compressOldLogs(ctx, cfg, files)

	z, brk := initializeBroker(ctx, cfg)
	if err := brk.Start(ctx, cfg.Universe); err != nil {
		return fmt.Errorf("start broker: %w", err)
	}

	src, stopSource, err := initializeSource(ctx, cfg, z)
	if err != nil {
		return err
	}

	eng := initializeEngine(cfg, brk, j, files)
	summarizer := initializeEOD(files)

	srv := server.New(cfg.HTTP.Addr, eng, j)
	go func() {
		if err := srv.Run(ctx); err != nil {
			logger.ErrorWithErr(ctx, "HTTP server stopped", err)
		}
	}()

	ticks := make(chan types.Tick, 1024)
	srcDone := make(chan error, 1)
	go func() { srcDone <- src.Run(ctx, ticks) }()

	logger.Info(ctx, "Bot started",
		"mode", cfg.Mode,
		"feed", cfg.Feed,
		"symbols", cfg.Universe,
		"bar_interval", cfg.BarInterval().String(),
	)

	loopErr := loop(ctx, cfg, eng, brk, summarizer, ticks, srcDone)

	shutdown(cfg, eng, brk, stopSource, summarizer, j, ticks)
	return loopErr
}

// loop feeds ticks and broker events into the engine until shutdown.
func loop(ctx context.Context, cfg *store.Config, eng interfaces.Engine, brk interfaces.Broker,
	summarizer interfaces.EodSummarizer, ticks <-chan types.Tick, srcDone <-chan error) error {
	eodTick := time.NewTicker(60 * time.Second)
	defer eodTick.Stop()
	eodDone := ""

	for {
		select {
		case t := <-ticks:
			step(ctx, eng, t)
		case f := <-brk.Fills():
			if err := eng.OnFill(ctx, f); err != nil {
				logger.ErrorWithErr(ctx, "Failed to apply fill", err, "symbol", f.Symbol, "order_id", f.OrderID)
			}
		case r := <-brk.Rejects():
			eng.OnReject(ctx, r.Symbol, r.Reason)
		case <-eodTick.C:
			ok, path := summarizer.ShouldRunNow()
			if !ok || path == eodDone {
				continue
			}
			if _, err := summarizer.SummarizeToday(ctx); err == nil {
				eodDone = path
			}
		case err := <-srcDone:
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("tick source: %w", err)
			}
			logger.Info(ctx, "Tick source finished", "feed", cfg.Feed)
			return nil
		case <-ctx.Done():
			logger.Info(ctx, "Shutting down")
			return nil
		}
	}
}

func step(ctx context.Context, eng interfaces.Engine, t types.Tick) {
	if _, err := eng.OnTick(ctx, t); err != nil && !errors.Is(err, types.ErrUnknownSymbol) {
		logger.Debug(ctx, "Tick rejected", "symbol", t.Symbol, "error", err)
	}
}

func shutdown(cfg *store.Config, eng interfaces.Engine, brk interfaces.Broker, stopSource func(context.Context),
	summarizer interfaces.EodSummarizer, j *journal.Journal, ticks chan types.Tick) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stopSource(ctx)
	// Ticks already buffered from a finished replay still count.
	for drained := false; !drained; {
		select {
		case t := <-ticks:
			step(ctx, eng, t)
		default:
			drained = true
		}
	}

	if p, err := j.Export(ctx, cfg.Journal.Dir, cfg.Journal.ExportFormat); err != nil {
		logger.ErrorWithErr(ctx, "Failed to export journal", err)
	} else if p != "" {
		logger.Info(ctx, "Journal exported", "path", p)
	}
	_, _ = summarizer.SummarizeToday(ctx)

	brk.Stop(ctx)
	if err := trace.Shutdown(ctx); err != nil {
		logger.Warn(ctx, "Failed to flush traces", "error", err)
	}
}

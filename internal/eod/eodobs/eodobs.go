package eodobs

import (
	"context"
	"time"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/trace"
	"signal-trading-bot/internal/types"
)

type observableEodSummarizer struct {
	summarizer interfaces.EodSummarizer
}

var _ interfaces.EodSummarizer = (*observableEodSummarizer)(nil)

func Wrap(summarizer interfaces.EodSummarizer) interfaces.EodSummarizer {
	return &observableEodSummarizer{
		summarizer: summarizer,
	}
}

func (oes *observableEodSummarizer) SummarizeDay(ctx context.Context, t time.Time) (types.EodReport, error) {
	return oes.observe(ctx, "eod.SummarizeDay", t.Format("2006-01-02"), func(ctx context.Context) (types.EodReport, error) {
		return oes.summarizer.SummarizeDay(ctx, t)
	})
}

func (oes *observableEodSummarizer) SummarizeToday(ctx context.Context) (types.EodReport, error) {
	return oes.observe(ctx, "eod.SummarizeToday", "today", oes.summarizer.SummarizeToday)
}

// observe runs one summary inside a span. Log calls skip observe and its
// caller.
func (oes *observableEodSummarizer) observe(ctx context.Context, spanName, date string, run func(context.Context) (types.EodReport, error)) (rep types.EodReport, err error) {
	ctx, span := trace.StartSpan(ctx, spanName)
	defer func() { trace.Finish(span, err) }()

	start := time.Now()
	logger.InfoSkip(ctx, 2, "Starting EOD summary generation", "date", date)

	rep, err = run(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 2, "EOD summary generation failed", err,
			"date", date,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return rep, err
	}

	if rep.Path == "" {
		logger.InfoSkip(ctx, 2, "No trades found for EOD summary", "date", rep.Date)
		return rep, nil
	}

	logger.InfoSkip(ctx, 2, "EOD summary generated successfully",
		"date", rep.Date,
		"csv_path", rep.Path,
		"symbols", rep.Symbols,
		"trades", rep.Trades,
		"realized_pnl", rep.RealizedPnL,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return rep, nil
}

func (oes *observableEodSummarizer) ShouldRunNow() (bool, string) {
	shouldRun, csvPath := oes.summarizer.ShouldRunNow()

	logger.DebugSkip(context.Background(), 1, "EOD check completed",
		"should_run", shouldRun,
		"csv_path", csvPath,
	)
	return shouldRun, csvPath
}

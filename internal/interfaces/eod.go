package interfaces

import (
	"context"
	"time"

	"signal-trading-bot/internal/types"
)

type EodSummarizer interface {
	SummarizeDay(ctx context.Context, t time.Time) (types.EodReport, error)
	SummarizeToday(ctx context.Context) (types.EodReport, error)
	ShouldRunNow() (shouldRun bool, csvPath string)
}

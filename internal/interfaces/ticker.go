package interfaces

import (
	"context"

	"signal-trading-bot/internal/types"
)

// TickSource streams ticks into out until ctx is done or the source is
// exhausted. Run returns nil on a clean end of stream.
type TickSource interface {
	Run(ctx context.Context, out chan<- types.Tick) error
}

type TickerManager interface {
	TickSource
	Subscribe(ctx context.Context, symbols []string) error
	Stop(ctx context.Context)
}

package interfaces

import (
	"context"

	"signal-trading-bot/internal/types"
)

// TradeSink receives a record for every fill applied to a position.
type TradeSink interface {
	Record(ctx context.Context, rec types.TradeRecord) error
}

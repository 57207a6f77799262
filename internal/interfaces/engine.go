package interfaces

import (
	"context"

	"signal-trading-bot/internal/types"
)

type Engine interface {
	OnTick(ctx context.Context, tick types.Tick) (*types.StepResult, error)
	OnFill(ctx context.Context, fill types.Fill) error
	OnReject(ctx context.Context, symbol, reason string)
	Start(ctx context.Context, symbol string, qty int64) error
	Stop(ctx context.Context, symbol string) error
	Status(symbol string) (types.SymbolStatus, error)
	Bars(symbol string, n int) ([]types.Bar, error)
	Symbols() []string
}

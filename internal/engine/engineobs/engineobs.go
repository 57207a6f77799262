package engineobs

import (
	"context"
	"time"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/trace"
	"signal-trading-bot/internal/types"
)

type observableEngine struct {
	engine interfaces.Engine
}

var _ interfaces.Engine = (*observableEngine)(nil)

func Wrap(eng interfaces.Engine) interfaces.Engine {
	return &observableEngine{
		engine: eng,
	}
}

// OnTick only opens a span for ticks that seal a bar; the rest are too
// frequent to trace individually.
func (oe *observableEngine) OnTick(ctx context.Context, tick types.Tick) (*types.StepResult, error) {
	result, err := oe.engine.OnTick(ctx, tick)
	if err != nil || result == nil || result.SealedBar == nil {
		return result, err
	}

	_, span := trace.StartSpan(ctx, "engine.Step", trace.Symbol(result.Symbol))
	defer span.End()
	logger.InfoSkip(ctx, 1, "Bar evaluated",
		"symbol", result.Symbol,
		"close", result.SealedBar.Close,
		"signal", string(result.Signal),
		"intent", result.Intent != nil,
		"reason", result.Reason,
	)
	return result, nil
}

func (oe *observableEngine) OnFill(ctx context.Context, fill types.Fill) (err error) {
	ctx, span := trace.StartSpan(ctx, "engine.OnFill", trace.Symbol(fill.Symbol))
	defer func() { trace.Finish(span, err) }()

	start := time.Now()
	if err = oe.engine.OnFill(ctx, fill); err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Fill rejected by engine", err,
			"symbol", fill.Symbol,
			"order_id", fill.OrderID,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return err
	}
	logger.InfoSkip(ctx, 1, "Fill applied",
		"symbol", fill.Symbol,
		"side", string(fill.Side),
		"qty", fill.Quantity,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (oe *observableEngine) OnReject(ctx context.Context, symbol, reason string) {
	ctx, span := trace.StartSpan(ctx, "engine.OnReject", trace.Symbol(symbol))
	defer span.End()
	oe.engine.OnReject(ctx, symbol, reason)
}

func (oe *observableEngine) Start(ctx context.Context, symbol string, qty int64) (err error) {
	ctx, span := trace.StartSpan(ctx, "engine.Start", trace.Symbol(symbol))
	defer func() { trace.Finish(span, err) }()
	return oe.engine.Start(ctx, symbol, qty)
}

func (oe *observableEngine) Stop(ctx context.Context, symbol string) (err error) {
	ctx, span := trace.StartSpan(ctx, "engine.Stop", trace.Symbol(symbol))
	defer func() { trace.Finish(span, err) }()
	return oe.engine.Stop(ctx, symbol)
}

func (oe *observableEngine) Status(symbol string) (types.SymbolStatus, error) {
	return oe.engine.Status(symbol)
}

func (oe *observableEngine) Bars(symbol string, n int) ([]types.Bar, error) {
	return oe.engine.Bars(symbol, n)
}

func (oe *observableEngine) Symbols() []string {
	return oe.engine.Symbols()
}

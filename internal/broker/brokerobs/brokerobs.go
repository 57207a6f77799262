package brokerobs

import (
	"context"
	"fmt"
	"time"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/trace"
	"signal-trading-bot/internal/types"
)

// observableBroker adds spans and order logs around a Broker.
type observableBroker struct {
	broker interfaces.Broker
}

var _ interfaces.Broker = (*observableBroker)(nil)

func Wrap(broker interfaces.Broker) interfaces.Broker {
	return &observableBroker{
		broker: broker,
	}
}

func (ob *observableBroker) PlaceOrder(ctx context.Context, intent types.OrderIntent) (resp types.OrderResp, err error) {
	ctx, span := trace.StartSpan(ctx, "broker.PlaceOrder", trace.Symbol(intent.Symbol))
	defer func() { trace.Finish(span, err) }()

	start := time.Now()
	resp, err = ob.broker.PlaceOrder(ctx, intent)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Broker refused order", err,
			"symbol", intent.Symbol,
			"side", string(intent.Side),
			"qty", intent.Quantity,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return types.OrderResp{}, err
	}

	logger.InfoSkip(ctx, 1, "Broker accepted order",
		"symbol", intent.Symbol,
		"order_id", resp.OrderID,
		"status", resp.Status,
		"filled", resp.Fill != nil,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

func (ob *observableBroker) Fills() <-chan types.Fill          { return ob.broker.Fills() }
func (ob *observableBroker) Rejects() <-chan types.OrderReject { return ob.broker.Rejects() }

func (ob *observableBroker) Start(ctx context.Context, symbols []string) (err error) {
	ctx, span := trace.StartSpan(ctx, "broker.Start")
	defer func() { trace.Finish(span, err) }()

	if err = ob.broker.Start(ctx, symbols); err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to start broker", err, "symbols", symbols)
		return fmt.Errorf("broker start failed: %w", err)
	}
	logger.InfoSkip(ctx, 1, "Broker started", "symbols", len(symbols))
	return nil
}

func (ob *observableBroker) Stop(ctx context.Context) {
	ctx, span := trace.StartSpan(ctx, "broker.Stop")
	defer span.End()

	ob.broker.Stop(ctx)
	logger.InfoSkip(ctx, 1, "Broker stopped")
}

package engine

import (
	"context"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/metrics"
	"signal-trading-bot/internal/types"
)

// orderExecutor hands intents to the broker and counts what it sends.
type orderExecutor struct {
	broker interfaces.Broker
}

func newOrderExecutor(broker interfaces.Broker) *orderExecutor {
	return &orderExecutor{broker: broker}
}

func (oe *orderExecutor) place(ctx context.Context, intent types.OrderIntent) (types.OrderResp, error) {
	metrics.OrdersTotal.WithLabelValues(intent.Symbol, string(intent.Side)).Inc()

	resp, err := oe.broker.PlaceOrder(ctx, intent)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to place order", err,
			"symbol", intent.Symbol,
			"side", string(intent.Side),
			"qty", intent.Quantity,
			"ref_price", intent.RefPrice,
		)
		return types.OrderResp{}, err
	}

	logger.Info(ctx, "Order placed",
		"symbol", intent.Symbol,
		"side", string(intent.Side),
		"qty", intent.Quantity,
		"ref_price", intent.RefPrice,
		"order_id", resp.OrderID,
		"status", resp.Status,
		"tag", intent.Tag,
	)
	return resp, nil
}

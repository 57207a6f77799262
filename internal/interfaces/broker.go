package interfaces

import (
	"context"

	"signal-trading-bot/internal/types"
)

// Broker is the gateway the pipeline dispatches order intents to.
// Fills for asynchronously executed orders arrive on Fills, refusals on
// Rejects.
type Broker interface {
	PlaceOrder(ctx context.Context, intent types.OrderIntent) (types.OrderResp, error)
	Fills() <-chan types.Fill
	Rejects() <-chan types.OrderReject
	Start(ctx context.Context, symbols []string) error
	Stop(ctx context.Context)
}

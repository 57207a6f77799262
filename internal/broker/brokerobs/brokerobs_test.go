package brokerobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-trading-bot/internal/types"
)

type stubBroker struct {
	placeErr error
	startErr error
	stopped  bool
	fills    chan types.Fill
}

func (s *stubBroker) PlaceOrder(_ context.Context, in types.OrderIntent) (types.OrderResp, error) {
	if s.placeErr != nil {
		return types.OrderResp{}, s.placeErr
	}
	return types.OrderResp{OrderID: "X", Status: "PLACED"}, nil
}
func (s *stubBroker) Fills() <-chan types.Fill              { return s.fills }
func (s *stubBroker) Rejects() <-chan types.OrderReject     { return nil }
func (s *stubBroker) Start(context.Context, []string) error { return s.startErr }
func (s *stubBroker) Stop(context.Context)                  { s.stopped = true }

func TestWrapDelegates(t *testing.T) {
	inner := &stubBroker{fills: make(chan types.Fill)}
	b := Wrap(inner)

	resp, err := b.PlaceOrder(context.Background(), types.OrderIntent{Symbol: "INFY", Side: types.SideBuy, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, "X", resp.OrderID)
	assert.Equal(t, (<-chan types.Fill)(inner.fills), b.Fills())

	require.NoError(t, b.Start(context.Background(), []string{"INFY"}))
	b.Stop(context.Background())
	assert.True(t, inner.stopped)
}

func TestWrapPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	b := Wrap(&stubBroker{placeErr: boom, startErr: boom})

	_, err := b.PlaceOrder(context.Background(), types.OrderIntent{Symbol: "INFY"})
	assert.ErrorIs(t, err, boom)
	err = b.Start(context.Background(), nil)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broker start failed")
}

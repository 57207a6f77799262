package engineobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-trading-bot/internal/types"
)

type stubEngine struct {
	res      *types.StepResult
	fillErr  error
	rejected string
}

func (s *stubEngine) OnTick(context.Context, types.Tick) (*types.StepResult, error) { return s.res, nil }
func (s *stubEngine) OnFill(context.Context, types.Fill) error                      { return s.fillErr }
func (s *stubEngine) OnReject(_ context.Context, _, reason string)                  { s.rejected = reason }
func (s *stubEngine) Start(context.Context, string, int64) error                    { return nil }
func (s *stubEngine) Stop(context.Context, string) error                            { return nil }
func (s *stubEngine) Status(sym string) (types.SymbolStatus, error) {
	return types.SymbolStatus{Symbol: sym}, nil
}
func (s *stubEngine) Bars(string, int) ([]types.Bar, error) { return nil, nil }
func (s *stubEngine) Symbols() []string                     { return []string{"INFY"} }

func TestWrapPassesResultsThrough(t *testing.T) {
	inner := &stubEngine{res: &types.StepResult{Symbol: "INFY", SealedBar: &types.Bar{Close: 10}, Signal: types.SignalBuy}}
	eng := Wrap(inner)
	ctx := context.Background()

	res, err := eng.OnTick(ctx, types.Tick{Symbol: "INFY"})
	require.NoError(t, err)
	assert.Same(t, inner.res, res)

	inner.res = nil
	res, err = eng.OnTick(ctx, types.Tick{Symbol: "INFY"})
	require.NoError(t, err)
	assert.Nil(t, res)

	eng.OnReject(ctx, "INFY", "margin")
	assert.Equal(t, "margin", inner.rejected)

	st, err := eng.Status("INFY")
	require.NoError(t, err)
	assert.Equal(t, "INFY", st.Symbol)
	assert.Equal(t, []string{"INFY"}, eng.Symbols())
}

func TestWrapReturnsFillErrors(t *testing.T) {
	boom := errors.New("boom")
	eng := Wrap(&stubEngine{fillErr: boom})
	assert.ErrorIs(t, eng.OnFill(context.Background(), types.Fill{Symbol: "INFY"}), boom)
}

package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-trading-bot/internal/bar"
	"signal-trading-bot/internal/types"
)

var t0 = time.Date(2024, 3, 4, 9, 15, 0, 0, time.UTC)

func flatBar(i int, px float64) types.Bar {
	return types.Bar{Open: px, High: px, Low: px, Close: px, Volume: 1, StartTime: t0.Add(time.Duration(i) * time.Minute)}
}

func historyOf(t *testing.T, bars []types.Bar) *bar.History {
	t.Helper()
	h := bar.NewHistory()
	for _, b := range bars {
		require.NoError(t, h.Append(b))
	}
	return h
}

func wavyBars(n int) []types.Bar {
	out := make([]types.Bar, n)
	for i := range out {
		c := 100 + 5*math.Sin(float64(i)/9) + float64(i)*0.02
		out[i] = types.Bar{Open: c - 0.3, High: c + 0.8, Low: c - 1.1, Close: c, Volume: int64(10 + i), StartTime: t0.Add(time.Duration(i) * time.Minute)}
	}
	return out
}

func TestMinBars(t *testing.T) {
	assert.Equal(t, 50, DefaultConfig().MinBars())
	assert.Equal(t, 31, Config{Short: 5, Long: 30, ROCPeriod: 30}.MinBars())
}

func TestEvaluateMinimumDataGuard(t *testing.T) {
	bars := wavyBars(50)

	_, ok := Evaluate(DefaultConfig(), historyOf(t, bars[:49]))
	assert.False(t, ok)

	_, ok = Evaluate(DefaultConfig(), historyOf(t, bars))
	assert.True(t, ok)

	_, ok = Evaluate(DefaultConfig(), nil)
	assert.False(t, ok)
}

func TestEvaluateValues(t *testing.T) {
	bars := make([]types.Bar, 50)
	for i := range bars {
		bars[i] = flatBar(i, float64(i+1))
	}
	snap, ok := Evaluate(DefaultConfig(), historyOf(t, bars))
	require.True(t, ok)

	// Typical prices are 1..50.
	assert.InDelta(t, 50.0, snap.TypicalPrice, 1e-12)
	assert.InDelta(t, 40.5, snap.SMAShort, 1e-12)
	assert.InDelta(t, 25.5, snap.SMALong, 1e-12)
	assert.InDelta(t, (50.0-40.0)/40.0*100, snap.ROC, 1e-12)
}

func TestEvaluateUsesTypicalPrice(t *testing.T) {
	bars := make([]types.Bar, 50)
	for i := range bars {
		bars[i] = types.Bar{Open: 10, High: 12, Low: 9, Close: 12, StartTime: t0.Add(time.Duration(i) * time.Minute)}
	}
	snap, ok := Evaluate(DefaultConfig(), historyOf(t, bars))
	require.True(t, ok)
	assert.InDelta(t, 11.0, snap.SMALong, 1e-12)
	assert.InDelta(t, 0.0, snap.ROC, 1e-12)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	h := historyOf(t, wavyBars(120))
	first, ok := Evaluate(DefaultConfig(), h)
	require.True(t, ok)
	for i := 0; i < 5; i++ {
		again, _ := Evaluate(DefaultConfig(), h)
		assert.Equal(t, first, again)
	}
}

func TestEngineMatchesEvaluate(t *testing.T) {
	bars := wavyBars(3000)
	e := NewEngine(DefaultConfig())
	h := bar.NewHistory()
	for i, b := range bars {
		require.NoError(t, h.Append(b))
		got, ok := e.Update(b)
		want, wantOK := Evaluate(DefaultConfig(), h)
		require.Equal(t, wantOK, ok, "bar %d", i)
		if !ok {
			continue
		}
		require.InDelta(t, want.SMAShort, got.SMAShort, 1e-9, "bar %d", i)
		require.InDelta(t, want.SMALong, got.SMALong, 1e-9, "bar %d", i)
		require.InDelta(t, want.ROC, got.ROC, 1e-9, "bar %d", i)
		require.Equal(t, want.TypicalPrice, got.TypicalPrice)
	}
	last, ok := e.Last()
	require.True(t, ok)
	assert.Equal(t, 3000, e.Bars())
	assert.NotZero(t, last.SMALong)
}

func TestEngineReset(t *testing.T) {
	e := NewEngine(Config{})
	for _, b := range wavyBars(60) {
		e.Update(b)
	}
	_, ok := e.Last()
	require.True(t, ok)

	e.Reset()
	_, ok = e.Last()
	assert.False(t, ok)
	_, ok = e.Update(flatBar(0, 1))
	assert.False(t, ok)
}

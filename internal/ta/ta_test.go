package ta

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMA(t *testing.T) {
	assert.True(t, math.IsNaN(SMA([]float64{1, 2}, 3)))
	assert.InDelta(t, 2.5, SMA([]float64{1, 2, 3}, 2), 1e-12)
}

func TestROC(t *testing.T) {
	vals := []float64{100, 101, 102, 110}
	assert.InDelta(t, 10.0, ROC(vals, 3), 1e-9)
	assert.True(t, math.IsNaN(ROC(vals, 4)))
	assert.True(t, math.IsNaN(ROC([]float64{0, 1}, 1)))
}

func TestFloatRingOverwritesOldest(t *testing.T) {
	r := NewFloatRing(3)
	for _, v := range []float64{1, 2, 3} {
		_, evicted := r.Push(v)
		assert.False(t, evicted)
	}
	require.True(t, r.Full())

	old, evicted := r.Push(4)
	require.True(t, evicted)
	assert.Equal(t, 1.0, old)

	first, _ := r.Oldest()
	last, _ := r.Get(r.Len() - 1)
	assert.Equal(t, 2.0, first)
	assert.Equal(t, 4.0, last)

	_, ok := r.Get(3)
	assert.False(t, ok)
}

func TestRollingMeanMatchesSMA(t *testing.T) {
	m := NewRollingMean(20)
	vals := make([]float64, 0, 3000)
	for i := 0; i < 3000; i++ {
		v := 100 + math.Sin(float64(i)/7)*3 + float64(i%13)*0.01
		vals = append(vals, v)
		m.Push(v)
		got, ok := m.Value()
		if len(vals) < 20 {
			require.False(t, ok)
			continue
		}
		require.True(t, ok)
		require.InDelta(t, SMA(vals, 20), got, 1e-9, "at %d", i)
	}
}

func TestRollingMeanReset(t *testing.T) {
	m := NewRollingMean(2)
	m.Push(1)
	m.Push(3)
	v, ok := m.Value()
	require.True(t, ok)
	assert.Equal(t, 2.0, v)

	m.Reset()
	_, ok = m.Value()
	assert.False(t, ok)
}

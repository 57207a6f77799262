package ta

import "math"

// SMA is the mean of the last n values, NaN when there are fewer than n.
func SMA(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		sum += vals[i]
	}
	return sum / float64(n)
}

// ROC is the percentage change between the last value and the one period
// positions earlier. NaN when the history is too short or the base is zero.
func ROC(vals []float64, period int) float64 {
	if period <= 0 || len(vals) < period+1 {
		return math.NaN()
	}
	base := vals[len(vals)-1-period]
	if base == 0 {
		return math.NaN()
	}
	return (vals[len(vals)-1] - base) / base * 100.0
}

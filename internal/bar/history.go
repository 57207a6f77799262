package bar

import (
	"fmt"

	"signal-trading-bot/internal/types"
)

// History is the append-only, chronologically ordered sequence of sealed bars.
type History struct {
	bars []types.Bar
}

func NewHistory() *History {
	return &History{}
}

// Append adds a sealed bar. Bars must be appended in strictly increasing
// start time.
func (h *History) Append(b types.Bar) error {
	if n := len(h.bars); n > 0 && !b.StartTime.After(h.bars[n-1].StartTime) {
		return fmt.Errorf("%w: bar at %s does not follow %s", types.ErrInvalidInput,
			b.StartTime.Format("15:04:05.000"), h.bars[n-1].StartTime.Format("15:04:05.000"))
	}
	h.bars = append(h.bars, b)
	return nil
}

func (h *History) Len() int { return len(h.bars) }

// At returns the i-th bar, oldest first.
func (h *History) At(i int) types.Bar { return h.bars[i] }

func (h *History) Last() (types.Bar, bool) {
	if len(h.bars) == 0 {
		return types.Bar{}, false
	}
	return h.bars[len(h.bars)-1], true
}

// Tail returns a copy of the last n bars (all of them when n <= 0 or n > Len).
func (h *History) Tail(n int) []types.Bar {
	if n <= 0 || n > len(h.bars) {
		n = len(h.bars)
	}
	out := make([]types.Bar, n)
	copy(out, h.bars[len(h.bars)-n:])
	return out
}

package bar

import (
	"fmt"
	"time"

	"signal-trading-bot/internal/types"
)

const DefaultInterval = 60 * time.Second

// Aggregator folds ticks into fixed-interval bars. An interval is measured
// from the timestamp of the tick that opened the bar, not from the clock.
//
// Ticks must be supplied in non-decreasing timestamp order. Out of order
// ticks are rejected, never reordered.
type Aggregator struct {
	interval time.Duration
	history  *History
	current  *types.Bar
	lastTS   time.Time
}

func NewAggregator(interval time.Duration, history *History) *Aggregator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if history == nil {
		history = NewHistory()
	}
	return &Aggregator{interval: interval, history: history}
}

func (a *Aggregator) Interval() time.Duration { return a.interval }
func (a *Aggregator) History() *History       { return a.history }

// Ingest applies one tick. It returns the bar sealed by this tick, or nil
// when the tick only updated the open bar. A rejected tick leaves the
// aggregator untouched.
func (a *Aggregator) Ingest(t types.Tick) (*types.Bar, error) {
	if err := a.validate(t); err != nil {
		return nil, err
	}

	if a.current != nil && t.Timestamp.Sub(a.current.StartTime) < a.interval {
		c := a.current
		if t.Price > c.High {
			c.High = t.Price
		}
		if t.Price < c.Low {
			c.Low = t.Price
		}
		c.Close = t.Price
		c.Volume += t.Size
		a.lastTS = t.Timestamp
		return nil, nil
	}

	var sealed *types.Bar
	if a.current != nil {
		b := *a.current
		if err := a.history.Append(b); err != nil {
			return nil, err
		}
		sealed = &b
	}
	a.current = &types.Bar{
		Open:      t.Price,
		High:      t.Price,
		Low:       t.Price,
		Close:     t.Price,
		Volume:    t.Size,
		StartTime: t.Timestamp,
	}
	a.lastTS = t.Timestamp
	return sealed, nil
}

func (a *Aggregator) validate(t types.Tick) error {
	switch {
	case t.Timestamp.IsZero():
		return fmt.Errorf("%w: tick without timestamp", types.ErrInvalidInput)
	case !(t.Price > 0):
		return fmt.Errorf("%w: non-positive price %v", types.ErrInvalidInput, t.Price)
	case t.Size <= 0:
		return fmt.Errorf("%w: non-positive size %d", types.ErrInvalidInput, t.Size)
	case !a.lastTS.IsZero() && t.Timestamp.Before(a.lastTS):
		return fmt.Errorf("%w: tick at %s before previous tick at %s", types.ErrInvalidInput,
			t.Timestamp.Format(time.RFC3339Nano), a.lastTS.Format(time.RFC3339Nano))
	}
	return nil
}

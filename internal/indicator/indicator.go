// Package indicator computes the typical-price moving averages and rate of
// change that feed the signal rules.
package indicator

import (
	"signal-trading-bot/internal/bar"
	"signal-trading-bot/internal/ta"
	"signal-trading-bot/internal/types"
)

type Config struct {
	Short     int `yaml:"sma_short"`
	Long      int `yaml:"sma_long"`
	ROCPeriod int `yaml:"roc_period"`
}

func DefaultConfig() Config {
	return Config{Short: 20, Long: 50, ROCPeriod: 10}
}

// MinBars is the number of sealed bars needed before a snapshot exists.
func (c Config) MinBars() int {
	n := c.Long
	if c.Short > n {
		n = c.Short
	}
	if c.ROCPeriod+1 > n {
		n = c.ROCPeriod + 1
	}
	return n
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Short <= 0 {
		c.Short = d.Short
	}
	if c.Long <= 0 {
		c.Long = d.Long
	}
	if c.ROCPeriod <= 0 {
		c.ROCPeriod = d.ROCPeriod
	}
	return c
}

// Evaluate computes a snapshot from the tail of h. It reads nothing but the
// history and returns false until MinBars bars are sealed.
func Evaluate(cfg Config, h *bar.History) (types.Snapshot, bool) {
	cfg = cfg.withDefaults()
	need := cfg.MinBars()
	if h == nil || h.Len() < need {
		return types.Snapshot{}, false
	}
	tail := h.Tail(need)
	tp := make([]float64, len(tail))
	for i, b := range tail {
		tp[i] = b.TypicalPrice()
	}
	return types.Snapshot{
		TypicalPrice: tp[len(tp)-1],
		SMAShort:     ta.SMA(tp, cfg.Short),
		SMALong:      ta.SMA(tp, cfg.Long),
		ROC:          ta.ROC(tp, cfg.ROCPeriod),
	}, true
}

// Engine maintains the same values incrementally, one bar at a time.
type Engine struct {
	cfg   Config
	short *ta.RollingMean
	long  *ta.RollingMean
	lag   *ta.FloatRing
	count int
	last  *types.Snapshot
}

func NewEngine(cfg Config) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		cfg:   cfg,
		short: ta.NewRollingMean(cfg.Short),
		long:  ta.NewRollingMean(cfg.Long),
		lag:   ta.NewFloatRing(cfg.ROCPeriod + 1),
	}
}

func (e *Engine) Config() Config { return e.cfg }

// Update folds a newly sealed bar into the windows and returns the snapshot
// as of that bar.
func (e *Engine) Update(b types.Bar) (types.Snapshot, bool) {
	tp := b.TypicalPrice()
	e.short.Push(tp)
	e.long.Push(tp)
	e.lag.Push(tp)
	e.count++

	if e.count < e.cfg.MinBars() {
		return types.Snapshot{}, false
	}
	s, _ := e.short.Value()
	l, _ := e.long.Value()
	base, _ := e.lag.Oldest()
	snap := types.Snapshot{TypicalPrice: tp, SMAShort: s, SMALong: l}
	if base != 0 {
		snap.ROC = (tp - base) / base * 100.0
	}
	e.last = &snap
	return snap, true
}

// Last returns the most recent snapshot, if any.
func (e *Engine) Last() (types.Snapshot, bool) {
	if e.last == nil {
		return types.Snapshot{}, false
	}
	return *e.last, true
}

// Bars is the number of bars folded in since the last reset.
func (e *Engine) Bars() int { return e.count }

func (e *Engine) Reset() {
	e.short.Reset()
	e.long.Reset()
	e.lag.Reset()
	e.count = 0
	e.last = nil
}

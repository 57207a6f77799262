package engine

import (
	"sync"
	"time"

	"signal-trading-bot/internal/bar"
	"signal-trading-bot/internal/gate"
	"signal-trading-bot/internal/indicator"
	"signal-trading-bot/internal/types"
)

// pipeline is the aggregator, indicator and gate chain of one symbol.
// Every access goes through mu.
type pipeline struct {
	mu      sync.Mutex
	symbol  string
	agg     *bar.Aggregator
	ind     *indicator.Engine
	gate    *gate.Gate
	pending *types.OrderIntent
	// lastSig is the last signal an order was placed for.
	lastSig types.Signal
}

func newPipeline(symbol string, interval time.Duration, ind indicator.Config, qty int64) *pipeline {
	return &pipeline{
		symbol:  symbol,
		agg:     bar.NewAggregator(interval, bar.NewHistory()),
		ind:     indicator.NewEngine(ind),
		gate:    gate.New(symbol, qty),
		lastSig: types.SignalNone,
	}
}

func (p *pipeline) status() types.SymbolStatus {
	a, d := p.gate.State()
	st := types.SymbolStatus{
		Symbol:      p.symbol,
		Active:      p.gate.Active(),
		Quantity:    p.gate.Quantity(),
		Position:    p.gate.Position(),
		State:       stateLabel(a, d),
		Bars:        p.agg.History().Len(),
		LastSignal:  p.lastSig,
		Pending:     p.pending != nil,
		RealizedPnL: p.gate.RealizedPnL(),
	}
	if b, ok := p.agg.History().Last(); ok {
		st.LastBar = &b
	}
	if s, ok := p.ind.Last(); ok {
		st.Snapshot = &s
	}
	return st
}

// Package gate turns indicator snapshots into order intents for one symbol
// and keeps that symbol's position up to date as fills arrive.
package gate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"signal-trading-bot/internal/types"
)

type Activity string

const (
	Active   Activity = "ACTIVE"
	Inactive Activity = "INACTIVE"
)

// FillResult describes the effect of one fill on the position.
type FillResult struct {
	Position    types.Position `json:"position"`
	Transitions []Transition   `json:"transitions,omitempty"`
	RealizedPnL float64        `json:"realized_pnl"`
}

// Gate is not safe for concurrent use; callers serialize per symbol.
type Gate struct {
	symbol   string
	qty      int64
	active   bool
	pos      types.Position
	realized decimal.Decimal
}

// New returns an inactive gate with a flat position.
func New(symbol string, qty int64) *Gate {
	return &Gate{symbol: symbol, qty: qty, pos: types.Position{Symbol: symbol}}
}

// Start activates trading. A positive qty replaces the order quantity.
func (g *Gate) Start(qty int64) {
	if qty > 0 {
		g.qty = qty
	}
	g.active = true
}

func (g *Gate) Stop() { g.active = false }

func (g *Gate) Symbol() string           { return g.symbol }
func (g *Gate) Active() bool             { return g.active }
func (g *Gate) Quantity() int64          { return g.qty }
func (g *Gate) Position() types.Position { return g.pos }

// RealizedPnL is the cumulative realized profit since the gate was created.
func (g *Gate) RealizedPnL() float64 { return g.realized.InexactFloat64() }

func (g *Gate) State() (Activity, Direction) {
	a := Inactive
	if g.active {
		a = Active
	}
	return a, directionOf(g.pos.SignedQty)
}

// DecideAction returns the intent for sig, or false when trading is stopped
// or sig is not actionable against the current position.
func (g *Gate) DecideAction(sig types.Signal, refPrice float64) (types.OrderIntent, bool) {
	if !g.active || g.qty <= 0 {
		return types.OrderIntent{}, false
	}
	if !Actionable(sig, g.pos) {
		return types.OrderIntent{}, false
	}
	return types.OrderIntent{
		Symbol:   g.symbol,
		Side:     sideOf(sig),
		Quantity: g.qty,
		RefPrice: refPrice,
		Tag:      "SIGNAL",
	}, true
}

// ApplyFill updates the position for a confirmed fill.
func (g *Gate) ApplyFill(f types.Fill) (FillResult, error) {
	switch {
	case f.Symbol != g.symbol:
		return FillResult{}, fmt.Errorf("%w: fill for %s applied to %s", types.ErrInvalidInput, f.Symbol, g.symbol)
	case f.Quantity <= 0:
		return FillResult{}, fmt.Errorf("%w: non-positive fill quantity %d", types.ErrInvalidInput, f.Quantity)
	case !(f.FillPrice > 0):
		return FillResult{}, fmt.Errorf("%w: non-positive fill price %v", types.ErrInvalidInput, f.FillPrice)
	case f.Side != types.SideBuy && f.Side != types.SideSell:
		return FillResult{}, fmt.Errorf("%w: unknown side %q", types.ErrInvalidInput, f.Side)
	}

	pos, pnl, tr := applyFill(g.pos, f.Side, f.Quantity, f.FillPrice)
	g.pos = pos
	g.realized = g.realized.Add(pnl)
	return FillResult{Position: pos, Transitions: tr, RealizedPnL: pnl.InexactFloat64()}, nil
}

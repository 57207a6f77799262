package gate

import (
	"github.com/shopspring/decimal"

	"signal-trading-bot/internal/types"
)

type Direction string

const (
	Flat  Direction = "FLAT"
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

func directionOf(qty int64) Direction {
	switch {
	case qty > 0:
		return Long
	case qty < 0:
		return Short
	default:
		return Flat
	}
}

// Transition is one change of position direction.
type Transition struct {
	From Direction `json:"from"`
	To   Direction `json:"to"`
}

// applyFill folds a fill into pos using average-cost accounting. A fill that
// crosses zero closes the old exposure at the fill price and opens the
// remainder on the other side, yielding two transitions.
func applyFill(pos types.Position, side types.Side, qty int64, price float64) (types.Position, decimal.Decimal, []Transition) {
	from := directionOf(pos.SignedQty)
	px := decimal.NewFromFloat(price)
	signed := side.Sign() * qty

	// Opening or adding in the same direction.
	if pos.SignedQty == 0 || (pos.SignedQty > 0) == (signed > 0) {
		held := abs(pos.SignedQty)
		cost := decimal.NewFromFloat(pos.AvgPrice).Mul(decimal.NewFromInt(held)).Add(px.Mul(decimal.NewFromInt(qty)))
		pos.SignedQty += signed
		pos.AvgPrice = cost.Div(decimal.NewFromInt(held + qty)).InexactFloat64()
		var tr []Transition
		if from == Flat {
			tr = append(tr, Transition{From: Flat, To: directionOf(pos.SignedQty)})
		}
		return pos, decimal.Zero, tr
	}

	// Reducing, closing or flipping.
	closed := qty
	if held := abs(pos.SignedQty); closed > held {
		closed = held
	}
	dir := decimal.NewFromInt(sign(pos.SignedQty))
	pnl := px.Sub(decimal.NewFromFloat(pos.AvgPrice)).Mul(decimal.NewFromInt(closed)).Mul(dir)

	pos.SignedQty += side.Sign() * closed
	remainder := qty - closed

	var tr []Transition
	if pos.SignedQty == 0 {
		pos.AvgPrice = 0
		tr = append(tr, Transition{From: from, To: Flat})
	}
	if remainder > 0 {
		pos.SignedQty = side.Sign() * remainder
		pos.AvgPrice = price
		tr = append(tr, Transition{From: Flat, To: directionOf(pos.SignedQty)})
	}
	return pos, pnl, tr
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int64) int64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

package gate

import "signal-trading-bot/internal/types"

// DeriveSignal applies the crossover rule with momentum confirmation. Equal
// averages or a flat rate of change give NONE.
func DeriveSignal(s types.Snapshot) types.Signal {
	switch {
	case s.SMAShort > s.SMALong && s.ROC > 0:
		return types.SignalBuy
	case s.SMAShort < s.SMALong && s.ROC < 0:
		return types.SignalSell
	default:
		return types.SignalNone
	}
}

// Actionable reports whether sig may open exposure given pos. BUY needs a flat
// or short position and SELL a flat or long one, so exposure never pyramids.
func Actionable(sig types.Signal, pos types.Position) bool {
	switch sig {
	case types.SignalBuy:
		return !pos.IsLong()
	case types.SignalSell:
		return !pos.IsShort()
	default:
		return false
	}
}

func sideOf(sig types.Signal) types.Side {
	if sig == types.SignalSell {
		return types.SideSell
	}
	return types.SideBuy
}

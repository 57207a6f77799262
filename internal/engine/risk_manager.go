package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/types"
)

// riskManager enforces the opt-in exposure and daily loss limits. It is
// shared by all pipelines, so it carries its own lock.
type riskManager struct {
	mu           sync.Mutex
	maxPosition  int64
	maxDailyLoss decimal.Decimal
	dayStart     time.Time
	dayPnL       decimal.Decimal
}

// newRiskManager returns a manager with the given limits. Zero disables a
// limit. The trading day follows the event times it is fed.
func newRiskManager(maxPosition int64, maxDailyLoss float64) *riskManager {
	return &riskManager{
		maxPosition:  maxPosition,
		maxDailyLoss: decimal.NewFromFloat(maxDailyLoss),
	}
}

func (rm *riskManager) rollover(now time.Time) {
	if d := midnightIST(now); d.After(rm.dayStart) {
		rm.dayStart = d
		rm.dayPnL = decimal.Zero
	}
}

// recordPnL adds realized PnL to the running day total.
func (rm *riskManager) recordPnL(now time.Time, pnl float64) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.rollover(now)
	rm.dayPnL = rm.dayPnL.Add(decimal.NewFromFloat(pnl))
}

// validateIntent returns the blocking limit name and an ErrRiskLimit error
// when intent may not be sent against pos.
func (rm *riskManager) validateIntent(ctx context.Context, now time.Time, pos types.Position, intent types.OrderIntent) (string, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.rollover(now)

	if rm.maxPosition > 0 {
		next := pos.SignedQty + intent.Side.Sign()*intent.Quantity
		if next < 0 {
			next = -next
		}
		if next > rm.maxPosition {
			logger.Risk(ctx, intent.Symbol, "TRADE_BLOCKED_MAX_POSITION",
				"side", string(intent.Side),
				"qty", intent.Quantity,
				"position_qty", pos.SignedQty,
				"max_position", rm.maxPosition,
			)
			return "max_position", fmt.Errorf("%w: position %d would exceed %d", types.ErrRiskLimit, next, rm.maxPosition)
		}
	}

	if rm.maxDailyLoss.IsPositive() && rm.dayPnL.LessThan(rm.maxDailyLoss.Neg()) {
		logger.Risk(ctx, intent.Symbol, "TRADE_BLOCKED_DAILY_LOSS",
			"side", string(intent.Side),
			"day_pnl", rm.dayPnL.InexactFloat64(),
			"max_daily_loss", rm.maxDailyLoss.InexactFloat64(),
		)
		return "max_daily_loss", fmt.Errorf("%w: day pnl %s below -%s", types.ErrRiskLimit, rm.dayPnL.StringFixed(2), rm.maxDailyLoss.StringFixed(2))
	}
	return "", nil
}

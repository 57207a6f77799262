package zerodha

import (
	"context"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"
	"github.com/zerodha/gokiteconnect/v4/models"

	"signal-trading-bot/internal/logger"
)

func (tm *tickerManager) setupEventHandlers() {
	tm.ticker.OnConnect(tm.onConnect)
	tm.ticker.OnError(tm.onError)
	tm.ticker.OnClose(tm.onClose)
	tm.ticker.OnReconnect(tm.onReconnect)
	tm.ticker.OnNoReconnect(tm.onNoReconnect)
	tm.ticker.OnTick(tm.onTick)
	tm.ticker.OnOrderUpdate(tm.onOrderUpdate)
}

func (tm *tickerManager) onConnect() {
	tm.mu.Lock()
	tm.connected = true
	tokens := tm.tokens
	tm.mu.Unlock()

	logger.Info(context.Background(), "WebSocket connected successfully", "tokens", len(tokens))
	if err := tm.subscribeTokens(tokens); err != nil {
		logger.ErrorWithErr(context.Background(), "Resubscribe after connect failed", err)
	}
}

func (tm *tickerManager) onError(err error) {
	logger.ErrorWithErr(context.Background(), "WebSocket error occurred", err)
}

func (tm *tickerManager) onClose(code int, reason string) {
	tm.mu.Lock()
	tm.connected = false
	tm.mu.Unlock()
	logger.Warn(context.Background(), "WebSocket connection closed",
		"code", code,
		"reason", reason,
	)
}

func (tm *tickerManager) onReconnect(attempt int, delay time.Duration) {
	logger.Info(context.Background(), "WebSocket reconnecting",
		"attempt", attempt,
		"delay", delay,
	)
}

func (tm *tickerManager) onNoReconnect(attempt int) {
	logger.Warn(context.Background(), "WebSocket reconnection failed - giving up",
		"attempts", attempt,
	)
}

func (tm *tickerManager) onTick(tick models.Tick) {
	t, ok := tm.convertTick(tick)
	if !ok {
		return
	}
	tm.mu.RLock()
	out, done := tm.out, tm.done
	tm.mu.RUnlock()
	if out == nil {
		return
	}
	select {
	case out <- t:
	case <-done:
	}
}

func (tm *tickerManager) onOrderUpdate(order kiteconnect.Order) {
	logger.Debug(context.Background(), "Order update received",
		"order_id", order.OrderID,
		"status", order.Status,
		"symbol", order.TradingSymbol,
	)
	if tm.onOrder != nil {
		tm.onOrder(order)
	}
}

package eod

import (
	"time"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/types"
)

// TradeReader loads the trade records of one IST day.
type TradeReader interface {
	ReadDay(t time.Time) ([]types.TradeRecord, error)
	Dir() string
}

func NewSummarizer(trades TradeReader) interfaces.EodSummarizer {
	return newSummarizer(trades, istNow)
}

func newSummarizer(trades TradeReader, now func() time.Time) *eodSummarizer {
	return &eodSummarizer{trades: trades, now: now}
}

package engine

import (
	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/store"
)

func New(cfg *store.Config, brk interfaces.Broker, sink interfaces.TradeSink, opts ...Option) interfaces.Engine {
	return newEngine(cfg, brk, sink, opts...)
}

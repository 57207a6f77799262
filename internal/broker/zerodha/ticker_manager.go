package zerodha

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"
	"github.com/zerodha/gokiteconnect/v4/models"
	kiteticker "github.com/zerodha/gokiteconnect/v4/ticker"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/types"
)

type lastTrade struct {
	at  time.Time
	qty uint32
}

// tickerManager streams Kite trades as ticks and forwards order updates.
type tickerManager struct {
	kc          kiteClient
	ticker      *kiteticker.Ticker
	apiKey      string
	accessToken string
	exchange    string
	mapper      *instrumentMapper
	onOrder     func(kiteconnect.Order)

	connectOnce sync.Once

	mu        sync.RWMutex
	connected bool
	tokens    []uint32
	out       chan<- types.Tick
	done      <-chan struct{}
	last      map[uint32]lastTrade
}

var _ interfaces.TickerManager = (*tickerManager)(nil)

func newTickerManager(apiKey, accessToken, exchange string, kc kiteClient) *tickerManager {
	return &tickerManager{
		kc:          kc,
		apiKey:      apiKey,
		accessToken: accessToken,
		exchange:    exchange,
		mapper:      newInstrumentMapper(),
		last:        make(map[uint32]lastTrade),
	}
}

// connect starts the websocket once. Subscriptions are (re)sent on every
// connect event.
func (tm *tickerManager) connect(ctx context.Context) {
	tm.connectOnce.Do(func() {
		tm.ticker = kiteticker.New(tm.apiKey, tm.accessToken)
		tm.setupEventHandlers()
		go func() {
			logger.Info(ctx, "Starting Zerodha WebSocket ticker")
			tm.ticker.Serve()
		}()
	})
}

// Run delivers ticks into out until ctx is done.
func (tm *tickerManager) Run(ctx context.Context, out chan<- types.Tick) error {
	tm.mu.Lock()
	tm.out = out
	tm.done = ctx.Done()
	tm.mu.Unlock()

	tm.connect(ctx)
	<-ctx.Done()

	tm.mu.Lock()
	tm.out = nil
	tm.mu.Unlock()
	return nil
}

func (tm *tickerManager) Stop(ctx context.Context) {
	if tm.ticker != nil {
		logger.Info(ctx, "Stopping Zerodha WebSocket ticker")
		tm.ticker.Stop()
	}
}

// Subscribe resolves symbols against the exchange instrument dump and
// subscribes to their full-mode ticks.
func (tm *tickerManager) Subscribe(ctx context.Context, symbols []string) error {
	if tm.mapper.size() == 0 {
		instruments, err := tm.kc.GetInstrumentsByExchange(tm.exchange)
		if err != nil {
			return fmt.Errorf("failed to fetch %s instruments: %w", tm.exchange, err)
		}
		tm.mapper.load(instruments)
		logger.Info(ctx, "Loaded instruments", "exchange", tm.exchange, "count", tm.mapper.size())
	}

	tokens, missing := tm.mapper.resolve(symbols)
	if len(missing) > 0 {
		return fmt.Errorf("unknown %s instruments: %s", tm.exchange, strings.Join(missing, ","))
	}

	tm.mu.Lock()
	tm.tokens = tokens
	connected := tm.connected
	tm.mu.Unlock()

	if connected {
		if err := tm.subscribeTokens(tokens); err != nil {
			return err
		}
	}
	logger.Info(ctx, "Subscribed to symbols for live data", "symbols", symbols, "count", len(symbols))
	return nil
}

func (tm *tickerManager) subscribeTokens(tokens []uint32) error {
	if len(tokens) == 0 {
		return nil
	}
	if err := tm.ticker.Subscribe(tokens); err != nil {
		return fmt.Errorf("failed to subscribe to symbols: %w", err)
	}
	if err := tm.ticker.SetMode(kiteticker.ModeFull, tokens); err != nil {
		return fmt.Errorf("failed to set ticker mode: %w", err)
	}
	return nil
}

// convertTick maps a Kite tick to a trade tick. Quote-only updates, which
// carry no traded quantity or repeat the previous trade, are dropped.
func (tm *tickerManager) convertTick(tick models.Tick) (types.Tick, bool) {
	symbol := tm.mapper.getSymbol(tick.InstrumentToken)
	if symbol == "" || tick.LastTradedQuantity == 0 {
		return types.Tick{}, false
	}
	at := tick.LastTradeTime.Time
	if at.IsZero() {
		at = tick.Timestamp.Time
	}

	tm.mu.Lock()
	defer tm.mu.Unlock()
	prev, seen := tm.last[tick.InstrumentToken]
	if seen && prev.at.Equal(at) && prev.qty == tick.LastTradedQuantity {
		return types.Tick{}, false
	}
	tm.last[tick.InstrumentToken] = lastTrade{at: at, qty: tick.LastTradedQuantity}

	return types.Tick{
		Symbol:    symbol,
		Price:     tick.LastPrice,
		Size:      int64(tick.LastTradedQuantity),
		Timestamp: at,
	}, true
}

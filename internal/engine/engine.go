package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"signal-trading-bot/internal/gate"
	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/metrics"
	"signal-trading-bot/internal/store"
	"signal-trading-bot/internal/tradelog"
	"signal-trading-bot/internal/types"
)

// SignalRecorder persists the signal derived for every evaluated bar.
type SignalRecorder interface {
	AppendSignal(at time.Time, e tradelog.SignalEntry) error
}

type Option func(*Engine)

func WithSignalLog(r SignalRecorder) Option {
	return func(e *Engine) { e.signals = r }
}

// WithClock replaces time.Now for fills that carry no timestamp.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine routes ticks and fills to the pipeline of their symbol.
type Engine struct {
	pipes   map[string]*pipeline
	symbols []string
	exec    *orderExecutor
	risk    *riskManager
	sink    interfaces.TradeSink
	signals SignalRecorder
	now     func() time.Time
}

var _ interfaces.Engine = (*Engine)(nil)

func newEngine(cfg *store.Config, brk interfaces.Broker, sink interfaces.TradeSink, opts ...Option) *Engine {
	e := &Engine{
		pipes: make(map[string]*pipeline, len(cfg.Universe)),
		exec:  newOrderExecutor(brk),
		sink:  sink,
		now:   time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	e.risk = newRiskManager(cfg.Risk.MaxPosition, cfg.Risk.MaxDailyLoss)

	for _, raw := range cfg.Universe {
		sym := normSymbol(raw)
		if _, dup := e.pipes[sym]; dup || sym == "" {
			continue
		}
		p := newPipeline(sym, cfg.BarInterval(), cfg.Indicators, cfg.QtyFor(sym))
		if cfg.Trading.AutoStart {
			p.gate.Start(0)
		}
		e.pipes[sym] = p
		e.symbols = append(e.symbols, sym)
	}
	return e
}

func (e *Engine) pipe(symbol string) (*pipeline, error) {
	p, ok := e.pipes[normSymbol(symbol)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownSymbol, symbol)
	}
	return p, nil
}

// OnTick folds a tick into its symbol's bar. When the tick seals a bar the
// indicators, signal and gate run on it, and an order may be placed.
func (e *Engine) OnTick(ctx context.Context, tick types.Tick) (*types.StepResult, error) {
	p, err := e.pipe(tick.Symbol)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	metrics.TicksTotal.WithLabelValues(p.symbol).Inc()
	sealed, err := p.agg.Ingest(tick)
	if err != nil {
		metrics.TicksRejected.WithLabelValues(p.symbol).Inc()
		logger.Warn(ctx, "Tick rejected", "symbol", p.symbol, "price", tick.Price, "size", tick.Size, "error", err.Error())
		return nil, err
	}

	res := &types.StepResult{Symbol: p.symbol, Time: tick.Timestamp, Price: tick.Price, Signal: types.SignalNone}
	if sealed == nil {
		return res, nil
	}
	res.SealedBar = sealed
	metrics.BarsSealed.WithLabelValues(p.symbol).Inc()
	logger.Debug(ctx, "Bar sealed",
		"symbol", p.symbol,
		"start", sealed.StartTime,
		"open", sealed.Open,
		"high", sealed.High,
		"low", sealed.Low,
		"close", sealed.Close,
		"volume", sealed.Volume,
	)

	snap, ok := p.ind.Update(*sealed)
	if !ok {
		res.Reason = fmt.Sprintf("warming up: %d/%d bars", p.ind.Bars(), p.ind.Config().MinBars())
		return res, nil
	}
	sig := gate.DeriveSignal(snap)
	res.Snapshot = &snap
	res.Signal = sig
	metrics.SignalsTotal.WithLabelValues(p.symbol, string(sig)).Inc()
	if sig != types.SignalNone {
		logger.Signal(ctx, p.symbol, sig, snap, "close", sealed.Close)
	}

	e.decide(ctx, p, sig, sealed, res)

	if e.signals != nil {
		entry := tradelog.SignalEntry{Symbol: p.symbol, Signal: sig, Price: sealed.Close, Snapshot: snap, Action: res.Reason}
		if res.Intent != nil {
			entry.Action = string(res.Intent.Side)
		}
		if err := e.signals.AppendSignal(sealed.StartTime, entry); err != nil {
			logger.ErrorWithErr(ctx, "Failed to append signal log", err, "symbol", p.symbol)
		}
	}
	return res, nil
}

// decide runs the gate and risk checks for sig and dispatches the intent.
// The caller holds p.mu.
func (e *Engine) decide(ctx context.Context, p *pipeline, sig types.Signal, sealed *types.Bar, res *types.StepResult) {
	if sig == types.SignalNone {
		return
	}
	if p.pending != nil {
		res.Reason = "pending order"
		return
	}
	intent, ok := p.gate.DecideAction(sig, sealed.Close)
	if !ok {
		if !p.gate.Active() {
			res.Reason = "trading stopped"
		}
		return
	}
	// Event time, not the wall clock, so replayed days roll over correctly.
	intent.Time = res.Time

	if why, err := e.risk.validateIntent(ctx, intent.Time, p.gate.Position(), intent); err != nil {
		metrics.OrdersBlocked.WithLabelValues(p.symbol, why).Inc()
		res.Reason = "blocked: " + why
		return
	}

	res.Intent = &intent
	p.pending = &intent
	resp, err := e.exec.place(ctx, intent)
	if err != nil {
		p.pending = nil
		res.Reason = "order_err: " + err.Error()
		return
	}
	res.Order = &resp
	p.lastSig = sig
	if resp.Fill != nil {
		f := *resp.Fill
		if f.Time.IsZero() {
			f.Time = intent.Time
		}
		if err := e.applyFill(ctx, p, f); err != nil {
			logger.ErrorWithErr(ctx, "Failed to apply synchronous fill", err, "symbol", p.symbol, "order_id", resp.OrderID)
		}
	}
}

// applyFill updates the position and journals the trade. The caller holds p.mu.
// The pending intent is cleared even when the fill is refused.
func (e *Engine) applyFill(ctx context.Context, p *pipeline, f types.Fill) error {
	fr, err := p.gate.ApplyFill(f)
	if err != nil {
		p.pending = nil
		return err
	}
	reason := "FILL"
	if p.pending != nil {
		reason = p.pending.Tag
	}
	p.pending = nil

	at := f.Time
	if at.IsZero() {
		at = e.now()
	}
	e.risk.recordPnL(at, fr.RealizedPnL)

	rec := types.TradeRecord{
		ID:        uuid.NewString(),
		Timestamp: at,
		Symbol:    p.symbol,
		Side:      f.Side,
		Quantity:  f.Quantity,
		Price:     f.FillPrice,
		PnL:       fr.RealizedPnL,
		OrderID:   f.OrderID,
		Reason:    reason,
	}
	metrics.FillsTotal.WithLabelValues(p.symbol, string(f.Side)).Inc()
	metrics.PositionQty.WithLabelValues(p.symbol).Set(float64(fr.Position.SignedQty))
	metrics.RealizedPnL.WithLabelValues(p.symbol).Set(p.gate.RealizedPnL())
	logger.Trade(ctx, rec,
		"position_qty", fr.Position.SignedQty,
		"avg_price", fr.Position.AvgPrice,
		"transitions", len(fr.Transitions),
	)

	if e.sink != nil {
		if err := e.sink.Record(ctx, rec); err != nil {
			logger.ErrorWithErr(ctx, "Failed to record trade", err, "symbol", p.symbol, "trade_id", rec.ID)
		}
	}
	return nil
}

// OnFill applies a fill reported asynchronously by the broker.
func (e *Engine) OnFill(ctx context.Context, f types.Fill) error {
	p, err := e.pipe(f.Symbol)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return e.applyFill(ctx, p, f)
}

// OnReject clears the pending intent after the broker refused it.
func (e *Engine) OnReject(ctx context.Context, symbol, reason string) {
	p, err := e.pipe(symbol)
	if err != nil {
		logger.Warn(ctx, "Reject for unknown symbol", "symbol", symbol, "reason", reason)
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	logger.Warn(ctx, "Order rejected", "symbol", p.symbol, "reason", reason, "had_pending", p.pending != nil)
	p.pending = nil
}

func (e *Engine) Start(ctx context.Context, symbol string, qty int64) error {
	p, err := e.pipe(symbol)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gate.Start(qty)
	logger.Info(ctx, "Trading started", "symbol", p.symbol, "qty", p.gate.Quantity())
	return nil
}

func (e *Engine) Stop(ctx context.Context, symbol string) error {
	p, err := e.pipe(symbol)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gate.Stop()
	logger.Info(ctx, "Trading stopped", "symbol", p.symbol, "position_qty", p.gate.Position().SignedQty)
	return nil
}

func (e *Engine) Status(symbol string) (types.SymbolStatus, error) {
	p, err := e.pipe(symbol)
	if err != nil {
		return types.SymbolStatus{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status(), nil
}

// Bars returns up to n of the most recent sealed bars, all when n <= 0.
func (e *Engine) Bars(symbol string, n int) ([]types.Bar, error) {
	p, err := e.pipe(symbol)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.agg.History().Tail(n), nil
}

func (e *Engine) Symbols() []string {
	out := make([]string, len(e.symbols))
	copy(out, e.symbols)
	return out
}


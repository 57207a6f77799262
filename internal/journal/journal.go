// Package journal keeps the session's trade history and its performance
// metrics, and forwards every record to the persistent sinks.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/types"
)

var ist = time.FixedZone("IST", 19800)

type Metrics struct {
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	TotalPnL      float64 `json:"total_pnl"`
	WinRate       float64 `json:"win_rate"`
	AvgWin        float64 `json:"avg_win"`
	AvgLoss       float64 `json:"avg_loss"`
}

type DailyPnL struct {
	Date   string  `json:"date"`
	PnL    float64 `json:"pnl"`
	Trades int     `json:"trades"`
}

type exportRow struct {
	ID         string  `csv:"id" json:"id"`
	Timestamp  string  `csv:"timestamp" json:"timestamp"`
	Symbol     string  `csv:"symbol" json:"symbol"`
	Action     string  `csv:"action" json:"action"`
	Quantity   int64   `csv:"quantity" json:"quantity"`
	Price      float64 `csv:"price" json:"price"`
	TotalValue float64 `csv:"total_value" json:"total_value"`
	PnL        float64 `csv:"pnl" json:"pnl"`
	Strategy   string  `csv:"strategy" json:"strategy"`
	OrderID    string  `csv:"order_id" json:"order_id"`
}

// Journal is a TradeSink that records in memory before forwarding.
type Journal struct {
	mu     sync.RWMutex
	trades []types.TradeRecord
	sinks  []interfaces.TradeSink
	now    func() time.Time
	create func(name string) (io.WriteCloser, error)
}

var _ interfaces.TradeSink = (*Journal)(nil)

func New(sinks ...interfaces.TradeSink) *Journal {
	return &Journal{sinks: sinks, now: time.Now, create: createFile}
}

func createFile(name string) (io.WriteCloser, error) {
	return os.Create(name)
}

// Record keeps rec even when a downstream sink fails; the sink errors are
// returned joined.
func (j *Journal) Record(ctx context.Context, rec types.TradeRecord) error {
	j.mu.Lock()
	j.trades = append(j.trades, rec)
	j.mu.Unlock()

	var errs []error
	for _, s := range j.sinks {
		if err := s.Record(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (j *Journal) Trades() []types.TradeRecord {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]types.TradeRecord, len(j.trades))
	copy(out, j.trades)
	return out
}

func (j *Journal) Metrics() Metrics {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var m Metrics
	var total, wins, losses decimal.Decimal
	for _, t := range j.trades {
		pnl := decimal.NewFromFloat(t.PnL)
		total = total.Add(pnl)
		switch {
		case pnl.IsPositive():
			m.WinningTrades++
			wins = wins.Add(pnl)
		case pnl.IsNegative():
			m.LosingTrades++
			losses = losses.Add(pnl)
		}
	}
	m.TotalTrades = len(j.trades)
	m.TotalPnL = total.InexactFloat64()
	if m.TotalTrades > 0 {
		m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades)
	}
	if m.WinningTrades > 0 {
		m.AvgWin = wins.Div(decimal.NewFromInt(int64(m.WinningTrades))).InexactFloat64()
	}
	if m.LosingTrades > 0 {
		m.AvgLoss = losses.Div(decimal.NewFromInt(int64(m.LosingTrades))).InexactFloat64()
	}
	return m
}

// Daily sums PnL per IST calendar date, oldest first.
func (j *Journal) Daily() []DailyPnL {
	j.mu.RLock()
	defer j.mu.RUnlock()

	byDate := map[string]decimal.Decimal{}
	counts := map[string]int{}
	for _, t := range j.trades {
		d := t.Timestamp.In(ist).Format("2006-01-02")
		byDate[d] = byDate[d].Add(decimal.NewFromFloat(t.PnL))
		counts[d]++
	}
	out := make([]DailyPnL, 0, len(byDate))
	for d, pnl := range byDate {
		out = append(out, DailyPnL{Date: d, PnL: pnl.InexactFloat64(), Trades: counts[d]})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Date < out[b].Date })
	return out
}

// Export writes the history to dir/trade_journal_<YYYYMMDD_HHMMSS>.<format>
// and returns the path, or "" when there is nothing to export.
func (j *Journal) Export(ctx context.Context, dir, format string) (path string, err error) {
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		return "", fmt.Errorf("%w: export format %q", types.ErrInvalidInput, format)
	}
	trades := j.Trades()
	if len(trades) == 0 {
		return "", nil
	}

	op := logger.StartOperation(ctx, "journal.Export", "format", format, "trades", len(trades))
	defer func() {
		if err != nil {
			op.EndWithError(err)
			return
		}
		op.End("path", path)
	}()

	rows := make([]*exportRow, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, &exportRow{
			ID:         t.ID,
			Timestamp:  t.Timestamp.In(ist).Format(time.RFC3339),
			Symbol:     t.Symbol,
			Action:     string(t.Side),
			Quantity:   t.Quantity,
			Price:      t.Price,
			TotalValue: decimal.NewFromFloat(t.Price).Mul(decimal.NewFromInt(t.Quantity)).InexactFloat64(),
			PnL:        t.PnL,
			Strategy:   t.Reason,
			OrderID:    t.OrderID,
		})
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path = filepath.Join(dir, fmt.Sprintf("trade_journal_%s.%s", j.now().In(ist).Format("20060102_150405"), format))
	f, err := j.create(path)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			path, err = "", fmt.Errorf("close journal export: %w", cerr)
		}
	}()

	if format == "csv" {
		err = gocsv.Marshal(&rows, f)
	} else {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		err = enc.Encode(rows)
	}
	if err != nil {
		return "", fmt.Errorf("export journal: %w", err)
	}
	return path, nil
}

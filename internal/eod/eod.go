package eod

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"signal-trading-bot/internal/types"
)

type eodSummarizer struct {
	trades TradeReader
	now    func() time.Time
}

// SummarizeDay aggregates the day's trade records per symbol into
// <dir>/eod/YYYY-MM-DD.csv. A day without trades writes nothing.
func (s *eodSummarizer) SummarizeDay(_ context.Context, t time.Time) (types.EodReport, error) {
	rep := types.EodReport{Date: t.In(ist).Format("2006-01-02")}
	recs, err := s.trades.ReadDay(t)
	if err != nil {
		return rep, fmt.Errorf("read trades for %s: %w", rep.Date, err)
	}
	if len(recs) == 0 {
		return rep, nil
	}

	aggs := map[string]*aggRow{}
	for _, r := range recs {
		row := aggs[r.Symbol]
		if row == nil {
			row = &aggRow{Symbol: r.Symbol}
			aggs[r.Symbol] = row
		}
		switch r.Side {
		case types.SideBuy:
			row.BuyQty += r.Quantity
			row.BuyValue += float64(r.Quantity) * r.Price
		case types.SideSell:
			row.SellQty += r.Quantity
			row.SellValue += float64(r.Quantity) * r.Price
		}
		row.RealizedPnL += r.PnL
		row.Trades++
	}

	keys := make([]string, 0, len(aggs))
	for k := range aggs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]*csvRow, 0, len(keys)+1)
	var totalBuy, totalSell, totalPnL decimal.Decimal
	for _, k := range keys {
		r := aggs[k]
		rows = append(rows, &csvRow{
			Symbol:      r.Symbol,
			BuyQty:      strconv.FormatInt(r.BuyQty, 10),
			BuyAvg:      avg(r.BuyValue, r.BuyQty),
			SellQty:     strconv.FormatInt(r.SellQty, 10),
			SellAvg:     avg(r.SellValue, r.SellQty),
			RealizedPnL: money(r.RealizedPnL),
			Trades:      strconv.Itoa(r.Trades),
			GrossBuy:    money(r.BuyValue),
			GrossSell:   money(r.SellValue),
		})
		totalBuy = totalBuy.Add(decimal.NewFromFloat(r.BuyValue))
		totalSell = totalSell.Add(decimal.NewFromFloat(r.SellValue))
		totalPnL = totalPnL.Add(decimal.NewFromFloat(r.RealizedPnL))
	}
	rows = append(rows, &csvRow{
		Symbol:      "TOTAL",
		RealizedPnL: totalPnL.StringFixed(2),
		Trades:      strconv.Itoa(len(recs)),
		GrossBuy:    totalBuy.StringFixed(2),
		GrossSell:   totalSell.StringFixed(2),
	})

	outPath := eodCSVPath(s.trades.Dir(), t)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return rep, err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return rep, err
	}
	defer out.Close()
	if err := gocsv.MarshalFile(&rows, out); err != nil {
		return rep, fmt.Errorf("write eod summary: %w", err)
	}

	rep.Path = outPath
	rep.Symbols = len(keys)
	rep.Trades = len(recs)
	rep.RealizedPnL = totalPnL.InexactFloat64()
	return rep, nil
}

func (s *eodSummarizer) SummarizeToday(ctx context.Context) (types.EodReport, error) {
	return s.SummarizeDay(ctx, s.now())
}

// ShouldRunNow is true after market close when today's summary does not
// exist yet.
func (s *eodSummarizer) ShouldRunNow() (bool, string) {
	now := s.now()
	outPath := eodCSVPath(s.trades.Dir(), now)
	if now.After(marketCloseTime(now)) {
		if _, err := os.Stat(outPath); errors.Is(err, os.ErrNotExist) {
			return true, outPath
		}
	}
	return false, outPath
}

func avg(value float64, qty int64) string {
	if qty <= 0 {
		return "0.0000"
	}
	return decimal.NewFromFloat(value).Div(decimal.NewFromInt(qty)).StringFixed(4)
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

package eod

// aggRow accumulates one symbol's trades for the day.
type aggRow struct {
	Symbol      string
	BuyQty      int64
	BuyValue    float64
	SellQty     int64
	SellValue   float64
	RealizedPnL float64
	Trades      int
}

// csvRow is one line of the summary file. Values are preformatted so the
// TOTAL row can leave per-symbol columns blank.
type csvRow struct {
	Symbol      string `csv:"symbol"`
	BuyQty      string `csv:"buy_qty"`
	BuyAvg      string `csv:"buy_avg"`
	SellQty     string `csv:"sell_qty"`
	SellAvg     string `csv:"sell_avg"`
	RealizedPnL string `csv:"realized_pnl"`
	Trades      string `csv:"trades"`
	GrossBuy    string `csv:"gross_buy_value"`
	GrossSell   string `csv:"gross_sell_value"`
}

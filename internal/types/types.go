package types

import "time"

// Side is the direction of an order or fill.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Sign returns +1 for BUY and -1 for SELL.
func (s Side) Sign() int64 {
	if s == SideSell {
		return -1
	}
	return 1
}

// Signal is the discrete output of the indicator rules.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalNone Signal = "NONE"
)

// Tick is a single trade update from a market data feed. Symbol only routes
// the tick to its pipeline; aggregation ignores it.
type Tick struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Size      int64     `json:"size"`
	Timestamp time.Time `json:"timestamp"`
}

// Bar is an OHLCV summary over one interval starting at StartTime.
type Bar struct {
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
	StartTime time.Time `json:"start_time"`
}

// TypicalPrice is (high+low+close)/3.
func (b Bar) TypicalPrice() float64 {
	return (b.High + b.Low + b.Close) / 3
}

// Snapshot holds the indicator values computed from the tail of a bar history.
type Snapshot struct {
	TypicalPrice float64 `json:"typical_price"`
	SMAShort     float64 `json:"sma_short"`
	SMALong      float64 `json:"sma_long"`
	ROC          float64 `json:"roc"`
}

// Position is the net signed exposure in one symbol.
type Position struct {
	Symbol    string  `json:"symbol"`
	SignedQty int64   `json:"signed_qty"`
	AvgPrice  float64 `json:"avg_price"`
}

func (p Position) IsFlat() bool  { return p.SignedQty == 0 }
func (p Position) IsLong() bool  { return p.SignedQty > 0 }
func (p Position) IsShort() bool { return p.SignedQty < 0 }

// OrderIntent is what the gate asks the broker to execute. RefPrice is the
// close of the bar that produced the signal; market orders ignore it. Time
// is the timestamp of the tick that sealed that bar.
type OrderIntent struct {
	Symbol   string    `json:"symbol"`
	Side     Side      `json:"side"`
	Quantity int64     `json:"quantity"`
	RefPrice float64   `json:"ref_price"`
	Tag      string    `json:"tag,omitempty"`
	Time     time.Time `json:"time"`
}

// Fill is a confirmed execution reported back by the broker.
type Fill struct {
	Symbol    string    `json:"symbol"`
	Side      Side      `json:"side"`
	Quantity  int64     `json:"quantity"`
	FillPrice float64   `json:"fill_price"`
	OrderID   string    `json:"order_id"`
	Time      time.Time `json:"time"`
}

// TradeRecord is written to the journal sinks for every applied fill.
type TradeRecord struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Symbol    string    `json:"symbol"`
	Side      Side      `json:"side"`
	Quantity  int64     `json:"quantity"`
	Price     float64   `json:"price"`
	PnL       float64   `json:"pnl"`
	OrderID   string    `json:"order_id"`
	Reason    string    `json:"reason,omitempty"`
}

// OrderReject reports that the broker refused or cancelled an order.
type OrderReject struct {
	Symbol  string `json:"symbol"`
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

type OrderResp struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	// Fill is set when the broker executed synchronously.
	Fill *Fill `json:"fill,omitempty"`
}

// StepResult describes what one tick did to a symbol's pipeline.
type StepResult struct {
	Symbol    string       `json:"symbol"`
	Time      time.Time    `json:"time"`
	Price     float64      `json:"price"`
	SealedBar *Bar         `json:"sealed_bar,omitempty"`
	Snapshot  *Snapshot    `json:"snapshot,omitempty"`
	Signal    Signal       `json:"signal,omitempty"`
	Intent    *OrderIntent `json:"intent,omitempty"`
	Order     *OrderResp   `json:"order,omitempty"`
	Reason    string       `json:"reason,omitempty"`
}

// SymbolStatus is the read model served to the dashboard.
type SymbolStatus struct {
	Symbol      string    `json:"symbol"`
	Active      bool      `json:"active"`
	Quantity    int64     `json:"quantity"`
	Position    Position  `json:"position"`
	State       string    `json:"state"`
	Bars        int       `json:"bars"`
	LastBar     *Bar      `json:"last_bar,omitempty"`
	Snapshot    *Snapshot `json:"snapshot,omitempty"`
	LastSignal  Signal    `json:"last_signal,omitempty"`
	Pending     bool      `json:"pending"`
	RealizedPnL float64   `json:"realized_pnl"`
}

// EodReport describes an end-of-day summary file. Path is empty when the
// day had no trades.
type EodReport struct {
	Date        string  `json:"date"`
	Path        string  `json:"path,omitempty"`
	Symbols     int     `json:"symbols"`
	Trades      int     `json:"trades"`
	RealizedPnL float64 `json:"realized_pnl"`
}

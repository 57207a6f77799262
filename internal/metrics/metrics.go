package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ticks_total", Help: "Market ticks ingested"},
		[]string{"symbol"},
	)
	TicksRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ticks_rejected_total", Help: "Ticks rejected as invalid input"},
		[]string{"symbol"},
	)
	BarsSealed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bars_sealed_total", Help: "Bars sealed by the aggregator"},
		[]string{"symbol"},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signals_total", Help: "Signals derived per sealed bar"},
		[]string{"symbol", "signal"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_total", Help: "Order intents submitted to the broker"},
		[]string{"symbol", "side"},
	)
	OrdersBlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_blocked_total", Help: "Order intents blocked before submission"},
		[]string{"symbol", "reason"},
	)
	FillsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fills_total", Help: "Fills applied to positions"},
		[]string{"symbol", "side"},
	)
	PositionQty = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "position_qty", Help: "Signed position quantity"},
		[]string{"symbol"},
	)
	RealizedPnL = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "realized_pnl", Help: "Cumulative realized PnL"},
		[]string{"symbol"},
	)
)

func init() {
	prometheus.MustRegister(
		TicksTotal, TicksRejected, BarsSealed, SignalsTotal,
		OrdersTotal, OrdersBlocked, FillsTotal, PositionQty, RealizedPnL,
	)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

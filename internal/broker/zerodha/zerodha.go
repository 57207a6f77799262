package zerodha

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/types"
)

type Params struct {
	Mode        string
	APIKey      string
	AccessToken string
	Exchange    string
}

// kiteClient is the part of the Kite Connect REST client the broker uses.
type kiteClient interface {
	PlaceOrder(variety string, params kiteconnect.OrderParams) (kiteconnect.OrderResponse, error)
	GetInstrumentsByExchange(exchange string) (kiteconnect.Instruments, error)
}

// Zerodha places MARKET MIS orders through Kite Connect. In DRY_RUN it
// fills every order immediately at the intent's reference price.
type Zerodha struct {
	p       Params
	kc      kiteClient
	ticker  *tickerManager
	fills   chan types.Fill
	rejects chan types.OrderReject

	mu     sync.Mutex
	orders map[string]types.OrderIntent
}

var _ interfaces.Broker = (*Zerodha)(nil)

func NewZerodha(p Params) *Zerodha {
	z := newZerodha(p, nil)
	if p.APIKey != "" && p.AccessToken != "" {
		kc := kiteconnect.New(p.APIKey)
		kc.SetAccessToken(p.AccessToken)
		z.kc = kc
		z.ticker = newTickerManager(p.APIKey, p.AccessToken, p.Exchange, kc)
		z.ticker.onOrder = z.handleOrderUpdate
	}
	return z
}

func newZerodha(p Params, kc kiteClient) *Zerodha {
	if p.Exchange == "" {
		p.Exchange = "NSE"
	}
	return &Zerodha{
		p:       p,
		kc:      kc,
		fills:   make(chan types.Fill, 64),
		rejects: make(chan types.OrderReject, 64),
		orders:  make(map[string]types.OrderIntent),
	}
}

// Ticker returns the market data stream sharing this broker's session.
func (z *Zerodha) Ticker() (interfaces.TickerManager, error) {
	if z.ticker == nil {
		return nil, errors.New("kite ticker needs KITE_API_KEY and KITE_ACCESS_TOKEN")
	}
	return z.ticker, nil
}

func (z *Zerodha) Fills() <-chan types.Fill          { return z.fills }
func (z *Zerodha) Rejects() <-chan types.OrderReject { return z.rejects }

// Start connects the ticker in LIVE mode so order updates arrive.
func (z *Zerodha) Start(ctx context.Context, symbols []string) error {
	if z.p.Mode != "LIVE" {
		return nil
	}
	if z.ticker == nil {
		return errors.New("missing API key/access token")
	}
	z.ticker.connect(ctx)
	return nil
}

func (z *Zerodha) Stop(ctx context.Context) {
	if z.ticker != nil {
		z.ticker.Stop(ctx)
	}
}

func (z *Zerodha) PlaceOrder(ctx context.Context, intent types.OrderIntent) (types.OrderResp, error) {
	if intent.Quantity <= 0 {
		return types.OrderResp{}, fmt.Errorf("%w: order quantity %d", types.ErrInvalidInput, intent.Quantity)
	}
	if intent.Side != types.SideBuy && intent.Side != types.SideSell {
		return types.OrderResp{}, fmt.Errorf("%w: order side %q", types.ErrInvalidInput, intent.Side)
	}

	if z.p.Mode == "DRY_RUN" {
		if !(intent.RefPrice > 0) {
			return types.OrderResp{}, fmt.Errorf("%w: dry-run order needs a reference price", types.ErrInvalidInput)
		}
		id := "SIM-" + uuid.NewString()
		at := intent.Time
		if at.IsZero() {
			at = time.Now()
		}
		return types.OrderResp{
			OrderID: id,
			Status:  "SIMULATED",
			Message: "dry-run",
			Fill: &types.Fill{
				Symbol:    intent.Symbol,
				Side:      intent.Side,
				Quantity:  intent.Quantity,
				FillPrice: intent.RefPrice,
				OrderID:   id,
				Time:      at,
			},
		}, nil
	}

	if z.kc == nil {
		return types.OrderResp{}, errors.New("missing API key/access token")
	}

	// Hold the lock across the call so an order update racing the response
	// still finds the order.
	z.mu.Lock()
	defer z.mu.Unlock()
	resp, err := z.kc.PlaceOrder("regular", kiteconnect.OrderParams{
		Exchange:        z.p.Exchange,
		Tradingsymbol:   intent.Symbol,
		TransactionType: string(intent.Side),
		Quantity:        int(intent.Quantity),
		Product:         "MIS",
		OrderType:       "MARKET",
		Validity:        "DAY",
		Tag:             intent.Tag,
	})
	if err != nil {
		return types.OrderResp{}, fmt.Errorf("kite place order: %w", err)
	}
	z.orders[resp.OrderID] = intent
	return types.OrderResp{OrderID: resp.OrderID, Status: "PLACED", Message: "ok"}, nil
}

// handleOrderUpdate turns terminal updates of our own orders into fills or
// rejects.
func (z *Zerodha) handleOrderUpdate(order kiteconnect.Order) {
	z.mu.Lock()
	intent, ok := z.orders[order.OrderID]
	if !ok {
		z.mu.Unlock()
		return
	}
	switch order.Status {
	case "COMPLETE", "REJECTED", "CANCELLED":
		delete(z.orders, order.OrderID)
	default:
		z.mu.Unlock()
		return
	}
	z.mu.Unlock()

	if order.Status != "COMPLETE" {
		logger.Warn(context.Background(), "Order not filled",
			"symbol", intent.Symbol,
			"order_id", order.OrderID,
			"status", order.Status,
			"filled_qty", order.FilledQuantity,
			"message", order.StatusMessage,
		)
		// A partly executed order reports what was filled; the fill also
		// clears the pending intent.
		if order.FilledQuantity <= 0 {
			z.rejects <- types.OrderReject{Symbol: intent.Symbol, OrderID: order.OrderID, Reason: order.Status + ": " + order.StatusMessage}
			return
		}
	}

	at := order.ExchangeTimestamp.Time
	if at.IsZero() {
		at = order.OrderTimestamp.Time
	}
	z.fills <- types.Fill{
		Symbol:    intent.Symbol,
		Side:      intent.Side,
		Quantity:  int64(order.FilledQuantity),
		FillPrice: order.AveragePrice,
		OrderID:   order.OrderID,
		Time:      at,
	}
}

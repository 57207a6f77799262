package feed

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/types"
)

const defaultReconnectDelay = 2 * time.Second

type wsTick struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Size   int64   `json:"size"`
	TS     int64   `json:"ts"`
}

// WebSocket reads JSON ticks from a generic websocket endpoint and redials
// after a dropped connection.
type WebSocket struct {
	url            string
	dialer         *websocket.Dialer
	reconnectDelay time.Duration
}

var _ interfaces.TickSource = (*WebSocket)(nil)

func NewWebSocket(url string) *WebSocket {
	return &WebSocket{url: url, dialer: websocket.DefaultDialer, reconnectDelay: defaultReconnectDelay}
}

func (w *WebSocket) Run(ctx context.Context, out chan<- types.Tick) error {
	for attempt := 1; ; attempt++ {
		conn, _, err := w.dialer.DialContext(ctx, w.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Warn(ctx, "Tick websocket dial failed", "url", w.url, "attempt", attempt, "error", err.Error())
		} else {
			logger.Info(ctx, "Tick websocket connected", "url", w.url)
			attempt = 0
			err = w.read(ctx, conn, out)
			if ctx.Err() != nil {
				return nil
			}
			logger.Warn(ctx, "Tick websocket dropped", "url", w.url, "error", err.Error())
		}
		if err := sleepCtx(ctx, w.reconnectDelay); err != nil {
			return nil
		}
	}
}

func (w *WebSocket) read(ctx context.Context, conn *websocket.Conn, out chan<- types.Tick) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
			_ = conn.Close()
		}
	}()

	for {
		kind, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if kind != websocket.TextMessage {
			continue
		}
		var m wsTick
		if err := json.Unmarshal(msg, &m); err != nil {
			logger.Debug(ctx, "Skipping malformed tick message", "error", err.Error())
			continue
		}
		t := types.Tick{
			Symbol:    strings.ToUpper(m.Symbol),
			Price:     m.Price,
			Size:      m.Size,
			Timestamp: time.UnixMilli(m.TS),
		}
		if m.TS == 0 {
			t.Timestamp = time.Time{}
		}
		select {
		case out <- t:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-trading-bot/internal/types"
)

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "ticks.csv")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

type tickSource interface {
	Run(context.Context, chan<- types.Tick) error
}

func collect(ctx context.Context, t *testing.T, src tickSource) []types.Tick {
	t.Helper()
	out := make(chan types.Tick, 16)
	errc := make(chan error, 1)
	go func() { errc <- src.Run(ctx, out) }()

	var got []types.Tick
	for {
		select {
		case tk := <-out:
			got = append(got, tk)
		case err := <-errc:
			require.NoError(t, err)
			for len(out) > 0 {
				got = append(got, <-out)
			}
			return got
		}
	}
}

func TestReplay(t *testing.T) {
	p := writeCSV(t, strings.Join([]string{
		"timestamp,symbol,price,size",
		"2025-01-06T09:15:00+05:30,infy,100.5,10",
		"1736135101000,INFY,100.75,5",
		"not-a-time,INFY,101,1",
		"2025-01-06T09:15:02+05:30,TCS,3500,2",
	}, "\n"))

	got := collect(context.Background(), t, NewReplay(p, 0))
	require.Len(t, got, 3)
	assert.Equal(t, "INFY", got[0].Symbol)
	assert.Equal(t, 100.5, got[0].Price)
	assert.Equal(t, int64(10), got[0].Size)
	assert.Equal(t, int64(1736135101000), got[1].Timestamp.UnixMilli())
	assert.Equal(t, "TCS", got[2].Symbol)
}

func TestReplayPacing(t *testing.T) {
	p := writeCSV(t, "timestamp,symbol,price,size\n1000,A,1,1\n1200,A,1,1\n")
	start := time.Now()
	got := collect(context.Background(), t, NewReplay(p, 2))
	require.Len(t, got, 2)
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestReplayMissingFile(t *testing.T) {
	err := NewReplay(filepath.Join(t.TempDir(), "none.csv"), 0).Run(context.Background(), make(chan types.Tick))
	assert.Error(t, err)
}

func TestReplayStopsOnCancel(t *testing.T) {
	p := writeCSV(t, "timestamp,symbol,price,size\n1000,A,1,1\n2000,A,1,1\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// unbuffered and never read: Run must still return
	assert.NoError(t, NewReplay(p, 0).Run(ctx, make(chan types.Tick)))
}

func TestWebSocketFeed(t *testing.T) {
	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		_ = c.WriteMessage(websocket.TextMessage, []byte(`{"symbol":"infy","price":101.5,"size":3,"ts":1736135100000}`))
		_ = c.WriteMessage(websocket.TextMessage, []byte(`{bad json`))
		_ = c.WriteMessage(websocket.TextMessage, []byte(`{"symbol":"TCS","price":3500,"size":1,"ts":1736135101000}`))
		// hold the connection until the client goes away
		_, _, _ = c.ReadMessage()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ws := NewWebSocket("ws" + strings.TrimPrefix(srv.URL, "http"))
	out := make(chan types.Tick, 4)
	errc := make(chan error, 1)
	go func() { errc <- ws.Run(ctx, out) }()

	var got []types.Tick
	timeout := time.After(5 * time.Second)
	for len(got) < 2 {
		select {
		case tk := <-out:
			got = append(got, tk)
		case <-timeout:
			t.Fatal("timed out waiting for ticks")
		}
	}
	cancel()
	require.NoError(t, <-errc)

	assert.Equal(t, "INFY", got[0].Symbol)
	assert.Equal(t, 101.5, got[0].Price)
	assert.Equal(t, int64(1736135100000), got[0].Timestamp.UnixMilli())
	assert.Equal(t, "TCS", got[1].Symbol)
}

func TestWebSocketGivesUpOnCancel(t *testing.T) {
	ws := NewWebSocket("ws://127.0.0.1:1/none")
	ws.reconnectDelay = 10 * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(t, ws.Run(ctx, make(chan types.Tick)))
}

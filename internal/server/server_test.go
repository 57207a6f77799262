package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-trading-bot/internal/journal"
	"signal-trading-bot/internal/types"
)

type stubEngine struct {
	active map[string]int64
	bars   []types.Bar
	lastN  int
}

func (s *stubEngine) check(sym string) error {
	if _, ok := s.active[sym]; !ok {
		return fmt.Errorf("%w: %s", types.ErrUnknownSymbol, sym)
	}
	return nil
}

func (s *stubEngine) OnTick(context.Context, types.Tick) (*types.StepResult, error) { return nil, nil }
func (s *stubEngine) OnFill(context.Context, types.Fill) error                      { return nil }
func (s *stubEngine) OnReject(context.Context, string, string)                      {}

func (s *stubEngine) Start(_ context.Context, sym string, qty int64) error {
	if err := s.check(sym); err != nil {
		return err
	}
	if qty == 0 {
		qty = 1
	}
	s.active[sym] = qty
	return nil
}

func (s *stubEngine) Stop(_ context.Context, sym string) error {
	if err := s.check(sym); err != nil {
		return err
	}
	s.active[sym] = 0
	return nil
}

func (s *stubEngine) Status(sym string) (types.SymbolStatus, error) {
	if err := s.check(sym); err != nil {
		return types.SymbolStatus{}, err
	}
	return types.SymbolStatus{Symbol: sym, Active: s.active[sym] > 0, Quantity: s.active[sym]}, nil
}

func (s *stubEngine) Bars(sym string, n int) ([]types.Bar, error) {
	if err := s.check(sym); err != nil {
		return nil, err
	}
	s.lastN = n
	return s.bars, nil
}

func (s *stubEngine) Symbols() []string { return []string{"INFY", "TCS"} }

func setup(t *testing.T) (*stubEngine, *journal.Journal, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	eng := &stubEngine{active: map[string]int64{"INFY": 0, "TCS": 0}, bars: []types.Bar{{Open: 1, High: 2, Low: 1, Close: 2, Volume: 3}}}
	j := journal.New()
	return eng, j, New(":0", eng, j).router
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthAndMetrics(t *testing.T) {
	_, _, r := setup(t)

	w := do(r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","symbols":2}`, w.Body.String())

	w = do(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestSymbolRoutes(t *testing.T) {
	eng, _, r := setup(t)

	w := do(r, http.MethodGet, "/api/symbols", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []types.SymbolStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	w = do(r, http.MethodGet, "/api/symbols/NOPE", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPost, "/api/symbols/INFY/start", `{"quantity":25}`)
	require.Equal(t, http.StatusOK, w.Code)
	var st types.SymbolStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.True(t, st.Active)
	assert.Equal(t, int64(25), st.Quantity)

	w = do(r, http.MethodPost, "/api/symbols/TCS/start", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), eng.active["TCS"])

	w = do(r, http.MethodPost, "/api/symbols/INFY/start", `{"quantity":-1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(r, http.MethodPost, "/api/symbols/INFY/start", `{"quantity":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/symbols/INFY/stop", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, eng.active["INFY"])
}

func TestBarsRoute(t *testing.T) {
	eng, _, r := setup(t)

	w := do(r, http.MethodGet, "/api/symbols/INFY/bars", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, defaultBarLimit, eng.lastN)
	var bars []types.Bar
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bars))
	assert.Len(t, bars, 1)

	do(r, http.MethodGet, "/api/symbols/INFY/bars?limit=5", "")
	assert.Equal(t, 5, eng.lastN)

	w = do(r, http.MethodGet, "/api/symbols/INFY/bars?limit=x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJournalRoutes(t *testing.T) {
	_, j, r := setup(t)
	require.NoError(t, j.Record(context.Background(), types.TradeRecord{ID: "1", Symbol: "INFY", Side: types.SideSell, Quantity: 1, Price: 10, PnL: 4}))

	w := do(r, http.MethodGet, "/api/journal/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	var m journal.Metrics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, 1, m.TotalTrades)
	assert.Equal(t, 1.0, m.WinRate)

	w = do(r, http.MethodGet, "/api/journal/trades", "")
	assert.Contains(t, w.Body.String(), `"id":"1"`)

	w = do(r, http.MethodGet, "/api/journal/daily", "")
	assert.Contains(t, w.Body.String(), `"pnl":4`)
}

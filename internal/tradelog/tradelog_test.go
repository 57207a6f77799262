package tradelog

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-trading-bot/internal/types"
)

func TestFileSinkRecordAndReadDay(t *testing.T) {
	s := NewFileSink(t.TempDir())
	// 20:00 UTC is already the next day in IST
	ts := time.Date(2025, 3, 3, 20, 0, 0, 0, time.UTC)

	recs := []types.TradeRecord{
		{ID: "a", Timestamp: ts, Symbol: "INFY", Side: types.SideBuy, Quantity: 10, Price: 100},
		{ID: "b", Timestamp: ts.Add(time.Minute), Symbol: "INFY", Side: types.SideSell, Quantity: 10, Price: 110, PnL: 100},
	}
	for _, r := range recs {
		require.NoError(t, s.Record(context.Background(), r))
	}

	assert.Equal(t, filepath.Join(s.Dir(), "2025-03-04.txt"), s.DailyPath(ts))
	got, err := s.ReadDay(ts)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[1].ID)
	assert.Equal(t, 100.0, got[1].PnL)
	assert.True(t, got[0].Timestamp.Equal(ts))
}

func TestReadDayMissingAndMalformed(t *testing.T) {
	s := NewFileSink(t.TempDir())
	now := time.Now()

	got, err := s.ReadDay(now)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, os.WriteFile(s.DailyPath(now), []byte("garbage\n{\"id\":\"ok\",\"quantity\":1}\n"), 0o644))
	got, err = s.ReadDay(now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].ID)
}

func TestAppendSignal(t *testing.T) {
	s := NewFileSink(t.TempDir())
	at := time.Date(2025, 3, 4, 4, 0, 0, 0, time.UTC)
	require.NoError(t, s.AppendSignal(at, SignalEntry{Symbol: "TCS", Signal: types.SignalBuy, Price: 3500}))

	b, err := os.ReadFile(filepath.Join(s.Dir(), "signals", "2025-03-04.txt"))
	require.NoError(t, err)
	line := string(b)
	assert.Contains(t, line, `"signal":"BUY"`)
	assert.Contains(t, line, `"time":"2025-03-04 09:30:00"`)
}

func TestCompressOlder(t *testing.T) {
	dir := t.TempDir()
	s := NewFileSink(dir)
	old := filepath.Join(dir, "2020-01-01.txt")
	fresh := filepath.Join(dir, "2099-01-01.txt")
	require.NoError(t, os.WriteFile(old, []byte("old line\n"), 0o644))
	require.NoError(t, os.WriteFile(fresh, []byte("new line\n"), 0o644))
	past := time.Now().AddDate(0, 0, -10)
	require.NoError(t, os.Chtimes(old, past, past))

	require.NoError(t, s.CompressOlder(3))

	_, err := os.Stat(old)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)

	f, err := os.Open(old + ".gz")
	require.NoError(t, err)
	defer f.Close()
	gr, err := gzip.NewReader(f)
	require.NoError(t, err)
	b, err := io.ReadAll(gr)
	require.NoError(t, err)
	assert.Equal(t, "old line\n", string(b))
}

func TestCompressOlderDisabled(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "2020-01-01.txt")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	past := time.Now().AddDate(0, 0, -100)
	require.NoError(t, os.Chtimes(p, past, past))

	require.NoError(t, NewFileSink(dir).CompressOlder(0))
	_, err := os.Stat(p)
	assert.NoError(t, err)
}

type fakeExec struct {
	sql  []string
	args [][]any
	err  error
}

func (f *fakeExec) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.sql = append(f.sql, sql)
	f.args = append(f.args, args)
	return pgconn.NewCommandTag("INSERT 0 1"), f.err
}

func TestPgSinkRecord(t *testing.T) {
	db := &fakeExec{}
	s := &PgSink{db: db}
	require.NoError(t, s.migrate(context.Background()))

	rec := types.TradeRecord{ID: "id-1", Symbol: "INFY", Side: types.SideSell, Quantity: 5, Price: 99.5, PnL: -2.5, OrderID: "SIM-1"}
	require.NoError(t, s.Record(context.Background(), rec))

	require.Len(t, db.sql, 2)
	assert.True(t, strings.Contains(db.sql[0], "CREATE TABLE IF NOT EXISTS trade_records"))
	assert.Contains(t, db.sql[1], "ON CONFLICT (id) DO NOTHING")
	assert.Equal(t, []any{"id-1", rec.Timestamp, "INFY", "SELL", int64(5), 99.5, -2.5, "SIM-1", ""}, db.args[1])
	s.Close()
}

func TestPgSinkRecordError(t *testing.T) {
	db := &fakeExec{err: assert.AnError}
	s := &PgSink{db: db}
	err := s.Record(context.Background(), types.TradeRecord{ID: "x"})
	assert.ErrorIs(t, err, assert.AnError)
}

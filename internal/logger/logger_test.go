package logger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-trading-bot/internal/types"
)

func TestFileLoggingWritesDatedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitWithConfig(LogConfig{Level: "INFO", Format: "json", FileLogging: true, Dir: dir}))
	t.Cleanup(func() { _ = Sync() })

	ctx := context.Background()
	Info(ctx, "pipeline ready", "symbols", 2)
	Debug(ctx, "hidden debug line")
	ErrorWithErr(ctx, "order failed", errors.New("rejected"), "symbol", "INFY")
	Trade(ctx, types.TradeRecord{ID: "t-1", Symbol: "INFY", Side: types.SideBuy, Quantity: 5, Price: 10})
	require.NoError(t, Sync())

	p := filepath.Join(dir, "trading_"+time.Now().Format("20060102")+".log")
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	out := string(b)

	assert.Contains(t, out, `"msg":"pipeline ready"`)
	assert.Contains(t, out, `"symbols":2`)
	assert.Contains(t, out, `"error":"rejected"`)
	assert.Contains(t, out, `"trade_id":"t-1"`)
	assert.NotContains(t, out, "hidden debug line")
}

func TestDetailedLoggingEnablesDebug(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitWithConfig(LogConfig{Level: "INFO", Format: "text", DetailedLogging: true, FileLogging: true, Dir: dir}))
	t.Cleanup(func() { _ = Sync() })

	assert.True(t, IsDebugEnabled())
	Debug(context.Background(), "visible debug line")
	require.NoError(t, Sync())

	b, err := os.ReadFile(filepath.Join(dir, "trading_"+time.Now().Format("20060102")+".log"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "visible debug line")
	assert.Contains(t, string(b), "logger_test.go")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, "debug", parseLogLevel("debug").String())
	assert.Equal(t, "warn", parseLogLevel("WARN").String())
	assert.Equal(t, "info", parseLogLevel("nonsense").String())
}

package feed

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/types"
)

type tickRow struct {
	Timestamp string  `csv:"timestamp"`
	Symbol    string  `csv:"symbol"`
	Price     float64 `csv:"price"`
	Size      int64   `csv:"size"`
}

// Replay plays a recorded tick CSV back. Speed scales the gaps between
// ticks; 0 sends them as fast as the consumer takes them.
type Replay struct {
	path  string
	speed float64
}

var _ interfaces.TickSource = (*Replay)(nil)

func NewReplay(path string, speed float64) *Replay {
	return &Replay{path: path, speed: speed}
}

func (r *Replay) Run(ctx context.Context, out chan<- types.Tick) error {
	f, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("open replay file: %w", err)
	}
	defer f.Close()

	var rows []*tickRow
	if err := gocsv.Unmarshal(f, &rows); err != nil {
		return fmt.Errorf("parse replay file %s: %w", r.path, err)
	}
	logger.Info(ctx, "Replaying ticks", "path", r.path, "rows", len(rows), "speed", r.speed)

	var prev time.Time
	for i, row := range rows {
		ts, err := parseTimestamp(row.Timestamp)
		if err != nil {
			logger.Warn(ctx, "Skipping replay row", "row", i+2, "error", err.Error())
			continue
		}
		if r.speed > 0 && !prev.IsZero() && ts.After(prev) {
			if err := sleepCtx(ctx, time.Duration(float64(ts.Sub(prev))/r.speed)); err != nil {
				return nil
			}
		}
		prev = ts

		t := types.Tick{Symbol: strings.ToUpper(strings.TrimSpace(row.Symbol)), Price: row.Price, Size: row.Size, Timestamp: ts}
		select {
		case out <- t:
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}

// parseTimestamp accepts RFC3339 or unix milliseconds.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q is neither RFC3339 nor unix ms", s)
	}
	return t, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package tradelog

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/types"
)

// IST is the zone trade files are dated in.
var IST = time.FixedZone("IST", 19800)

// SignalEntry is one evaluated bar in the signal log.
type SignalEntry struct {
	Time     string         `json:"time"`
	Symbol   string         `json:"symbol"`
	Signal   types.Signal   `json:"signal"`
	Price    float64        `json:"price"`
	Snapshot types.Snapshot `json:"snapshot"`
	Action   string         `json:"action,omitempty"`
}

// FileSink appends trade records as JSON lines into <dir>/YYYY-MM-DD.txt.
type FileSink struct {
	mu  sync.Mutex
	dir string
}

var _ interfaces.TradeSink = (*FileSink)(nil)

func NewFileSink(dir string) *FileSink {
	if dir == "" {
		dir = "logs"
	}
	return &FileSink{dir: dir}
}

func (s *FileSink) Dir() string { return s.dir }

// DailyPath is the trade file for the IST date of t.
func (s *FileSink) DailyPath(t time.Time) string {
	return filepath.Join(s.dir, t.In(IST).Format("2006-01-02")+".txt")
}

func (s *FileSink) signalsPath(t time.Time) string {
	return filepath.Join(s.dir, "signals", t.In(IST).Format("2006-01-02")+".txt")
}

func (s *FileSink) Record(_ context.Context, rec types.TradeRecord) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	return s.appendLine(s.DailyPath(rec.Timestamp), rec)
}

// AppendSignal logs an evaluated bar, whether or not it led to an order.
func (s *FileSink) AppendSignal(at time.Time, e SignalEntry) error {
	e.Time = at.In(IST).Format("2006-01-02 15:04:05")
	return s.appendLine(s.signalsPath(at), e)
}

func (s *FileSink) appendLine(p string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// ReadDay loads the trade records of the IST date of t. A missing file
// yields no records and no error. Malformed lines are skipped.
func (s *FileSink) ReadDay(t time.Time) ([]types.TradeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.Open(s.DailyPath(t))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []types.TradeRecord
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec types.TradeRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, sc.Err()
}

// CompressOlder gzips .txt logs last modified more than retentionDays ago.
func (s *FileSink) CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return filepath.WalkDir(s.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".txt" {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		gz := p + ".gz"
		// an earlier run already compressed it
		if _, err := os.Stat(gz); err == nil {
			_ = os.Remove(p)
			return nil
		}
		if err := gzipFile(p, gz); err != nil {
			_ = os.Remove(gz)
			return nil
		}
		_ = os.Remove(p)
		return nil
	})
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		_ = gw.Close()
		_ = out.Close()
		return err
	}
	if err := gw.Close(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

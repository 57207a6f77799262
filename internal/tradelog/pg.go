package tradelog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/types"
)

const createTradesTable = `
CREATE TABLE IF NOT EXISTS trade_records (
	id         UUID PRIMARY KEY,
	ts         TIMESTAMPTZ NOT NULL,
	symbol     TEXT NOT NULL,
	side       TEXT NOT NULL,
	quantity   BIGINT NOT NULL,
	price      DOUBLE PRECISION NOT NULL,
	pnl        DOUBLE PRECISION NOT NULL,
	order_id   TEXT NOT NULL DEFAULT '',
	reason     TEXT NOT NULL DEFAULT ''
)`

const insertTrade = `
INSERT INTO trade_records (id, ts, symbol, side, quantity, price, pnl, order_id, reason)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO NOTHING`

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PgSink stores trade records in Postgres.
type PgSink struct {
	db   execer
	pool *pgxpool.Pool
}

var _ interfaces.TradeSink = (*PgSink)(nil)

// NewPgSink connects and makes sure the trade table exists.
func NewPgSink(ctx context.Context, dsn string) (*PgSink, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect trade store: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping trade store: %w", err)
	}
	s := &PgSink{db: pool, pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PgSink) migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createTradesTable); err != nil {
		return fmt.Errorf("create trade_records: %w", err)
	}
	return nil
}

func (s *PgSink) Record(ctx context.Context, rec types.TradeRecord) error {
	_, err := s.db.Exec(ctx, insertTrade,
		rec.ID, rec.Timestamp, rec.Symbol, string(rec.Side), rec.Quantity,
		rec.Price, rec.PnL, rec.OrderID, rec.Reason,
	)
	if err != nil {
		return fmt.Errorf("insert trade %s: %w", rec.ID, err)
	}
	return nil
}

func (s *PgSink) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Package postgres is the reference persistence.Store implementation over
// PostgreSQL, grounded on the teacher's internal/persistence/postgres
// repository idiom (sqlx.DB + per-query context timeout + pq error
// inspection), generalized from trade/regime/premove rows to OHLC bars.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sawpanic/marketanalysis/internal/ohlc"
	"github.com/sawpanic/marketanalysis/internal/persistence"
)

// Store implements persistence.Store over a bars table keyed by
// (symbol, timeframe, bar_time).
type Store struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewStore builds a Store over an already-opened connection pool.
func NewStore(db *sqlx.DB, timeout time.Duration) *Store {
	return &Store{db: db, timeout: timeout}
}

type barRow struct {
	BarTime  time.Time `db:"bar_time"`
	Open     float64   `db:"open"`
	High     float64   `db:"high"`
	Low      float64   `db:"low"`
	Close    float64   `db:"close"`
	Volume   float64   `db:"volume"`
	HasVol   bool      `db:"has_volume"`
}

// GetBars implements persistence.Store.
func (s *Store) GetBars(ctx context.Context, symbol string, tf ohlc.Timeframe, start, end time.Time, limit int) ([]ohlc.Bar, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if limit <= 0 {
		limit = 1000
	}

	query := `
		SELECT bar_time, open, high, low, close, volume, has_volume
		FROM bars
		WHERE symbol = $1 AND timeframe = $2
		  AND ($3::timestamptz IS NULL OR bar_time >= $3)
		  AND ($4::timestamptz IS NULL OR bar_time <= $4)
		ORDER BY bar_time ASC
		LIMIT $5`

	var startArg, endArg interface{}
	if !start.IsZero() {
		startArg = start
	}
	if !end.IsZero() {
		endArg = end
	}

	rows, err := s.db.QueryxContext(ctx, query, symbol, string(tf), startArg, endArg, limit)
	if err != nil {
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	var bars []ohlc.Bar
	for rows.Next() {
		var r barRow
		if err := rows.StructScan(&r); err != nil {
			return nil, fmt.Errorf("scan bar row: %w", err)
		}
		bars = append(bars, ohlc.Bar{
			Time: r.BarTime, Open: r.Open, High: r.High, Low: r.Low,
			Close: r.Close, Volume: r.Volume, HasVolume: r.HasVol,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bar rows: %w", err)
	}
	return bars, nil
}

// StoreBars implements persistence.Store: upsert by (symbol, timeframe,
// bar_time), overwriting OHLCV and provider on conflict.
func (s *Store) StoreBars(ctx context.Context, symbol string, tf ohlc.Timeframe, bars []ohlc.Bar, providerName string) error {
	if len(bars) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout*time.Duration(len(bars)/200+1))
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bars (symbol, timeframe, bar_time, open, high, low, close, volume, has_volume, provider)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (symbol, timeframe, bar_time) DO UPDATE SET
			open = EXCLUDED.open, high = EXCLUDED.high, low = EXCLUDED.low,
			close = EXCLUDED.close, volume = EXCLUDED.volume,
			has_volume = EXCLUDED.has_volume, provider = EXCLUDED.provider`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, symbol, string(tf), b.Time, b.Open, b.High, b.Low, b.Close, b.Volume, b.HasVolume, providerName); err != nil {
			if pqErr, ok := err.(*pq.Error); ok {
				return fmt.Errorf("store bar (pq code %s): %w", pqErr.Code, err)
			}
			return fmt.Errorf("store bar: %w", err)
		}
	}

	return tx.Commit()
}

// GetAvailableSymbols implements persistence.Store.
func (s *Store) GetAvailableSymbols(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var symbols []string
	err := s.db.SelectContext(ctx, &symbols, `SELECT DISTINCT symbol FROM bars ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("query available symbols: %w", err)
	}
	return symbols, nil
}

// GetAvailableTimeframes implements persistence.Store.
func (s *Store) GetAvailableTimeframes(ctx context.Context, symbol string) ([]ohlc.Timeframe, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var raw []string
	err := s.db.SelectContext(ctx, &raw, `SELECT DISTINCT timeframe FROM bars WHERE symbol = $1 ORDER BY timeframe`, symbol)
	if err != nil {
		return nil, fmt.Errorf("query available timeframes: %w", err)
	}
	out := make([]ohlc.Timeframe, len(raw))
	for i, tf := range raw {
		out[i] = ohlc.Timeframe(tf)
	}
	return out, nil
}

// GetTimeRange implements persistence.Store.
func (s *Store) GetTimeRange(ctx context.Context, symbol string, tf ohlc.Timeframe) (time.Time, time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var start, end sql.NullTime
	err := s.db.QueryRowxContext(ctx, `
		SELECT MIN(bar_time), MAX(bar_time) FROM bars WHERE symbol = $1 AND timeframe = $2`,
		symbol, string(tf)).Scan(&start, &end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("query time range: %w", err)
	}
	return start.Time, end.Time, nil
}

// GetIngestionStatus implements persistence.Store.
func (s *Store) GetIngestionStatus(ctx context.Context, symbol string, tf ohlc.Timeframe) (persistence.IngestionStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var lastBarTime sql.NullTime
	var lastProvider sql.NullString
	var barCount int64

	err := s.db.QueryRowxContext(ctx, `
		SELECT MAX(bar_time), COUNT(*),
			(SELECT provider FROM bars b2 WHERE b2.symbol = $1 AND b2.timeframe = $2 ORDER BY bar_time DESC LIMIT 1)
		FROM bars WHERE symbol = $1 AND timeframe = $2`,
		symbol, string(tf)).Scan(&lastBarTime, &barCount, &lastProvider)
	if err != nil {
		return persistence.IngestionStatus{}, fmt.Errorf("query ingestion status: %w", err)
	}

	return persistence.IngestionStatus{
		Symbol:       symbol,
		Timeframe:    tf,
		LastBarTime:  lastBarTime.Time,
		LastProvider: lastProvider.String,
		BarCount:     barCount,
	}, nil
}

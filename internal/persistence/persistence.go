// Package persistence defines the storage contract (spec.md §6). The core
// depends only on this interface; internal/persistence/postgres supplies a
// reference implementation, but the interface itself is what
// MarketDataService and the backtester's DataLoader consume.
package persistence

import (
	"context"
	"time"

	"github.com/sawpanic/marketanalysis/internal/ohlc"
)

// IngestionStatus reports the last known ingestion state for a
// (symbol, timeframe) pair.
type IngestionStatus struct {
	Symbol       string
	Timeframe    ohlc.Timeframe
	LastBarTime  time.Time
	LastProvider string
	BarCount     int64
}

// Store is the persistence adapter contract. Implementations own durability
// only; they never make acquisition decisions (cache, rate limiting,
// fallback ordering all live in internal/marketdata).
type Store interface {
	// GetBars returns up to `limit` bars for (symbol, timeframe) within the
	// optional [start, end] window (zero time means unbounded on that side).
	GetBars(ctx context.Context, symbol string, tf ohlc.Timeframe, start, end time.Time, limit int) ([]ohlc.Bar, error)

	// StoreBars upserts bars for (symbol, timeframe), uniqueness by
	// (symbol, timeframe, bar_time); on conflict, OHLCV and provider are
	// overwritten.
	StoreBars(ctx context.Context, symbol string, tf ohlc.Timeframe, bars []ohlc.Bar, providerName string) error

	GetAvailableSymbols(ctx context.Context) ([]string, error)
	GetAvailableTimeframes(ctx context.Context, symbol string) ([]ohlc.Timeframe, error)
	GetTimeRange(ctx context.Context, symbol string, tf ohlc.Timeframe) (start, end time.Time, err error)
	GetIngestionStatus(ctx context.Context, symbol string, tf ohlc.Timeframe) (IngestionStatus, error)
}

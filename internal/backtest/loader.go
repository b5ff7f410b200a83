// Package backtest implements spec.md §4.7: bar-by-bar historical replay,
// signal detection, trade simulation, performance metrics, and walk-forward
// parameter optimization. There is no direct teacher analogue for a
// backtesting engine in sawpanic-cryptorun; the package follows the plain-
// struct / pure-function idiom the teacher's internal/domain packages share.
// Trade identifiers are derived from the entry bar index and direction, so
// identical replays produce identical IDs; there is no run identifier.
package backtest

import (
	"context"
	"sync"
	"time"

	"github.com/sawpanic/marketanalysis/internal/apperr"
	"github.com/sawpanic/marketanalysis/internal/marketdata"
	"github.com/sawpanic/marketanalysis/internal/ohlc"
	"github.com/sawpanic/marketanalysis/internal/persistence"
)

// DataLoader owns a (symbol, timeframe) -> bars cache, falling back to
// persistence and then the live market-data service (spec.md §4.7).
type DataLoader struct {
	mu      sync.Mutex
	cache   map[string][]ohlc.Bar
	market  *marketdata.Service
	store   persistence.Store
}

// NewDataLoader builds a DataLoader. store may be nil.
func NewDataLoader(market *marketdata.Service, store persistence.Store) *DataLoader {
	return &DataLoader{cache: make(map[string][]ohlc.Bar), market: market, store: store}
}

func loaderKey(symbol string, tf ohlc.Timeframe) string {
	return symbol + ":" + string(tf)
}

func filterByDate(bars []ohlc.Bar, start, end time.Time) []ohlc.Bar {
	out := make([]ohlc.Bar, 0, len(bars))
	for _, b := range bars {
		if !start.IsZero() && b.Time.Before(start) {
			continue
		}
		if !end.IsZero() && b.Time.After(end) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func periodsFor(tf ohlc.Timeframe, start, end time.Time) int {
	step := tfDuration(tf)
	if step <= 0 {
		return 1000
	}
	n := int(end.Sub(start)/step) + 1
	if n < 1 {
		n = 1
	}
	if n > 1000 {
		n = 1000
	}
	return n
}

// tfDuration mirrors the step size used by the simulated provider and the
// cache-TTL table's timeframe ordering.
func tfDuration(tf ohlc.Timeframe) time.Duration {
	switch tf {
	case ohlc.TF1m:
		return time.Minute
	case ohlc.TF3m:
		return 3 * time.Minute
	case ohlc.TF5m:
		return 5 * time.Minute
	case ohlc.TF15m:
		return 15 * time.Minute
	case ohlc.TF1h:
		return time.Hour
	case ohlc.TF4h:
		return 4 * time.Hour
	case ohlc.TF1d:
		return 24 * time.Hour
	case ohlc.TF1w:
		return 7 * 24 * time.Hour
	case ohlc.TF1M:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

// LoadData implements DataLoader.load_data (spec.md §4.7).
func (l *DataLoader) LoadData(ctx context.Context, symbol string, tf ohlc.Timeframe, start, end time.Time) ([]ohlc.Bar, error) {
	key := loaderKey(symbol, tf)

	l.mu.Lock()
	cached, ok := l.cache[key]
	l.mu.Unlock()
	if ok {
		return filterByDate(cached, start, end), nil
	}

	if l.store != nil {
		bars, err := l.store.GetBars(ctx, symbol, tf, start, end, 0)
		if err == nil && len(bars) > 0 {
			l.mu.Lock()
			l.cache[key] = bars
			l.mu.Unlock()
			return filterByDate(bars, start, end), nil
		}
	}

	if l.market != nil {
		periods := periodsFor(tf, start, end)
		result := l.market.Get(ctx, symbol, tf, periods, false)
		if result.Success && len(result.Data) > 0 {
			l.mu.Lock()
			l.cache[key] = result.Data
			l.mu.Unlock()
			return filterByDate(result.Data, start, end), nil
		}
	}

	return nil, apperr.InvalidArgument("no data source yielded bars for " + key)
}

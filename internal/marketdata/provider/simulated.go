package provider

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/sawpanic/marketanalysis/internal/apperr"
	"github.com/sawpanic/marketanalysis/internal/marketdata"
	"github.com/sawpanic/marketanalysis/internal/ohlc"
)

// Simulated is the built-in fallback provider of spec.md §4.4: it must
// always succeed for a fixed set of supported symbols and every supported
// timeframe, generating deterministic-enough synthetic OHLC. Grounded on
// the deterministic-fixture idiom of exchanges/kraken/mock.go in the
// teacher repo, extended from an httptest timeout fixture into a full
// seeded-PRNG Provider implementation (no live network involved at all).
type Simulated struct {
	symbols map[string]float64 // symbol -> base price
}

// NewSimulated constructs the simulated provider with a fixed symbol set.
func NewSimulated() *Simulated {
	return &Simulated{
		symbols: map[string]float64{
			"BTCUSD": 60000,
			"ETHUSD": 3000,
			"DJI":    38000,
			"SPX":    5200,
		},
	}
}

func (s *Simulated) Name() string              { return "simulated" }
func (s *Simulated) Priority() int             { return marketdata.SimulatedPriority }
func (s *Simulated) RateLimitPerHour() float64 { return math.Inf(1) }
func (s *Simulated) RequiresAPIKey() bool      { return false }
func (s *Simulated) IsAvailable() bool         { return true }

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
		return time.Hour
	}
}

// seedFor derives a deterministic seed from symbol+timeframe so repeated
// calls within a process return the same synthetic series.
func seedFor(symbol string, tf ohlc.Timeframe) int64 {
	h := int64(2166136261)
	for _, c := range symbol + ":" + string(tf) {
		h = (h ^ int64(c)) * 16777619
	}
	if h < 0 {
		h = -h
	}
	return h
}

// FetchOHLC generates `periods` deterministic synthetic bars ending at the
// current time, for any symbol in the fixed supported set and any
// supported timeframe.
func (s *Simulated) FetchOHLC(ctx context.Context, symbol string, tf ohlc.Timeframe, periods int) (marketdata.Result, error) {
	base, ok := s.symbols[symbol]
	if !ok {
		err := apperr.InvalidArgument(fmt.Sprintf("simulated: unsupported symbol %q", symbol))
		return marketdata.Result{Success: false, Error: err.Error()}, err
	}
	if !tf.Valid() {
		err := apperr.InvalidArgument(fmt.Sprintf("simulated: unsupported timeframe %q", tf))
		return marketdata.Result{Success: false, Error: err.Error()}, err
	}
	if periods <= 0 {
		periods = 100
	}

	rng := rand.New(rand.NewSource(seedFor(symbol, tf)))
	step := tfDuration(tf)
	end := time.Now().UTC().Truncate(time.Minute)
	start := end.Add(-step * time.Duration(periods))

	bars := make([]ohlc.Bar, 0, periods)
	price := base
	for i := 0; i < periods; i++ {
		t := start.Add(step * time.Duration(i))
		drift := (rng.Float64() - 0.5) * base * 0.01
		open := price
		close := open + drift
		high := math.Max(open, close) + rng.Float64()*base*0.003
		low := math.Min(open, close) - rng.Float64()*base*0.003
		volume := base * (1 + rng.Float64())

		bars = append(bars, ohlc.Bar{
			Time: t, Open: open, High: high, Low: low, Close: close,
			Volume: volume, HasVolume: true,
		})
		price = close
	}

	return marketdata.Result{
		Success:      true,
		Data:         bars,
		ProviderName: s.Name(),
		MarketStatus: marketdata.MarketOpen,
	}, nil
}

package provider

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/sawpanic/marketanalysis/internal/marketdata"
	"github.com/sawpanic/marketanalysis/internal/ohlc"
)

// WithBreaker wraps a Provider in a per-provider circuit breaker, grounded
// on infra/breakers/breakers.go in the teacher repo. Opening the breaker
// after repeated failures lets the chain skip a dead provider instantly
// instead of paying its per-call timeout on every fallback attempt; it is
// complementary to, not a replacement for, the priority-ordered fallback
// and rate limiter of spec.md §4.4.
type WithBreaker struct {
	inner   marketdata.Provider
	breaker *gobreaker.CircuitBreaker
}

// NewWithBreaker builds a circuit-breaker-wrapped Provider.
func NewWithBreaker(inner marketdata.Provider) *WithBreaker {
	settings := gobreaker.Settings{
		Name:     inner.Name(),
		Interval: 60 * time.Second,
		Timeout:  60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= 3 {
				return true
			}
			total := counts.Requests
			if total < 20 {
				return false
			}
			return float64(counts.TotalFailures)/float64(total) > 0.05
		},
	}
	return &WithBreaker{inner: inner, breaker: gobreaker.NewCircuitBreaker(settings)}
}

func (w *WithBreaker) Name() string              { return w.inner.Name() }
func (w *WithBreaker) Priority() int              { return w.inner.Priority() }
func (w *WithBreaker) RateLimitPerHour() float64 { return w.inner.RateLimitPerHour() }
func (w *WithBreaker) RequiresAPIKey() bool      { return w.inner.RequiresAPIKey() }

// IsAvailable reports the breaker's readiness in addition to the inner
// provider's own availability.
func (w *WithBreaker) IsAvailable() bool {
	if w.breaker.State() == gobreaker.StateOpen {
		return false
	}
	return w.inner.IsAvailable()
}

// FetchOHLC runs the inner fetch through the circuit breaker.
func (w *WithBreaker) FetchOHLC(ctx context.Context, symbol string, tf ohlc.Timeframe, periods int) (marketdata.Result, error) {
	out, err := w.breaker.Execute(func() (interface{}, error) {
		return w.inner.FetchOHLC(ctx, symbol, tf, periods)
	})
	if err != nil {
		return marketdata.Result{Success: false, Error: err.Error()}, err
	}
	return out.(marketdata.Result), nil
}

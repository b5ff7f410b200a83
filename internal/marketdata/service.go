package marketdata

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sawpanic/marketanalysis/internal/apperr"
	"github.com/sawpanic/marketanalysis/internal/ohlc"
	"github.com/sawpanic/marketanalysis/internal/persistence"
)

var zeroTime time.Time

// Service is the single entry point of spec.md §4.4: Get composes the
// cache, the priority-ordered provider chain, the rate limiter, and an
// optional persistence-backed fill. The cache and rate limiter are
// exclusively owned by this Service instance (spec.md §3 ownership rule).
type Service struct {
	cache     *Cache
	limiter   *RateLimiter
	providers []Provider
	store     persistence.Store // optional; nil disables persistence fill
	log       zerolog.Logger
}

// Option configures a Service at construction.
type Option func(*Service)

// WithStore enables optional persistence-backed fill.
func WithStore(store persistence.Store) Option {
	return func(s *Service) { s.store = store }
}

// NewService builds a Service over a priority-ordered (or unordered, it
// sorts internally) set of providers.
func NewService(providers []Provider, opts ...Option) *Service {
	sorted := make([]Provider, len(providers))
	copy(sorted, providers)
	insertionSortByPriority(sorted)

	s := &Service{
		cache:     NewCache(),
		limiter:   NewRateLimiter(),
		providers: sorted,
		log:       log.With().Str("component", "marketdata").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func insertionSortByPriority(p []Provider) {
	for i := 1; i < len(p); i++ {
		j := i
		for j > 0 && p[j-1].Priority() > p[j].Priority() {
			p[j-1], p[j] = p[j], p[j-1]
			j--
		}
	}
}

// ProviderStatus summarizes one configured provider for
// MarketDataService.provider_status (spec.md §6).
type ProviderStatus struct {
	Name              string
	Priority          int
	Available         bool
	RateLimitRemaining float64
}

// ProviderStatuses reports the live status of every configured provider.
func (s *Service) ProviderStatuses() []ProviderStatus {
	out := make([]ProviderStatus, 0, len(s.providers))
	for _, p := range s.providers {
		out = append(out, ProviderStatus{
			Name:              p.Name(),
			Priority:          p.Priority(),
			Available:         p.IsAvailable(),
			RateLimitRemaining: s.limiter.GetRemaining(p.Name(), p.RateLimitPerHour()),
		})
	}
	return out
}

// Get implements MarketDataService.get_ohlc (spec.md §4.4):
//
//  1. If not force_refresh: cache lookup; on hit, return immediately.
//  2. If not force_refresh and persistence enabled: query persistence for up
//     to `periods` bars; if at least ceil(periods/2) are present, cache and
//     return with provider="database".
//  3. Iterate providers in ascending priority, skipping rate-limited ones,
//     calling fetch_ohlc; on success record the request, annotate
//     rate-limit-remaining, optionally persist, cache, and return.
//  4. If every provider failed, return an (uncached) error result.
//
// force_refresh bypasses the persistence read in step 2 but fetched bars
// are still written back to the store, per the Open Question decision in
// DESIGN.md.
func (s *Service) Get(ctx context.Context, symbol string, tf ohlc.Timeframe, periods int, forceRefresh bool) Result {
	if !forceRefresh {
		if cached, ok := s.cache.Get(symbol, tf); ok {
			return cached
		}
	}

	if !forceRefresh && s.store != nil {
		if result, ok := s.tryPersistence(ctx, symbol, tf, periods); ok {
			s.cache.Set(symbol, tf, result)
			return result
		}
	}

	for _, p := range s.providers {
		select {
		case <-ctx.Done():
			return Result{Success: false, Error: apperr.ErrCancelled.Error()}
		default:
		}

		if !s.limiter.CanRequest(p.Name(), p.RateLimitPerHour()) {
			continue
		}

		result, err := p.FetchOHLC(ctx, symbol, tf, periods)
		if err != nil || !result.Success {
			s.log.Debug().Str("provider", p.Name()).Str("symbol", symbol).Msg("provider fetch failed, trying next")
			continue
		}

		s.limiter.RecordRequest(p.Name())
		result.ProviderName = p.Name()
		result.RateLimitRemaining = s.limiter.GetRemaining(p.Name(), p.RateLimitPerHour())

		if s.store != nil {
			if err := s.store.StoreBars(ctx, symbol, tf, result.Data, p.Name()); err != nil {
				s.log.Warn().Err(err).Str("provider", p.Name()).Msg("persistence write failed, continuing")
			}
		}

		s.cache.Set(symbol, tf, result)
		return result
	}

	return Result{Success: false, Error: "all providers failed or rate limited"}
}

func (s *Service) tryPersistence(ctx context.Context, symbol string, tf ohlc.Timeframe, periods int) (Result, bool) {
	bars, err := s.store.GetBars(ctx, symbol, tf, zeroTime, zeroTime, periods)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("persistence read failed, falling through to providers")
		return Result{}, false
	}

	minRequired := int(math.Ceil(float64(periods) / 2))
	if len(bars) < minRequired {
		return Result{}, false
	}

	return Result{
		Success:      true,
		Data:         bars,
		ProviderName: "database",
		Cached:       false,
		MarketStatus: MarketUnknown,
	}, true
}

// Package telemetry exposes Prometheus instrumentation for the core's
// ambient concerns, grounded on the teacher's
// internal/interfaces/http/metrics.go MetricsRegistry shape: named
// counters/gauges/histograms built at construction and registered together.
// Unlike the teacher, each Registry owns a private prometheus.Registry
// instead of registering against the global default, so tests can build
// more than one Registry in the same process.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// Registry holds every metric the core emits.
type Registry struct {
	registry *prometheus.Registry

	CacheHitRatio      prometheus.Gauge
	CacheHits          *prometheus.CounterVec
	CacheMisses        *prometheus.CounterVec
	RateLimitDenials   *prometheus.CounterVec
	ProviderFailures   *prometheus.CounterVec
	ProviderLatency    *prometheus.HistogramVec
	BacktestDuration   *prometheus.HistogramVec
	BacktestTradeCount *prometheus.HistogramVec
	OptimizeDuration   prometheus.Histogram
}

// NewRegistry builds and registers every metric against a private registry.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,

		CacheHitRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "marketanalysis_cache_hit_ratio",
			Help: "Current market-data cache hit ratio (0.0 to 1.0)",
		}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketanalysis_cache_hits_total",
			Help: "Total cache hits by timeframe",
		}, []string{"timeframe"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketanalysis_cache_misses_total",
			Help: "Total cache misses by timeframe",
		}, []string{"timeframe"}),
		RateLimitDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketanalysis_rate_limit_denials_total",
			Help: "Total requests skipped because a provider's hourly budget was exhausted",
		}, []string{"provider"}),
		ProviderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketanalysis_provider_failures_total",
			Help: "Total failed fetch_ohlc calls by provider",
		}, []string{"provider"}),
		ProviderLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "marketanalysis_provider_latency_seconds",
			Help:    "fetch_ohlc call latency by provider",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider"}),
		BacktestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "marketanalysis_backtest_run_duration_seconds",
			Help:    "Wall-clock duration of a single BacktestEngine.Run call",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}, []string{"symbol"}),
		BacktestTradeCount: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "marketanalysis_backtest_trade_count",
			Help:    "Number of closed trades produced by a single backtest run",
			Buckets: []float64{0, 5, 10, 25, 50, 100, 250, 500},
		}, []string{"symbol"}),
		OptimizeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "marketanalysis_walk_forward_duration_seconds",
			Help:    "Wall-clock duration of a single WalkForwardOptimizer.Optimize call",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),
	}

	reg.MustRegister(
		r.CacheHitRatio,
		r.CacheHits,
		r.CacheMisses,
		r.RateLimitDenials,
		r.ProviderFailures,
		r.ProviderLatency,
		r.BacktestDuration,
		r.BacktestTradeCount,
		r.OptimizeDuration,
	)

	return r
}

// Handler exposes the registry at /metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// RecordCacheHit records a cache hit and recomputes the hit ratio.
func (r *Registry) RecordCacheHit(timeframe string) {
	r.CacheHits.WithLabelValues(timeframe).Inc()
	r.refreshCacheHitRatio()
}

// RecordCacheMiss records a cache miss and recomputes the hit ratio.
func (r *Registry) RecordCacheMiss(timeframe string) {
	r.CacheMisses.WithLabelValues(timeframe).Inc()
	r.refreshCacheHitRatio()
}

func (r *Registry) refreshCacheHitRatio() {
	hits := sumCounterVec(r.CacheHits)
	misses := sumCounterVec(r.CacheMisses)
	total := hits + misses
	if total > 0 {
		r.CacheHitRatio.Set(hits / total)
	}
}

func sumCounterVec(vec *prometheus.CounterVec) float64 {
	metricCh := make(chan prometheus.Metric, 64)
	vec.Collect(metricCh)
	close(metricCh)

	var total float64
	for m := range metricCh {
		var out dto.Metric
		if err := m.Write(&out); err == nil && out.Counter != nil {
			total += out.Counter.GetValue()
		}
	}
	return total
}

// RecordRateLimitDenial increments the denial counter for a provider.
func (r *Registry) RecordRateLimitDenial(provider string) {
	r.RateLimitDenials.WithLabelValues(provider).Inc()
}

// RecordProviderFailure increments the failure counter for a provider.
func (r *Registry) RecordProviderFailure(provider string) {
	r.ProviderFailures.WithLabelValues(provider).Inc()
}

// ProviderTimer times a single fetch_ohlc call.
type ProviderTimer struct {
	registry *Registry
	provider string
	start    time.Time
}

// StartProviderTimer begins timing a provider call.
func (r *Registry) StartProviderTimer(provider string) *ProviderTimer {
	return &ProviderTimer{registry: r, provider: provider, start: time.Now()}
}

// Stop records the elapsed duration against the provider's histogram.
func (t *ProviderTimer) Stop() {
	t.registry.ProviderLatency.WithLabelValues(t.provider).Observe(time.Since(t.start).Seconds())
}

// RecordBacktest records the duration and trade count of one backtest run.
func (r *Registry) RecordBacktest(symbol string, duration time.Duration, tradeCount int) {
	r.BacktestDuration.WithLabelValues(symbol).Observe(duration.Seconds())
	r.BacktestTradeCount.WithLabelValues(symbol).Observe(float64(tradeCount))
}

// RecordOptimize records the duration of one walk-forward optimization run.
func (r *Registry) RecordOptimize(duration time.Duration) {
	r.OptimizeDuration.Observe(duration.Seconds())
}

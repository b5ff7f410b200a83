package telemetry

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_RegistersWithoutPanicking(t *testing.T) {
	require.NotPanics(t, func() {
		NewRegistry()
	})
}

func TestRecordCacheHit_UpdatesRatio(t *testing.T) {
	r := NewRegistry()

	r.RecordCacheMiss("1d")
	r.RecordCacheHit("1d")
	r.RecordCacheHit("1d")
	r.RecordCacheHit("1d")

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "marketanalysis_cache_hit_ratio 0.75")
}

func TestProviderTimer_RecordsLatency(t *testing.T) {
	r := NewRegistry()
	timer := r.StartProviderTimer("simulated")
	time.Sleep(time.Millisecond)
	timer.Stop()

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)

	assert.Contains(t, w.Body.String(), "marketanalysis_provider_latency_seconds")
}

func TestRecordBacktest_ObservesDurationAndTradeCount(t *testing.T) {
	r := NewRegistry()
	r.RecordBacktest("BTCUSD", 2*time.Second, 12)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)

	body := w.Body.String()
	assert.Contains(t, body, "marketanalysis_backtest_run_duration_seconds")
	assert.Contains(t, body, "marketanalysis_backtest_trade_count")
}

func TestRecordRateLimitDenial_AndProviderFailure(t *testing.T) {
	r := NewRegistry()
	r.RecordRateLimitDenial("alpha")
	r.RecordProviderFailure("alpha")

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)

	body := w.Body.String()
	assert.Contains(t, body, `marketanalysis_rate_limit_denials_total{provider="alpha"} 1`)
	assert.Contains(t, body, `marketanalysis_provider_failures_total{provider="alpha"} 1`)
}

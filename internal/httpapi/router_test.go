package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/marketanalysis/internal/analysis"
	"github.com/sawpanic/marketanalysis/internal/backtest"
	"github.com/sawpanic/marketanalysis/internal/marketdata"
	"github.com/sawpanic/marketanalysis/internal/marketdata/provider"
	"github.com/sawpanic/marketanalysis/internal/workflow"
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	svc := marketdata.NewService([]marketdata.Provider{provider.NewSimulated()})
	loader := backtest.NewDataLoader(svc, nil)
	engine := backtest.NewEngine(loader)

	return NewRouter(Dependencies{
		Market:       svc,
		Orchestrator: analysis.New(svc),
		Workflow:     workflow.New(svc),
		Engine:       engine,
		Optimizer:    backtest.NewOptimizer(engine),
		Logger:       zerolog.Nop(),
	})
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRouter_GetOHLC(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/ohlc?symbol=BTCUSD&timeframe=1D&periods=50", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	body := decodeResponse(t, w)
	assert.Contains(t, body, "Success")
}

func TestRouter_ProviderStatus(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/providers", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("X-Request-ID"), "")
}

func TestRouter_AssessTrend(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/trend?symbol=BTCUSD&tf=1D", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeResponse(t, w)
	assert.Contains(t, body, "Trend")
}

func TestRouter_CheckTimeframeAlignment_InvalidArgumentMapsTo400(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/alignment?symbol=BTCUSD&tfs=1D", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeResponse(t, w)
	assert.Contains(t, body, "error")
}

func TestRouter_CategorizeTrade(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/categorize?higher_trend=bullish&lower_trend=bullish&direction=long&confluence=3", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeResponse(t, w)
	assert.Contains(t, body, "category")
}

func TestRouter_ValidateTrade_MalformedBodyIs400(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/validate", bytes.NewBufferString("not json"))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_ScanOpportunities(t *testing.T) {
	router := newTestRouter(t)
	payload := `{"symbols": ["BTCUSD"], "pairs": [{"higher": "1D", "lower": "4H"}], "include_potential": true}`
	req := httptest.NewRequest(http.MethodPost, "/scan", bytes.NewBufferString(payload))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_RunBacktest_UsesDefaultsWhenOmitted(t *testing.T) {
	router := newTestRouter(t)
	payload := `{"Symbol": "BTCUSD", "HigherTF": "1D", "LowerTF": "4H", "InitialCapital": 10000, "RiskPerTrade": 0.01}`
	req := httptest.NewRequest(http.MethodPost, "/backtest", bytes.NewBufferString(payload))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Package httpapi wires the §6 service methods to HTTP routes, grounded on
// the teacher's internal/interfaces/http server/middleware shape. It is a
// thin transport layer: handlers parse request parameters, call straight
// through to the core services, and json-encode whatever comes back — no
// separate DTO layer.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/sawpanic/marketanalysis/internal/analysis"
	"github.com/sawpanic/marketanalysis/internal/apperr"
	"github.com/sawpanic/marketanalysis/internal/backtest"
	"github.com/sawpanic/marketanalysis/internal/fibonacci"
	"github.com/sawpanic/marketanalysis/internal/marketdata"
	"github.com/sawpanic/marketanalysis/internal/ohlc"
	"github.com/sawpanic/marketanalysis/internal/workflow"
)

// Dependencies collects the services a Router dispatches into.
type Dependencies struct {
	Market       *marketdata.Service
	Orchestrator *analysis.Orchestrator
	Workflow     *workflow.Workflow
	Engine       *backtest.Engine
	Optimizer    *backtest.Optimizer
	Logger       zerolog.Logger
}

// NewRouter builds the mux.Router exposing every spec.md §6 operation.
func NewRouter(deps Dependencies) *mux.Router {
	router := mux.NewRouter()
	router.Use(requestIDMiddleware)
	router.Use(loggingMiddleware(deps.Logger))
	router.Use(jsonContentTypeMiddleware)

	h := &handlers{deps: deps}

	router.HandleFunc("/ohlc", h.getOHLC).Methods(http.MethodGet)
	router.HandleFunc("/providers", h.providerStatus).Methods(http.MethodGet)
	router.HandleFunc("/analyze", h.analyze).Methods(http.MethodGet)
	router.HandleFunc("/trend", h.assessTrend).Methods(http.MethodGet)
	router.HandleFunc("/alignment", h.checkTimeframeAlignment).Methods(http.MethodGet)
	router.HandleFunc("/fibonacci", h.identifyFibonacciLevels).Methods(http.MethodGet)
	router.HandleFunc("/indicators", h.confirmWithIndicators).Methods(http.MethodGet)
	router.HandleFunc("/categorize", h.categorizeTrade).Methods(http.MethodGet)
	router.HandleFunc("/scan", h.scanOpportunities).Methods(http.MethodPost)
	router.HandleFunc("/validate", h.validateTrade).Methods(http.MethodPost)
	router.HandleFunc("/cascade", h.detectCascade).Methods(http.MethodGet)
	router.HandleFunc("/backtest", h.runBacktest).Methods(http.MethodPost)
	router.HandleFunc("/optimize", h.walkForward).Methods(http.MethodPost)

	router.NotFoundHandler = http.HandlerFunc(notFound)
	return router
}

type handlers struct {
	deps Dependencies
}

// --- acquisition ---

func (h *handlers) getOHLC(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbol := q.Get("symbol")
	tf := ohlc.Timeframe(q.Get("timeframe"))
	periods := atoiDefault(q.Get("periods"), 100)
	forceRefresh := q.Get("force_refresh") == "true"

	result := h.deps.Market.Get(r.Context(), symbol, tf, periods, forceRefresh)
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) providerStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Market.ProviderStatuses())
}

// --- analysis ---

func (h *handlers) analyze(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := analysis.Request{
		Symbol:    q.Get("symbol"),
		Timeframe: ohlc.Timeframe(q.Get("timeframe")),
		Periods:   atoiDefault(q.Get("periods"), 100),
		Config:    analysis.DefaultConfig(),
	}
	resp := h.deps.Orchestrator.Analyze(r.Context(), req)
	status := http.StatusOK
	if !resp.Success {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, resp)
}

// --- workflow ---

func (h *handlers) assessTrend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.deps.Workflow.AssessTrend(r.Context(), q.Get("symbol"), ohlc.Timeframe(q.Get("tf")))
	respond(w, result, err)
}

func (h *handlers) checkTimeframeAlignment(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tfs := parseTimeframes(q.Get("tfs"))
	result, err := h.deps.Workflow.CheckTimeframeAlignment(r.Context(), q.Get("symbol"), tfs)
	respond(w, result, err)
}

func (h *handlers) identifyFibonacciLevels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dir := fibonacci.Buy
	if q.Get("direction") == "sell" {
		dir = fibonacci.Sell
	}
	result, err := h.deps.Workflow.IdentifyFibonacciLevels(r.Context(), q.Get("symbol"), ohlc.Timeframe(q.Get("tf")), dir)
	respond(w, result, err)
}

func (h *handlers) confirmWithIndicators(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.deps.Workflow.ConfirmWithIndicators(r.Context(), q.Get("symbol"), ohlc.Timeframe(q.Get("tf")))
	respond(w, result, err)
}

func (h *handlers) categorizeTrade(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	higher := workflow.Trend(q.Get("higher_trend"))
	lower := workflow.Trend(q.Get("lower_trend"))
	direction := workflow.Direction(q.Get("direction"))
	confluence := atoiDefault(q.Get("confluence"), 0)

	category := h.deps.Workflow.CategorizeTrade(higher, lower, direction, confluence)
	writeJSON(w, http.StatusOK, map[string]string{"category": string(category)})
}

func (h *handlers) scanOpportunities(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Symbols          []string               `json:"symbols"`
		Pairs            []workflow.TimeframePair `json:"pairs"`
		IncludePotential bool                   `json:"include_potential"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	result, err := h.deps.Workflow.ScanOpportunities(r.Context(), body.Symbols, body.Pairs, body.IncludePotential)
	respond(w, result, err)
}

func (h *handlers) validateTrade(w http.ResponseWriter, r *http.Request) {
	var req workflow.ValidateTradeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := h.deps.Workflow.ValidateTrade(r.Context(), req)
	respond(w, result, err)
}

func (h *handlers) detectCascade(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tfs := parseTimeframes(q.Get("tfs"))
	result, err := h.deps.Workflow.DetectCascade(r.Context(), q.Get("symbol"), tfs)
	respond(w, result, err)
}

// --- backtest ---

func (h *handlers) runBacktest(w http.ResponseWriter, r *http.Request) {
	var cfg backtest.Config
	if !decodeBody(w, r, &cfg) {
		return
	}
	if cfg.Signals == nil {
		cfg.Signals = backtest.NewSignalsProcessor(5, 2, 0.6, 2.0)
	}
	if cfg.Simulator == nil {
		cfg.Simulator = backtest.NewTradeSimulator(1.0, 2.0, 1.5)
	}
	result, err := h.deps.Engine.Run(r.Context(), cfg)
	respond(w, result, err)
}

func (h *handlers) walkForward(w http.ResponseWriter, r *http.Request) {
	var cfg backtest.OptimizationConfig
	if !decodeBody(w, r, &cfg) {
		return
	}
	if cfg.Build == nil {
		cfg.Build = func(params map[string]float64) (*backtest.SignalsProcessor, *backtest.TradeSimulator) {
			confluence := int(params["confluence_threshold"])
			if confluence == 0 {
				confluence = 2
			}
			atrStop := params["atr_stop_multiplier"]
			if atrStop == 0 {
				atrStop = 2.0
			}
			return backtest.NewSignalsProcessor(5, confluence, 0.6, atrStop),
				backtest.NewTradeSimulator(1.0, 2.0, 1.5)
		}
	}
	result, err := h.deps.Optimizer.Optimize(r.Context(), cfg)
	respond(w, result, err)
}

// --- helpers ---

func respond(w http.ResponseWriter, result interface{}, err error) {
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "route not found: "+r.URL.Path)
}

// statusFor maps the spec.md §7 error taxonomy to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, apperr.ErrCancelled):
		return http.StatusRequestTimeout
	case errors.Is(err, apperr.ErrPersistenceFailure), errors.Is(err, apperr.ErrProviderFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func parseTimeframes(raw string) []ohlc.Timeframe {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]ohlc.Timeframe, len(parts))
	for i, p := range parts {
		out[i] = ohlc.Timeframe(strings.TrimSpace(p))
	}
	return out
}

type requestIDKey struct{}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()[:8]
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapper := &statusWrapper{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapper, r)
			logger.Info().
				Str("request_id", r.Context().Value(requestIDKey{}).(string)).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapper.status).
				Dur("duration", time.Since(start)).
				Msg("http request")
		})
	}
}

func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

type statusWrapper struct {
	http.ResponseWriter
	status int
}

func (s *statusWrapper) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

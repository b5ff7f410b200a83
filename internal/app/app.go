// Package app composes the core services into one ready-to-serve unit,
// replacing the teacher's package-level singletons (httpmetrics.DefaultMetrics,
// a process-global menu/scan pipeline) with an explicit Wire function the
// CLI entry point calls once at startup.
package app

import (
	"fmt"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/sawpanic/marketanalysis/internal/analysis"
	"github.com/sawpanic/marketanalysis/internal/backtest"
	appconfig "github.com/sawpanic/marketanalysis/internal/config"
	"github.com/sawpanic/marketanalysis/internal/httpapi"
	"github.com/sawpanic/marketanalysis/internal/marketdata"
	"github.com/sawpanic/marketanalysis/internal/marketdata/provider"
	"github.com/sawpanic/marketanalysis/internal/persistence"
	"github.com/sawpanic/marketanalysis/internal/persistence/postgres"
	"github.com/sawpanic/marketanalysis/internal/telemetry"
	"github.com/sawpanic/marketanalysis/internal/workflow"
)

// Config is the top-level startup configuration: where the provider roster
// lives, and an optional Postgres DSN for bar persistence.
type Config struct {
	ProvidersPath string
	PostgresDSN   string
}

// App holds every wired component a cmd/ entry point needs.
type App struct {
	Market       *marketdata.Service
	Orchestrator *analysis.Orchestrator
	Workflow     *workflow.Workflow
	Engine       *backtest.Engine
	Optimizer    *backtest.Optimizer
	Telemetry    *telemetry.Registry
	Router       *mux.Router
	db           interface{ Close() error }
}

// Wire builds every service from Config and returns the composed App. Callers
// own the returned App's lifetime and should call Close when finished.
func Wire(cfg Config, logger zerolog.Logger) (*App, error) {
	providersCfg, err := appconfig.LoadProvidersConfig(cfg.ProvidersPath)
	if err != nil {
		return nil, fmt.Errorf("app: load providers config: %w", err)
	}

	var store persistence.Store
	var db interface{ Close() error }
	if cfg.PostgresDSN != "" {
		pgCfg := postgres.DefaultConfig()
		pgCfg.DSN = cfg.PostgresDSN
		s, conn, err := postgres.Connect(pgCfg)
		if err != nil {
			return nil, fmt.Errorf("app: connect postgres: %w", err)
		}
		store, db = s, conn
	}

	providers := buildProviders(providersCfg, logger)

	var svcOpts []marketdata.Option
	if store != nil {
		svcOpts = append(svcOpts, marketdata.WithStore(store))
	}
	market := marketdata.NewService(providers, svcOpts...)

	orchestrator := analysis.New(market)
	wf := workflow.New(market)
	loader := backtest.NewDataLoader(market, store)
	engine := backtest.NewEngine(loader)
	optimizer := backtest.NewOptimizer(engine)

	registry := telemetry.NewRegistry()

	router := httpapi.NewRouter(httpapi.Dependencies{
		Market:       market,
		Orchestrator: orchestrator,
		Workflow:     wf,
		Engine:       engine,
		Optimizer:    optimizer,
		Logger:       logger,
	})

	return &App{
		Market:       market,
		Orchestrator: orchestrator,
		Workflow:     wf,
		Engine:       engine,
		Optimizer:    optimizer,
		Telemetry:    registry,
		Router:       router,
		db:           db,
	}, nil
}

// buildProviders turns a provider roster into the priority-ordered chain
// marketdata.Service consumes. Only the simulated fixture provider is
// constructed, without a circuit breaker; each entry in cfg.Providers is
// logged at debug level and otherwise unused.
func buildProviders(cfg *appconfig.ProvidersConfig, logger zerolog.Logger) []marketdata.Provider {
	providers := []marketdata.Provider{provider.NewSimulated()}

	for name, pc := range cfg.Providers {
		logger.Debug().
			Str("provider", name).
			Int("priority", pc.Priority).
			Float64("rate_limit_per_hour", pc.RateLimitPerHour).
			Msg("provider configured (no HTTP client wired for this fixture build)")
	}

	return providers
}

// Close releases any held resources (database connections).
func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

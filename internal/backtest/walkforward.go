package backtest

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/sawpanic/marketanalysis/internal/ohlc"
)

const walkForwardMonthDays = 30

// OptimizationParameter describes one grid dimension (spec.md §4.7 step 2).
type OptimizationParameter struct {
	Name string
	Min  float64
	Max  float64
	Step float64
}

// Values returns [min, min+step, ...] inclusive of values <= max.
func (p OptimizationParameter) Values() []float64 {
	if p.Step <= 0 {
		return []float64{p.Min}
	}
	var values []float64
	for v := p.Min; v <= p.Max+1e-9; v += p.Step {
		values = append(values, v)
	}
	return values
}

// OptimizationConfig parameterizes WalkForwardOptimizer.optimize.
type OptimizationConfig struct {
	Symbol             string
	HigherTF           ohlc.Timeframe
	LowerTF            ohlc.Timeframe
	Start              time.Time
	End                time.Time
	InSampleMonths     int
	OutOfSampleMonths  int
	Parameters         []OptimizationParameter
	OptimizationTarget string // "sharpe", "profit_factor", "average_r", "calmar", "sortino"
	InitialCapital     float64
	RiskPerTrade       float64

	// Build turns a grid point into the processor/simulator pair the
	// engine replays against; callers own the mapping from named
	// parameters to SignalsProcessor/TradeSimulator fields.
	Build func(params map[string]float64) (*SignalsProcessor, *TradeSimulator)
}

// windowSpec is one in-sample/out-of-sample pair.
type windowSpec struct {
	InStart, InEnd   time.Time
	OutStart, OutEnd time.Time
}

// WindowRecord captures one walk-forward window's result.
type WindowRecord struct {
	Window       windowSpec
	BestParams   map[string]float64
	InSample     Metrics
	OutOfSample  Metrics
}

// OptimizationResult is WalkForwardOptimizer.optimize's output.
type OptimizationResult struct {
	Windows            []WindowRecord
	CombinedTrades      []ClosedTrade
	CombinedEquity      []EquityPoint
	CombinedMetrics     Metrics
	RobustParameters    map[string]float64
	RobustnessScore     float64
}

// Optimizer implements WalkForwardOptimizer.
type Optimizer struct {
	engine *Engine
}

// NewOptimizer builds an Optimizer over an Engine.
func NewOptimizer(engine *Engine) *Optimizer {
	return &Optimizer{engine: engine}
}

func generateWindows(cfg OptimizationConfig) []windowSpec {
	inDur := time.Duration(cfg.InSampleMonths*walkForwardMonthDays) * 24 * time.Hour
	outDur := time.Duration(cfg.OutOfSampleMonths*walkForwardMonthDays) * 24 * time.Hour
	step := outDur

	var windows []windowSpec
	inStart := cfg.Start
	for {
		inEnd := inStart.Add(inDur)
		outStart := inEnd
		outEnd := outStart.Add(outDur)
		if outEnd.After(cfg.End) {
			break
		}
		windows = append(windows, windowSpec{InStart: inStart, InEnd: inEnd, OutStart: outStart, OutEnd: outEnd})
		inStart = inStart.Add(step)
	}
	return windows
}

func paramGrid(params []OptimizationParameter) []map[string]float64 {
	grid := []map[string]float64{{}}
	for _, p := range params {
		var next []map[string]float64
		for _, combo := range grid {
			for _, v := range p.Values() {
				point := make(map[string]float64, len(combo)+1)
				for k, vv := range combo {
					point[k] = vv
				}
				point[p.Name] = v
				next = append(next, point)
			}
		}
		grid = next
	}
	return grid
}

func targetValue(target string, m Metrics) float64 {
	switch target {
	case "profit_factor":
		return m.ProfitFactor
	case "average_r":
		return m.AverageR
	case "calmar":
		return m.Calmar
	case "sortino":
		return m.Sortino
	default: // "sharpe"
		return m.Sharpe
	}
}

// Optimize implements WalkForwardOptimizer.optimize (spec.md §4.7).
func (o *Optimizer) Optimize(ctx context.Context, cfg OptimizationConfig) (OptimizationResult, error) {
	windows := generateWindows(cfg)
	grid := paramGrid(cfg.Parameters)

	var result OptimizationResult
	var bestVectors []map[string]float64

	for _, w := range windows {
		var bestParams map[string]float64
		var bestIn Metrics
		bestScore := math.Inf(-1)

		for _, params := range grid {
			signals, simulator := cfg.Build(params)
			runCfg := Config{
				Symbol: cfg.Symbol, HigherTF: cfg.HigherTF, LowerTF: cfg.LowerTF,
				Start: w.InStart, End: w.InEnd,
				InitialCapital: cfg.InitialCapital, RiskPerTrade: cfg.RiskPerTrade,
				Signals: signals, Simulator: simulator,
			}
			res, err := o.engine.Run(ctx, runCfg)
			if err != nil {
				continue
			}
			score := targetValue(cfg.OptimizationTarget, res.Metrics)
			if score > bestScore {
				bestScore = score
				bestParams = params
				bestIn = res.Metrics
			}
		}

		if bestParams == nil {
			continue
		}

		signals, simulator := cfg.Build(bestParams)
		outCfg := Config{
			Symbol: cfg.Symbol, HigherTF: cfg.HigherTF, LowerTF: cfg.LowerTF,
			Start: w.OutStart, End: w.OutEnd,
			InitialCapital: cfg.InitialCapital, RiskPerTrade: cfg.RiskPerTrade,
			Signals: signals, Simulator: simulator,
		}
		outRes, err := o.engine.Run(ctx, outCfg)
		if err != nil {
			continue
		}

		result.Windows = append(result.Windows, WindowRecord{
			Window: w, BestParams: bestParams, InSample: bestIn, OutOfSample: outRes.Metrics,
		})
		result.CombinedTrades = append(result.CombinedTrades, outRes.Trades...)
		result.CombinedEquity = append(result.CombinedEquity, outRes.Equity...)
		bestVectors = append(bestVectors, bestParams)
	}

	result.CombinedMetrics = ComputeMetrics(result.CombinedTrades, result.CombinedEquity)
	result.RobustParameters = robustParameters(bestVectors)
	result.RobustnessScore = robustnessScore(bestVectors)

	return result, nil
}

// robustParameters takes the per-parameter median across windows' best
// vectors (spec.md §4.7 step 4).
func robustParameters(vectors []map[string]float64) map[string]float64 {
	robust := map[string]float64{}
	if len(vectors) == 0 {
		return robust
	}
	names := map[string]bool{}
	for _, v := range vectors {
		for name := range v {
			names[name] = true
		}
	}
	for name := range names {
		var values []float64
		for _, v := range vectors {
			if val, ok := v[name]; ok {
				values = append(values, val)
			}
		}
		sort.Float64s(values)
		robust[name] = median(values)
	}
	return robust
}

func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}

// robustnessScore implements exp(-avg_cv) over per-parameter coefficient of
// variation across windows (spec.md §4.7 step 5); fewer than two windows
// yields 1.0.
func robustnessScore(vectors []map[string]float64) float64 {
	if len(vectors) < 2 {
		return 1.0
	}
	names := map[string]bool{}
	for _, v := range vectors {
		for name := range v {
			names[name] = true
		}
	}
	var cvs []float64
	for name := range names {
		var values []float64
		for _, v := range vectors {
			if val, ok := v[name]; ok {
				values = append(values, val)
			}
		}
		avg := mean(values)
		if avg == 0 {
			continue
		}
		sd := stdDev(values, avg)
		cvs = append(cvs, sd/math.Abs(avg))
	}
	if len(cvs) == 0 {
		return 1.0
	}
	return math.Exp(-mean(cvs))
}

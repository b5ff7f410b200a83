package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptimizationParameter_Values(t *testing.T) {
	p := OptimizationParameter{Name: "atr_mult", Min: 1.0, Max: 2.0, Step: 0.5}
	assert.Equal(t, []float64{1.0, 1.5, 2.0}, p.Values())
}

func TestOptimizationParameter_Values_ZeroStepIsSingleton(t *testing.T) {
	p := OptimizationParameter{Name: "confluence", Min: 3, Max: 3, Step: 0}
	assert.Equal(t, []float64{3.0}, p.Values())
}

func TestParamGrid_CartesianProduct(t *testing.T) {
	params := []OptimizationParameter{
		{Name: "a", Min: 1, Max: 2, Step: 1},
		{Name: "b", Min: 10, Max: 20, Step: 10},
	}
	grid := paramGrid(params)
	assert.Len(t, grid, 4)
}

func TestGenerateWindows_FitsWithinRange(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 180)
	cfg := OptimizationConfig{Start: start, End: end, InSampleMonths: 3, OutOfSampleMonths: 1}

	windows := generateWindows(cfg)
	require := assert.New(t)
	require.NotEmpty(windows)
	for _, w := range windows {
		require.False(w.InEnd.After(w.OutStart))
		require.False(w.OutEnd.After(end))
	}
}

func TestMedian_OddAndEven(t *testing.T) {
	assert.Equal(t, 2.0, median([]float64{1, 2, 3}))
	assert.Equal(t, 2.5, median([]float64{1, 2, 3, 4}))
}

func TestRobustnessScore_FewerThanTwoWindowsIsOne(t *testing.T) {
	assert.Equal(t, 1.0, robustnessScore([]map[string]float64{{"a": 1.0}}))
}

func TestRobustnessScore_IdenticalVectorsIsOne(t *testing.T) {
	vectors := []map[string]float64{{"a": 2.0}, {"a": 2.0}, {"a": 2.0}}
	assert.InDelta(t, 1.0, robustnessScore(vectors), 1e-9)
}

func TestRobustParameters_PerParameterMedian(t *testing.T) {
	vectors := []map[string]float64{{"a": 1.0}, {"a": 3.0}, {"a": 5.0}}
	robust := robustParameters(vectors)
	assert.Equal(t, 3.0, robust["a"])
}

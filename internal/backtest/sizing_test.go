package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sawpanic/marketanalysis/internal/workflow"
)

func TestComputePositionSize_WithTrend(t *testing.T) {
	size := ComputePositionSize(100, 95, 1000, 100000, workflow.CategoryWithTrend)
	assert.True(t, size.IsValid)
	assert.Equal(t, 1.0, size.RiskMultiplier)
	assert.Equal(t, 1000.0, size.RiskAmount)
	assert.Equal(t, 200.0, size.Size)
	assert.Equal(t, 1.0, size.AccountRiskPercentage)
}

func TestComputePositionSize_CounterTrendHalvesRisk(t *testing.T) {
	size := ComputePositionSize(100, 95, 1000, 100000, workflow.CategoryCounterTrend)
	assert.Equal(t, 0.5, size.RiskMultiplier)
	assert.Equal(t, 500.0, size.RiskAmount)
	assert.Equal(t, 100.0, size.Size)
}

func TestComputePositionSize_ReversalAttemptQuartersRisk(t *testing.T) {
	size := ComputePositionSize(100, 95, 1000, 100000, workflow.CategoryReversalAttempt)
	assert.Equal(t, 0.25, size.RiskMultiplier)
	assert.Equal(t, 250.0, size.RiskAmount)
}

func TestComputePositionSize_ZeroRiskPerShareIsInvalid(t *testing.T) {
	size := ComputePositionSize(100, 100, 1000, 100000, workflow.CategoryWithTrend)
	assert.False(t, size.IsValid)
	assert.Equal(t, 0.0, size.Size)
}

package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssessAlignment_PullbackLong(t *testing.T) {
	result := AssessAlignment(TrendBullish, TrendBearish)
	assert.True(t, result.ShouldTrade)
	assert.Equal(t, Long, result.Direction)
	assert.True(t, result.IsPullback)
	assert.Equal(t, CategoryWithTrend, result.Category)
}

func TestAssessAlignment_PullbackShort(t *testing.T) {
	result := AssessAlignment(TrendBearish, TrendBullish)
	assert.True(t, result.ShouldTrade)
	assert.Equal(t, Short, result.Direction)
	assert.True(t, result.IsPullback)
}

func TestAssessAlignment_WithTrendNoPullback(t *testing.T) {
	result := AssessAlignment(TrendBullish, TrendBullish)
	assert.True(t, result.ShouldTrade)
	assert.Equal(t, Long, result.Direction)
	assert.False(t, result.IsPullback)
}

func TestAssessAlignment_AnyNeutralStandsAside(t *testing.T) {
	result := AssessAlignment(TrendNeutral, TrendBearish)
	assert.False(t, result.ShouldTrade)

	result = AssessAlignment(TrendBullish, TrendNeutral)
	assert.False(t, result.ShouldTrade)
}

func TestCategorizeTrade_AlignedIsWithTrend(t *testing.T) {
	assert.Equal(t, CategoryWithTrend, CategorizeTrade(Long, TrendBullish, 0))
}

func TestCategorizeTrade_CounterTrendNeedsConfluence(t *testing.T) {
	assert.Equal(t, CategoryCounterTrend, CategorizeTrade(Short, TrendBullish, 5))
	assert.Equal(t, CategoryReversalAttempt, CategorizeTrade(Short, TrendBullish, 4))
}

func TestRiskMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, CategoryWithTrend.RiskMultiplier())
	assert.Equal(t, 0.5, CategoryCounterTrend.RiskMultiplier())
	assert.Equal(t, 0.25, CategoryReversalAttempt.RiskMultiplier())
}

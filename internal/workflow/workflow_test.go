package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/marketanalysis/internal/fibonacci"
	"github.com/sawpanic/marketanalysis/internal/marketdata"
	"github.com/sawpanic/marketanalysis/internal/marketdata/provider"
	"github.com/sawpanic/marketanalysis/internal/ohlc"
)

func newTestWorkflow() *Workflow {
	svc := marketdata.NewService([]marketdata.Provider{provider.NewSimulated()})
	return New(svc)
}

func TestWorkflow_AssessTrend(t *testing.T) {
	w := newTestWorkflow()
	assessment, err := w.AssessTrend(context.Background(), "BTCUSD", ohlc.TF1d)
	require.NoError(t, err)
	assert.Contains(t, []Trend{TrendBullish, TrendBearish, TrendNeutral}, assessment.Trend)
}

func TestWorkflow_IdentifyFibonacciLevels(t *testing.T) {
	w := newTestWorkflow()
	levels, err := w.IdentifyFibonacciLevels(context.Background(), "BTCUSD", ohlc.TF1d, fibonacci.Buy)
	require.NoError(t, err)
	assert.NotEmpty(t, levels.Retracement)
	assert.Greater(t, levels.SwingHigh, levels.SwingLow)
}

func TestWorkflow_ConfirmWithIndicators(t *testing.T) {
	w := newTestWorkflow()
	confirmation, err := w.ConfirmWithIndicators(context.Background(), "BTCUSD", ohlc.TF1d)
	require.NoError(t, err)
	assert.True(t, confirmation.Snapshot.RSI.IsValid)
}

func TestWorkflow_ValidateTrade_MissingSignalBarFailsChecklist(t *testing.T) {
	w := newTestWorkflow()
	result, err := w.ValidateTrade(context.Background(), ValidateTradeRequest{
		Symbol:    "BTCUSD",
		HigherTF:  ohlc.TF1d,
		LowerTF:   ohlc.TF4h,
		Direction: Long,
	})
	require.NoError(t, err)
	require.Len(t, result.Checks, 8)
	last := result.Checks[len(result.Checks)-1]
	assert.Equal(t, "Signal Bar Confirmation", last.Name)
	assert.False(t, last.Passed)
}

func TestWorkflow_ScanOpportunities(t *testing.T) {
	w := newTestWorkflow()
	result, err := w.ScanOpportunities(context.Background(), []string{"BTCUSD", "ETHUSD"}, []TimeframePair{{Higher: ohlc.TF1d, Lower: ohlc.TF4h}}, true)
	require.NoError(t, err)
	for _, opp := range result.Opportunities {
		assert.GreaterOrEqual(t, opp.Confidence, 0.0)
		assert.LessOrEqual(t, opp.Confidence, 100.0)
	}
}

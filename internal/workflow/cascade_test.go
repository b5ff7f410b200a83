package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sawpanic/marketanalysis/internal/ohlc"
)

func TestDetectCascade_AllAlignedIsStageOne(t *testing.T) {
	entries := []TimeframeTrend{
		{Timeframe: ohlc.TF1M, Trend: TrendBullish},
		{Timeframe: ohlc.TF1w, Trend: TrendBullish},
		{Timeframe: ohlc.TF1d, Trend: TrendBullish},
		{Timeframe: ohlc.TF4h, Trend: TrendBullish},
		{Timeframe: ohlc.TF1h, Trend: TrendBullish},
	}
	analysis := DetectCascade(entries)
	assert.Equal(t, CascadeStage(1), analysis.Stage)
	assert.Equal(t, 5.0, analysis.Probability)
}

func TestDetectCascade_FineClusterOnlyIsStageTwo(t *testing.T) {
	entries := []TimeframeTrend{
		{Timeframe: ohlc.TF1M, Trend: TrendBullish},
		{Timeframe: ohlc.TF1w, Trend: TrendBullish},
		{Timeframe: ohlc.TF1d, Trend: TrendBullish},
		{Timeframe: ohlc.TF4h, Trend: TrendBullish},
		{Timeframe: ohlc.TF1h, Trend: TrendBullish},
		{Timeframe: ohlc.TF15m, Trend: TrendBearish},
		{Timeframe: ohlc.TF5m, Trend: TrendBearish},
	}
	analysis := DetectCascade(entries)
	assert.Equal(t, CascadeStage(2), analysis.Stage)
	assert.Equal(t, 15.0, analysis.Probability)
}

func TestDetectCascade_DailyJoinedIsStageFive(t *testing.T) {
	entries := []TimeframeTrend{
		{Timeframe: ohlc.TF1M, Trend: TrendBullish},
		{Timeframe: ohlc.TF1w, Trend: TrendBullish},
		{Timeframe: ohlc.TF1d, Trend: TrendBearish},
		{Timeframe: ohlc.TF4h, Trend: TrendBearish},
		{Timeframe: ohlc.TF1h, Trend: TrendBearish},
	}
	analysis := DetectCascade(entries)
	assert.Equal(t, CascadeStage(5), analysis.Stage)
	assert.Equal(t, 75.0, analysis.Probability)
}

func TestDetectCascade_WeeklyJoinedIsStageSix(t *testing.T) {
	entries := []TimeframeTrend{
		{Timeframe: ohlc.TF1M, Trend: TrendBullish},
		{Timeframe: ohlc.TF1w, Trend: TrendBearish},
		{Timeframe: ohlc.TF1d, Trend: TrendBullish},
		{Timeframe: ohlc.TF4h, Trend: TrendBearish},
		{Timeframe: ohlc.TF1h, Trend: TrendBearish},
	}
	analysis := DetectCascade(entries)
	assert.Equal(t, CascadeStage(6), analysis.Stage)
	assert.Equal(t, 95.0, analysis.Probability)
}

func TestDetectCascade_EmptyInputIsStageOne(t *testing.T) {
	analysis := DetectCascade(nil)
	assert.Equal(t, CascadeStage(1), analysis.Stage)
}

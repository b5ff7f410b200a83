package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/marketanalysis/internal/ohlc"
)

func TestSimulated_FetchOHLC_DeterministicAcrossCalls(t *testing.T) {
	s := NewSimulated()

	first, err := s.FetchOHLC(context.Background(), "BTCUSD", ohlc.TF1d, 50)
	require.NoError(t, err)
	require.True(t, first.Success)
	require.Len(t, first.Data, 50)

	second, err := s.FetchOHLC(context.Background(), "BTCUSD", ohlc.TF1d, 50)
	require.NoError(t, err)
	assert.Equal(t, first.Data, second.Data, "same symbol+timeframe must reproduce the same synthetic series")
}

func TestSimulated_FetchOHLC_DiffersAcrossTimeframes(t *testing.T) {
	s := NewSimulated()

	daily, err := s.FetchOHLC(context.Background(), "BTCUSD", ohlc.TF1d, 20)
	require.NoError(t, err)

	hourly, err := s.FetchOHLC(context.Background(), "BTCUSD", ohlc.TF1h, 20)
	require.NoError(t, err)

	assert.NotEqual(t, daily.Data, hourly.Data)
}

func TestSimulated_FetchOHLC_UnsupportedSymbolIsInvalidArgument(t *testing.T) {
	s := NewSimulated()

	result, err := s.FetchOHLC(context.Background(), "NOTASYMBOL", ohlc.TF1d, 10)
	require.Error(t, err)
	assert.False(t, result.Success)
}

func TestSimulated_FetchOHLC_ZeroOrNegativePeriodsDefaultsTo100(t *testing.T) {
	s := NewSimulated()

	result, err := s.FetchOHLC(context.Background(), "ETHUSD", ohlc.TF1d, 0)
	require.NoError(t, err)
	assert.Len(t, result.Data, 100)
}

func TestSimulated_AlwaysAvailableAndUnlimitedRate(t *testing.T) {
	s := NewSimulated()

	assert.True(t, s.IsAvailable())
	assert.False(t, s.RequiresAPIKey())
	assert.Greater(t, s.RateLimitPerHour(), float64(1e9))
}

package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEMA_ExpandingPrefixThenSMA(t *testing.T) {
	prices := []float64{10, 20, 30, 40, 50}
	out, err := EMA(prices, 3)
	require.NoError(t, err)
	require.Len(t, out, 5)

	assert.InDelta(t, 10.0, out[0], 1e-9)
	assert.InDelta(t, 15.0, out[1], 1e-9)
	assert.InDelta(t, 20.0, out[2], 1e-9) // SMA of first 3

	alpha := 2.0 / 4.0
	expected3 := alpha*40 + (1-alpha)*out[2]
	assert.InDelta(t, expected3, out[3], 1e-9)
}

func TestEMA_RejectsBadArgs(t *testing.T) {
	_, err := EMA([]float64{1, 2}, 0)
	assert.Error(t, err)

	_, err = EMA([]float64{1, 2}, 5)
	assert.Error(t, err)
}

func TestEMA_MonotoneConvergence(t *testing.T) {
	prices := make([]float64, 100)
	for i := range prices {
		prices[i] = 100
	}
	out, err := EMA(prices, 10)
	require.NoError(t, err)
	for _, v := range out {
		assert.True(t, math.Abs(v-100) < 1e-6)
	}
}

package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMACD_RejectsFastGESlow(t *testing.T) {
	_, err := MACD(make([]float64, 50), 26, 12, 9)
	assert.Error(t, err)
}

func TestMACD_HistogramAlgebra(t *testing.T) {
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = float64(100 + i%7 - 3)
	}
	r, err := MACD(prices, 12, 26, 9)
	require.NoError(t, err)

	for i := 0; i < 25; i++ {
		assert.Nil(t, r.MACD[i])
		assert.Nil(t, r.Histogram[i])
	}

	sawDefined := false
	for i := 25; i < len(prices); i++ {
		require.NotNil(t, r.MACD[i])
		if r.Signal[i] != nil {
			sawDefined = true
			require.NotNil(t, r.Histogram[i])
			assert.InDelta(t, *r.MACD[i]-*r.Signal[i], *r.Histogram[i], 1e-9)
		} else {
			assert.Nil(t, r.Histogram[i])
		}
	}
	assert.True(t, sawDefined, "expected at least one defined signal/histogram value")
}

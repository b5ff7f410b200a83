package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sawpanic/marketanalysis/internal/ohlc"
	"github.com/sawpanic/marketanalysis/internal/workflow"
)

func TestUpdateTrade_StopHit(t *testing.T) {
	sim := NewTradeSimulator(1.0, 2.0, 1.5)
	trade := sim.OpenTrade(ohlc.Bar{Time: time.Now(), Close: 100, High: 100, Low: 99}, 0, workflow.Long, 10, 95, []float64{110, 120}, workflow.CategoryWithTrend, 3, 2.0)

	bar := ohlc.Bar{Time: time.Now(), Open: 96, High: 97, Low: 94, Close: 95}
	closed, didClose := sim.UpdateTrade(&trade, bar, 1)

	assert.True(t, didClose)
	assert.Equal(t, ExitStopLoss, closed.ExitReason)
	assert.Equal(t, 95.0, closed.Exit)
}

func TestUpdateTrade_TargetHitInOrder(t *testing.T) {
	sim := NewTradeSimulator(1.0, 2.0, 1.5)
	trade := sim.OpenTrade(ohlc.Bar{Time: time.Now(), Close: 100, High: 100, Low: 99}, 0, workflow.Long, 10, 95, []float64{110, 120}, workflow.CategoryWithTrend, 3, 2.0)

	bar := ohlc.Bar{Time: time.Now(), Open: 105, High: 112, Low: 104, Close: 111}
	closed, didClose := sim.UpdateTrade(&trade, bar, 1)

	assert.True(t, didClose)
	assert.Equal(t, ExitTarget1, closed.ExitReason)
	assert.Equal(t, 110.0, closed.Exit)
}

func TestUpdateTrade_BreakevenShiftsStop(t *testing.T) {
	sim := NewTradeSimulator(1.0, 3.0, 1.5)
	trade := sim.OpenTrade(ohlc.Bar{Time: time.Now(), Close: 100, High: 100, Low: 99}, 0, workflow.Long, 10, 95, []float64{150}, workflow.CategoryWithTrend, 3, 2.0)

	bar := ohlc.Bar{Time: time.Now(), Open: 103, High: 105, Low: 102, Close: 104}
	_, didClose := sim.UpdateTrade(&trade, bar, 1)

	assert.False(t, didClose)
	assert.True(t, trade.AtBreakeven)
	assert.Equal(t, 100.0, trade.CurrentStop)
}

func TestUpdateTrade_TrailingStopRatchetsUpOnly(t *testing.T) {
	sim := NewTradeSimulator(1.0, 2.0, 1.0)
	trade := sim.OpenTrade(ohlc.Bar{Time: time.Now(), Close: 100, High: 100, Low: 99}, 0, workflow.Long, 10, 95, []float64{150}, workflow.CategoryWithTrend, 3, 2.0)

	bar1 := ohlc.Bar{Time: time.Now(), Open: 106, High: 110, Low: 105, Close: 108}
	sim.UpdateTrade(&trade, bar1, 1)
	stopAfterFirst := trade.CurrentStop
	assert.Equal(t, 108.0, stopAfterFirst) // 110 - 2.0*1.0

	bar2 := ohlc.Bar{Time: time.Now(), Open: 109, High: 109, Low: 109, Close: 109}
	sim.UpdateTrade(&trade, bar2, 2)
	assert.Equal(t, stopAfterFirst, trade.CurrentStop)
}

func TestCloseAllTrades(t *testing.T) {
	sim := NewTradeSimulator(1.0, 2.0, 1.5)
	trade := sim.OpenTrade(ohlc.Bar{Time: time.Now(), Close: 100, High: 100, Low: 99}, 0, workflow.Long, 10, 95, []float64{110}, workflow.CategoryWithTrend, 3, 2.0)

	final := ohlc.Bar{Time: time.Now(), Close: 102}
	closed := sim.CloseAllTrades([]OpenTrade{trade}, final, 9)

	assert.Len(t, closed, 1)
	assert.Equal(t, ExitEndOfData, closed[0].ExitReason)
	assert.Equal(t, 102.0, closed[0].Exit)
}

package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sawpanic/marketanalysis/internal/ohlc"
	"github.com/sawpanic/marketanalysis/internal/pivot"
)

func marker(kind pivot.Kind, swing pivot.SwingType, price float64) pivot.Marker {
	return pivot.Marker{Point: pivot.Point{Kind: kind, Price: price, Time: ohlc.Bar{Time: time.Now()}}, SwingType: swing}
}

func point(kind pivot.Kind, price float64) pivot.Point {
	return pivot.Point{Kind: kind, Price: price, Time: ohlc.Bar{Time: time.Now()}}
}

func TestAssessTrendFromSwings_BullishMajority(t *testing.T) {
	markers := []pivot.Marker{
		marker(pivot.KindLow, pivot.SwingHL, 90),
		marker(pivot.KindHigh, pivot.SwingHH, 110),
		marker(pivot.KindLow, pivot.SwingHL, 100),
		marker(pivot.KindHigh, pivot.SwingHH, 120),
	}
	recent := []pivot.Point{point(pivot.KindLow, 90), point(pivot.KindHigh, 110), point(pivot.KindLow, 100), point(pivot.KindHigh, 120)}

	assessment := AssessTrendFromSwings(markers, recent, 125)
	assert.Equal(t, TrendBullish, assessment.Trend)
	assert.Equal(t, pivot.SwingHH, assessment.SwingType)
	assert.Equal(t, 75.0, assessment.Confidence)
}

func TestAssessTrendFromSwings_NeutralWhenTied(t *testing.T) {
	markers := []pivot.Marker{
		marker(pivot.KindHigh, pivot.SwingHH, 110),
		marker(pivot.KindLow, pivot.SwingLL, 90),
	}
	assessment := AssessTrendFromSwings(markers, nil, 100)
	assert.Equal(t, TrendNeutral, assessment.Trend)
	assert.Equal(t, 50.0, assessment.Confidence)
}

func TestDetectRanging_TightRangeDeclaresRanging(t *testing.T) {
	pivots := []pivot.Point{
		point(pivot.KindHigh, 101),
		point(pivot.KindLow, 99.5),
		point(pivot.KindHigh, 100.8),
		point(pivot.KindLow, 99.7),
	}
	ranging, warning := DetectRanging(pivots)
	assert.True(t, ranging)
	assert.Contains(t, warning, "ranging")
}

func TestDetectRanging_FewerThanFourPivotsNeverRanging(t *testing.T) {
	ranging, _ := DetectRanging([]pivot.Point{point(pivot.KindHigh, 100)})
	assert.False(t, ranging)
}

func TestDetectPhase_BullishAboveLastHighIsContinuation(t *testing.T) {
	recent := []pivot.Point{point(pivot.KindLow, 90), point(pivot.KindHigh, 110)}
	phase := DetectPhase(TrendBullish, recent, 120)
	assert.Equal(t, PhaseContinuation, phase)
}

func TestDetectPhase_BullishAboveLastLowOnlyIsImpulse(t *testing.T) {
	recent := []pivot.Point{point(pivot.KindLow, 90), point(pivot.KindHigh, 110)}
	phase := DetectPhase(TrendBullish, recent, 100)
	assert.Equal(t, PhaseImpulse, phase)
}

func TestDetectPhase_NeutralIsAlwaysCorrection(t *testing.T) {
	phase := DetectPhase(TrendNeutral, nil, 100)
	assert.Equal(t, PhaseCorrection, phase)
}

package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreConfluence_BaseOnly(t *testing.T) {
	candidate := PriceLevel{Price: 123.45, Tool: ToolRetracement}
	score := ScoreConfluence(candidate, nil, nil, false)
	assert.Equal(t, 1, score.Total)
	assert.Equal(t, TierStandard, score.Tier)
}

func TestScoreConfluence_SameTFAndHigherTFAndCrossTool(t *testing.T) {
	candidate := PriceLevel{Price: 100, Tool: ToolRetracement}
	sameTF := []PriceLevel{{Price: 100.1, Tool: ToolRetracement}, {Price: 100.2, Tool: ToolExtension}}
	higherTF := []PriceLevel{{Price: 99.9, Tool: ToolProjection}}

	score := ScoreConfluence(candidate, sameTF, higherTF, true)
	// base=1, same_tf(+1 each for the retracement and extension levels = +2), higher_tf(+2), cross_tool(+2 for extension, +2 for projection = 2 distinct tools -> +4), previous_pivot(+2)
	assert.Equal(t, 1, score.Base)
	assert.Equal(t, 2, score.SameTF)
	assert.Equal(t, 1, score.HigherTF)
	assert.Equal(t, 2, score.CrossTool)
	assert.Equal(t, 2, score.PreviousPivot)
	assert.Equal(t, 1+2+2+4+2, score.Total)
}

func TestScoreConfluence_PsychologicalLevel(t *testing.T) {
	candidate := PriceLevel{Price: 50000, Tool: ToolRetracement}
	score := ScoreConfluence(candidate, nil, nil, false)
	assert.Equal(t, 1, score.Psychological)
}

func TestTierMonotonicity(t *testing.T) {
	totals := []int{0, 1, 2, 3, 4, 5, 6, 7, 8}
	tierRank := map[ConfluenceTier]int{TierStandard: 0, TierImportant: 1, TierSignificant: 2, TierMajor: 3}

	prevRank := -1
	for _, total := range totals {
		tier := tierFor(total)
		rank := tierRank[tier]
		assert.GreaterOrEqual(t, rank, prevRank)
		prevRank = rank
	}
}

func TestIsPsychologicalLevel_Bands(t *testing.T) {
	assert.True(t, isPsychologicalLevel(50))
	assert.False(t, isPsychologicalLevel(53))
	assert.True(t, isPsychologicalLevel(500))
	assert.True(t, isPsychologicalLevel(5000))
	assert.True(t, isPsychologicalLevel(60000))
}

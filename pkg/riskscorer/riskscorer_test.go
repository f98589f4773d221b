package riskscorer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"transit/pkg/domain"
)

func TestScore_BaseCaseNoTransfersNoHistory(t *testing.T) {
	score := Score(0, HistoricalFactors{})
	assert.Equal(t, 1.0, score)
	assert.Equal(t, domain.RiskVeryLow, Level(score))
}

func TestScore_TransfersOnly(t *testing.T) {
	score := Score(2, HistoricalFactors{})
	assert.InDelta(t, 2.6, score, 0.001)
	assert.Equal(t, domain.RiskLow, Level(score))
}

func TestScore_DelayMinutesCapsAtThree(t *testing.T) {
	score := Score(0, HistoricalFactors{AverageDelayMinutes: 1000})
	assert.InDelta(t, 4.0, score, 0.001)
}

func TestScore_ClampsToTen(t *testing.T) {
	score := Score(20, HistoricalFactors{
		AverageDelayMinutes: 1000,
		DelayFrequency:      1,
		CancellationRate:    1,
		AverageOccupancy:    0.95,
	})
	assert.Equal(t, 10.0, score)
	assert.Equal(t, domain.RiskVeryHigh, Level(score))
}

func TestScore_HighOccupancyBonus(t *testing.T) {
	withoutBonus := Score(0, HistoricalFactors{AverageOccupancy: 0.5})
	withBonus := Score(0, HistoricalFactors{AverageOccupancy: 0.95})
	assert.InDelta(t, 1.0, withoutBonus, 0.001)
	assert.InDelta(t, 2.0, withBonus, 0.001)
}

func TestLevel_Buckets(t *testing.T) {
	cases := []struct {
		score float64
		level domain.RiskLevel
	}{
		{1, domain.RiskVeryLow},
		{2, domain.RiskVeryLow},
		{2.1, domain.RiskLow},
		{4, domain.RiskLow},
		{4.1, domain.RiskMedium},
		{6, domain.RiskMedium},
		{6.1, domain.RiskHigh},
		{8, domain.RiskHigh},
		{8.1, domain.RiskVeryHigh},
		{10, domain.RiskVeryHigh},
	}
	for _, c := range cases {
		assert.Equal(t, c.level, Level(c.score), "score %v", c.score)
	}
}

func TestAssess_RecommendsFewerTransfers(t *testing.T) {
	result := Assess(2, HistoricalFactors{})
	assert.Contains(t, result.Recommendations, "Consider an itinerary with fewer transfers.")
}

func TestAssess_NoFactorsAddedWhenHistoryAbsent(t *testing.T) {
	result := Assess(0, HistoricalFactors{})
	assert.Len(t, result.Factors, 1)
	assert.Equal(t, "transfer_count", result.Factors[0].Name)
}

func TestDescription_NonEmptyForEveryLevel(t *testing.T) {
	levels := []domain.RiskLevel{domain.RiskVeryLow, domain.RiskLow, domain.RiskMedium, domain.RiskHigh, domain.RiskVeryHigh}
	for _, l := range levels {
		assert.NotEmpty(t, Description(l))
	}
}

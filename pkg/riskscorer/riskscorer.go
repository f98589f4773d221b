// Package riskscorer implements the C9 Risk Scorer: a pure function of
// a reconstructed route and optional historical delay/cancellation
// factors, per spec.md §4.9. Grounded on the teacher's
// services/simulation-svc/internal/engine scoring style (small, pure,
// additively-weighted scoring functions with a fixed clamp-and-bucket
// finish) rather than any single file, since no example repo scores an
// itinerary directly; the additive-factor/clamp/bucket shape is the
// teacher's idiom for every scoring routine it has (resilience and
// criticality scores alike).
package riskscorer

import (
	"math"

	"transit/pkg/domain"
)

// HistoricalFactors carries the optional delay/cancellation/occupancy
// inputs spec.md §4.9 folds into the base transfer-count score. Each
// field is independently optional; a zero value contributes nothing.
type HistoricalFactors struct {
	AverageDelayMinutes float64
	DelayFrequency      float64 // fraction of historical departures delayed, [0,1]
	CancellationRate    float64 // fraction of historical departures cancelled, [0,1]
	AverageOccupancy    float64 // fraction of seats filled, [0,1]
}

const (
	baseScore              = 1.0
	transferWeight         = 0.8
	delayMinutesDivisor    = 20.0
	delayMinutesCap        = 3.0
	delayFrequencyWeight   = 2.0
	cancellationWeight     = 3.0
	highOccupancyThreshold = 0.9
	highOccupancyBonus     = 1.0

	minScore = 1.0
	maxScore = 10.0
)

// Score computes the raw [1,10] risk score for a path with transferCount
// transfers and the given historical factors, per spec.md §4.9's formula.
func Score(transferCount int, hist HistoricalFactors) float64 {
	score := baseScore
	score += float64(transferCount) * transferWeight
	if hist.AverageDelayMinutes > 0 {
		score += math.Min(delayMinutesCap, hist.AverageDelayMinutes/delayMinutesDivisor)
	}
	score += hist.DelayFrequency * delayFrequencyWeight
	score += hist.CancellationRate * cancellationWeight
	if hist.AverageOccupancy > highOccupancyThreshold {
		score += highOccupancyBonus
	}

	if score < minScore {
		score = minScore
	}
	if score > maxScore {
		score = maxScore
	}
	return roundToOneDecimal(score)
}

func roundToOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}

// Level buckets a rounded score into spec.md §4.9's five fixed bands.
func Level(score float64) domain.RiskLevel {
	switch {
	case score <= 2:
		return domain.RiskVeryLow
	case score <= 4:
		return domain.RiskLow
	case score <= 6:
		return domain.RiskMedium
	case score <= 8:
		return domain.RiskHigh
	default:
		return domain.RiskVeryHigh
	}
}

var levelDescriptions = map[domain.RiskLevel]string{
	domain.RiskVeryLow:  "Very low risk: this itinerary is unlikely to be disrupted.",
	domain.RiskLow:      "Low risk: minor disruption is possible but unlikely to affect arrival.",
	domain.RiskMedium:   "Medium risk: some disruption is plausible, build in buffer time.",
	domain.RiskHigh:     "High risk: disruption is likely; consider a backup plan.",
	domain.RiskVeryHigh: "Very high risk: this itinerary is prone to delay or cancellation.",
}

// Description returns the fixed human-facing text for level.
func Description(level domain.RiskLevel) string {
	return levelDescriptions[level]
}

// Assess computes the full C9 RiskAssessment for a path with
// transferCount transfers and the given historical factors.
func Assess(transferCount int, hist HistoricalFactors) domain.RiskAssessment {
	score := Score(transferCount, hist)
	level := Level(score)

	factors := []domain.RiskFactor{
		{Name: "transfer_count", Value: float64(transferCount), Weight: transferWeight},
	}
	if hist.AverageDelayMinutes > 0 {
		factors = append(factors, domain.RiskFactor{Name: "average_delay_minutes", Value: hist.AverageDelayMinutes, Weight: 1.0 / delayMinutesDivisor})
	}
	if hist.DelayFrequency > 0 {
		factors = append(factors, domain.RiskFactor{Name: "delay_frequency", Value: hist.DelayFrequency, Weight: delayFrequencyWeight})
	}
	if hist.CancellationRate > 0 {
		factors = append(factors, domain.RiskFactor{Name: "cancellation_rate_90d", Value: hist.CancellationRate, Weight: cancellationWeight})
	}
	if hist.AverageOccupancy > 0 {
		factors = append(factors, domain.RiskFactor{Name: "average_occupancy", Value: hist.AverageOccupancy, Weight: highOccupancyBonus})
	}

	return domain.RiskAssessment{
		Score:           score,
		Level:           level,
		Factors:         factors,
		Recommendations: recommendations(transferCount, hist),
	}
}

// recommendations generates threshold-driven advice per spec.md §4.9's
// "e.g., transferCount>=2 -> consider fewer transfers" example.
func recommendations(transferCount int, hist HistoricalFactors) []string {
	var recs []string
	if transferCount >= 2 {
		recs = append(recs, "Consider an itinerary with fewer transfers.")
	}
	if hist.CancellationRate >= 0.1 {
		recs = append(recs, "This route has a notable cancellation history; check for a backup option.")
	}
	if hist.AverageDelayMinutes >= 30 {
		recs = append(recs, "Historical delays on this route average 30 minutes or more; build in buffer time.")
	}
	if hist.DelayFrequency >= 0.3 {
		recs = append(recs, "This route is delayed frequently; avoid tight connections.")
	}
	if hist.AverageOccupancy > highOccupancyThreshold {
		recs = append(recs, "This route typically runs near capacity; book in advance.")
	}
	return recs
}

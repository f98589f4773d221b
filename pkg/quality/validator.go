// Package quality implements the C1 Quality Validator: a pure,
// side-effect-free scorer that rates a Dataset across four weighted
// categories and recommends which recovery steps (if any) should run.
// Grounded on the teacher's services/validation-svc/internal/validators
// package style — percentage-of-valid-entities scoring, threshold-driven
// recommendations — adapted from flow-graph structural checks to transit
// dataset completeness checks.
package quality

import (
	"math"

	"transit/pkg/domain"
)

// Recommendation codes emitted in a quality report when a category score
// is low. They are informational: the recovery service (C2) does not read
// them and runs all of its steps.
const (
	RecommendRecoverCoordinates = "recover_coordinates"
	RecommendGenerateSchedules  = "generate_schedules"
	RecommendFillMissingNames   = "fill_missing_names"
)

// Thresholds configures the mode bands and the per-category thresholds
// used to decide whether a recommendation fires. Defaults mirror
// spec.md §4.1.
type Thresholds struct {
	Real                float64
	Recovery            float64
	CoordinatesMinimum  float64
	SchedulesMinimum    float64
}

// DefaultThresholds returns spec.md §4.1's default thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Real:               90,
		Recovery:           50,
		CoordinatesMinimum: 50,
		SchedulesMinimum:   50,
	}
}

// Validator scores datasets against a fixed set of Thresholds.
type Validator struct {
	thresholds Thresholds
}

// New creates a Validator using the given thresholds.
func New(thresholds Thresholds) *Validator {
	return &Validator{thresholds: thresholds}
}

// ThresholdsFromConfig builds Thresholds from the 0-1 scale config values
// (config.QualityConfig stores fractions; this package scores 0-100 to
// match spec.md §4.1's percentage formulas directly).
func ThresholdsFromConfig(thresholdReal, thresholdRecovery float64) Thresholds {
	t := DefaultThresholds()
	if thresholdReal > 0 {
		t.Real = thresholdReal * 100
	}
	if thresholdRecovery > 0 {
		t.Recovery = thresholdRecovery * 100
	}
	return t
}

// Validate computes a QualityReport for d. It never fails: on an empty
// dataset every category with a zero denominator scores 0.
func (v *Validator) Validate(d domain.Dataset) domain.QualityReport {
	routes := v.scoreRoutes(d)
	stops := v.scoreStops(d)
	coords := v.scoreCoordinates(d)
	schedules := v.scoreSchedules(d)

	overall := math.Round(0.4*routes.Score + 0.3*stops.Score + 0.2*coords.Score + 0.1*schedules.Score)

	report := domain.QualityReport{
		OverallScore: overall,
		Categories:   []domain.CategoryScore{routes, stops, coords, schedules},
	}

	if coords.Score < v.thresholds.CoordinatesMinimum {
		report.Recommendations = append(report.Recommendations, RecommendRecoverCoordinates)
	}
	if schedules.Score < v.thresholds.SchedulesMinimum {
		report.Recommendations = append(report.Recommendations, RecommendGenerateSchedules)
	}
	if stops.Score < 100 {
		report.Recommendations = append(report.Recommendations, RecommendFillMissingNames)
	}

	report.Mode = v.Mode(overall)
	report.ShouldRecover = v.ShouldRecover(report)
	return report
}

// Mode classifies an overall score into REAL/RECOVERY/MOCK per the
// configured thresholds.
func (v *Validator) Mode(overallScore float64) domain.DatasetMode {
	switch {
	case overallScore >= v.thresholds.Real:
		return domain.ModeReal
	case overallScore >= v.thresholds.Recovery:
		return domain.ModeRecovery
	default:
		return domain.ModeMock
	}
}

// ShouldRecover reports whether a report falls in the RECOVERY band.
func (v *Validator) ShouldRecover(report domain.QualityReport) bool {
	return report.OverallScore >= v.thresholds.Recovery && report.OverallScore < v.thresholds.Real
}

func (v *Validator) scoreRoutes(d domain.Dataset) domain.CategoryScore {
	total := len(d.Routes)
	valid := 0
	for _, r := range d.Routes {
		if r.ID != "" && routeHasName(r) && r.Transport != "" && routeStopCount(r) >= 2 {
			valid++
		}
	}
	return domain.CategoryScore{Name: "routes", Score: percent(valid, total), Total: total, Valid: valid}
}

// routeHasName treats an Operator or a non-empty ID as the route's
// "name" proxy, since domain.Route has no dedicated display-name field;
// the flattened per-stop-pair Route model (grounded on passbi_core's
// ride-edge model) carries identity through ID/Operator instead.
func routeHasName(r domain.Route) bool {
	return r.ID != "" || r.Operator != ""
}

// routeStopCount returns the number of stops implied by a flattened
// from/to Route record: 2 when both endpoints are present, matching
// spec.md's "|stops|>=2" condition for this model's minimal route.
func routeStopCount(r domain.Route) int {
	if r.FromStopID == "" || r.ToStopID == "" {
		return 0
	}
	return 2
}

func (v *Validator) scoreStops(d domain.Dataset) domain.CategoryScore {
	total := len(d.Stops)
	valid := 0
	for _, s := range d.Stops {
		if s.ID != "" && s.Name != "" {
			valid++
		}
	}
	return domain.CategoryScore{Name: "stops", Score: percent(valid, total), Total: total, Valid: valid}
}

func (v *Validator) scoreCoordinates(d domain.Dataset) domain.CategoryScore {
	total := len(d.Stops)
	valid := 0
	for _, s := range d.Stops {
		if !s.Coordinates.IsZero() && s.Coordinates.Valid() {
			valid++
		}
	}
	return domain.CategoryScore{Name: "coordinates", Score: percent(valid, total), Total: total, Valid: valid}
}

func (v *Validator) scoreSchedules(d domain.Dataset) domain.CategoryScore {
	total := len(d.Routes)
	scheduled := make(map[string]bool, len(d.Flights))
	for _, f := range d.Flights {
		scheduled[f.Route.ID] = true
	}
	valid := 0
	for _, r := range d.Routes {
		if scheduled[r.ID] {
			valid++
		}
	}
	return domain.CategoryScore{Name: "schedules", Score: percent(valid, total), Total: total, Valid: valid}
}

func percent(valid, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(100 * float64(valid) / float64(total))
}

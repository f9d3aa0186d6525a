// Package grading converts raw metric values into normalized 0-100 scores
// and letter grades, and combines per-category scores into overall scores.
// Everything in here is pure arithmetic: no I/O, no shared state.
package grading

import "math"

// MetricThresholds holds the boundary values for one metric. For
// lower-is-better metrics Good < NeedsImprovement < Poor; inverted for
// higher-is-better metrics.
type MetricThresholds struct {
	Good             float64 `json:"good"`
	NeedsImprovement float64 `json:"needsImprovement"`
	Poor             float64 `json:"poor"`
}

// NormalizeLowerBetter applies the three-zone curve using the record's
// boundaries for a lower-is-better metric.
func (t MetricThresholds) NormalizeLowerBetter(value float64) float64 {
	return NormalizeLowerBetter(value, t.Good, t.NeedsImprovement, t.Poor)
}

// NormalizeHigherBetter applies the mirrored curve for a higher-is-better
// metric.
func (t MetricThresholds) NormalizeHigherBetter(value float64) float64 {
	return NormalizeHigherBetter(value, t.Good, t.NeedsImprovement, t.Poor)
}

// Grade is a letter grade derived from a numeric score.
type Grade struct {
	Letter     string `json:"letter"`
	ColorToken string `json:"colorToken"`
	Label      string `json:"label"`
}

// gradeBands is scanned top-down; the first band whose lower bound the score
// meets wins, so anything below 40 falls through to F.
var gradeBands = []struct {
	min   float64
	grade Grade
}{
	{90, Grade{Letter: "A", ColorToken: "green", Label: "Excellent"}},
	{75, Grade{Letter: "B", ColorToken: "teal", Label: "Good"}},
	{60, Grade{Letter: "C", ColorToken: "yellow", Label: "Fair"}},
	{40, Grade{Letter: "D", ColorToken: "orange", Label: "Needs Work"}},
}

var gradeF = Grade{Letter: "F", ColorToken: "red", Label: "Failing"}

// GetGrade maps any score to a letter grade. Scores above 100 grade as A,
// scores below 0 as F; the function is total.
func GetGrade(score float64) Grade {
	for _, band := range gradeBands {
		if score >= band.min {
			return band.grade
		}
	}
	return gradeF
}

// NormalizeLowerBetter maps a raw metric value to a 0-100 score for metrics
// where smaller is better (latency, layout shift). The curve is piecewise:
// 100 at or below ideal, linear to 75 at warning, linear to 40 at critical,
// then exponential decay toward 0. Early degradation costs little; values
// past critical collapse fast.
func NormalizeLowerBetter(value, ideal, warning, critical float64) float64 {
	switch {
	case value <= ideal:
		return 100
	case value <= warning:
		return 100 - 25*(value-ideal)/(warning-ideal)
	case value <= critical:
		return 75 - 35*(value-warning)/(critical-warning)
	default:
		if critical <= 0 {
			return 0
		}
		overshoot := (value - critical) / critical
		return clamp(40 * math.Exp(-overshoot))
	}
}

// NormalizeHigherBetter is the mirror of NormalizeLowerBetter for metrics
// where bigger is better (coverage percentages, counts).
func NormalizeHigherBetter(value, ideal, warning, critical float64) float64 {
	switch {
	case value >= ideal:
		return 100
	case value >= warning:
		return 75 + 25*(value-warning)/(ideal-warning)
	case value >= critical:
		return 40 + 35*(value-critical)/(warning-critical)
	default:
		if critical <= 0 {
			return 0
		}
		shortfall := (critical - value) / critical
		return clamp(40 * math.Exp(-shortfall))
	}
}

// IssueCounts tallies detected issues by severity.
type IssueCounts struct {
	Critical int `json:"critical,omitempty"`
	High     int `json:"high,omitempty"`
	Medium   int `json:"medium,omitempty"`
	Low      int `json:"low,omitempty"`
	Info     int `json:"info,omitempty"`
}

// Severity weights: one critical issue weighs as much as roughly three
// low-severity ones.
const (
	weightCritical = 1.0
	weightHigh     = 0.8
	weightMedium   = 0.5
	weightLow      = 0.3
	weightInfo     = 0.1
)

// WeightedScoreOptions tunes the issue penalty model. Zero values take the
// documented defaults.
type WeightedScoreOptions struct {
	// MaxIssuesBeforeFullPenalty is the weighted-issue count at which the
	// full penalty applies. Default 10.
	MaxIssuesBeforeFullPenalty float64
	// MaxPenalty is the largest deduction in points. Default 100.
	MaxPenalty float64
	// BaseWeight scales the deduction. Default 1.0.
	BaseWeight float64
}

func (o WeightedScoreOptions) withDefaults() WeightedScoreOptions {
	if o.MaxIssuesBeforeFullPenalty <= 0 {
		o.MaxIssuesBeforeFullPenalty = 10
	}
	if o.MaxPenalty <= 0 {
		o.MaxPenalty = 100
	}
	if o.BaseWeight <= 0 {
		o.BaseWeight = 1.0
	}
	return o
}

// WeightedScore deducts a severity-weighted issue penalty from baseScore.
// The penalty saturates once the weighted issue total reaches
// MaxIssuesBeforeFullPenalty; the result is clamped to [0,100].
func WeightedScore(baseScore float64, issues IssueCounts, opts WeightedScoreOptions) float64 {
	opts = opts.withDefaults()

	totalWeighted := float64(issues.Critical)*weightCritical +
		float64(issues.High)*weightHigh +
		float64(issues.Medium)*weightMedium +
		float64(issues.Low)*weightLow +
		float64(issues.Info)*weightInfo

	penaltyPct := totalWeighted / opts.MaxIssuesBeforeFullPenalty
	if penaltyPct > 1 {
		penaltyPct = 1
	}

	return clamp(math.Round(baseScore - opts.MaxPenalty*penaltyPct*opts.BaseWeight))
}

// DefaultMaxIssueImpact is the assumed per-issue headroom used by
// ImprovementPotential when callers have no better estimate.
const DefaultMaxIssueImpact = 5

// ImprovementPotential estimates how many points a page could gain by fixing
// its issues. Never exceeds the actual gap to 100.
func ImprovementPotential(currentScore float64, issueCount int, maxIssueImpact float64) float64 {
	gap := 100 - currentScore
	if gap < 0 {
		gap = 0
	}
	estimate := float64(issueCount) * maxIssueImpact
	return math.Min(gap, estimate)
}

// IndustryComparison describes how a score sits relative to an industry
// average.
type IndustryComparison struct {
	Difference           float64 `json:"difference"`
	PercentageDifference float64 `json:"percentageDifference"`
	ComparisonText       string  `json:"comparisonText"`
}

// CompareToIndustryAverage buckets the score difference into qualitative
// bands at +/-5 and +/-15 points.
func CompareToIndustryAverage(score, average float64) IndustryComparison {
	diff := score - average

	pct := 0.0
	if average != 0 {
		pct = diff / average * 100
	}

	var text string
	switch {
	case diff >= 15:
		text = "well above the industry average"
	case diff >= 5:
		text = "above the industry average"
	case diff > -5:
		text = "in line with the industry average"
	case diff > -15:
		text = "below the industry average"
	default:
		text = "well below the industry average"
	}

	return IndustryComparison{
		Difference:           diff,
		PercentageDifference: pct,
		ComparisonText:       text,
	}
}

// WeightedComponent is one named category score with its share of the
// overall score. Weights across a component set should sum to 1.0.
type WeightedComponent struct {
	Name   string  `json:"name"`
	Score  float64 `json:"rawScore"`
	Weight float64 `json:"weight"`
}

// CombineWeighted folds component scores into one rounded overall score.
func CombineWeighted(components []WeightedComponent) float64 {
	total := 0.0
	for _, c := range components {
		total += c.Score * c.Weight
	}
	return clamp(math.Round(total))
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

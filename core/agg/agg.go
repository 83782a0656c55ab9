// Package agg has aggregation logic for analyzer results.
package agg

import (
	"fmt"

	"github.com/huangsam/repohealth/schema"
)

// Grade thresholds on the 0-100 scale.
const (
	ExcellentThreshold = 90.0
	GoodThreshold      = 80.0
	FairThreshold      = 70.0
	NeedsWorkThreshold = 60.0
)

// badgeTemplate is the shields.io URL for a repository health badge.
const badgeTemplate = "https://img.shields.io/badge/repo--health-%s-%s?style=flat-square&logo=github"

// CalculateOverall combines analyzer outputs into the overall score.
// The weighted sum is taken literally (no normalization by the weight sum)
// and clamped to [0, 100].
func CalculateOverall(outputs []schema.AnalyzerOutput) float64 {
	sum := 0.0
	for _, o := range outputs {
		sum += o.WeightedScore()
	}
	return clamp(sum, 0, 100)
}

// WeightSum returns the sum of the weights of the given outputs.
func WeightSum(outputs []schema.AnalyzerOutput) float64 {
	sum := 0.0
	for _, o := range outputs {
		sum += o.Weight
	}
	return sum
}

// Grade returns the descriptive letter grade for a score.
func Grade(score float64) string {
	switch {
	case score >= ExcellentThreshold:
		return "A+ Excellent"
	case score >= GoodThreshold:
		return "A Good"
	case score >= FairThreshold:
		return "B Fair"
	case score >= NeedsWorkThreshold:
		return "C Needs Improvement"
	default:
		return "D Poor"
	}
}

// GradeShort returns the letter-only grade for a score.
func GradeShort(score float64) string {
	switch {
	case score >= ExcellentThreshold:
		return "A+"
	case score >= GoodThreshold:
		return "A"
	case score >= FairThreshold:
		return "B"
	case score >= NeedsWorkThreshold:
		return "C"
	default:
		return "D"
	}
}

// BadgeURL returns a shields.io badge URL reflecting the score tier.
func BadgeURL(score float64) string {
	var label, color string
	switch {
	case score >= ExcellentThreshold:
		label, color = "excellent", "brightgreen"
	case score >= GoodThreshold:
		label, color = "good", "green"
	case score >= FairThreshold:
		label, color = "fair", "yellow"
	case score >= NeedsWorkThreshold:
		label, color = "needs--improvement", "orange"
	default:
		label, color = "poor", "red"
	}
	return fmt.Sprintf(badgeTemplate, label, color)
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package core

import (
	"fmt"

	"github.com/huangsam/repohealth/core/algo"
	"github.com/huangsam/repohealth/schema"
)

// Bus factor reporting rules.
const (
	concentrationThreshold = 70.0
)

// BusFactorAnalyzer scores knowledge concentration among contributors.
type BusFactorAnalyzer struct {
	weighted
}

var _ Analyzer = &BusFactorAnalyzer{} // Compile-time check

// Analyze implements the Analyzer interface.
func (a *BusFactorAnalyzer) Analyze(snap *schema.RepoSnapshot) (schema.AnalysisResult, error) {
	b := &resultBuilder{}

	result := algo.CalculateBusFactor(snap.Contributors)
	if result.Contributors == 0 {
		b.add(algo.ScoreResult(result), schema.Warning("No contributor data available"))
		return b.build("Unable to calculate bus factor - no contributor data"), nil
	}

	b.add(algo.ScoreResult(result), schema.Positive(fmt.Sprintf(
		"Bus factor: %d (minimum contributors accounting for 50%% of commits)", result.BusFactor)))

	if len(result.TopContributors) > 0 {
		b.note(schema.Positive(fmt.Sprintf("Total contributors: %d", len(snap.Contributors))))
		for i, c := range result.TopContributors {
			msg := fmt.Sprintf("%s: %d commits (%.1f%%)", c.Login, c.Commits, c.Percentage)
			if i == 0 && c.Percentage > concentrationThreshold {
				b.note(schema.Warning(msg + " - High concentration of ownership"))
				continue
			}
			b.note(schema.Positive(msg))
		}
	}

	return b.build(busFactorDetails(result.BusFactor)), nil
}

// busFactorDetails summarizes the bus factor bucket.
func busFactorDetails(busFactor int) string {
	switch {
	case busFactor <= 0:
		return "No commit data available"
	case busFactor == 1:
		return "Critical: Single person controls >50% of commits"
	case busFactor == 2:
		return "Low: Two people control >50% of commits"
	case busFactor <= 4:
		return "Moderate: Small team of 3-4 core contributors"
	default:
		return "Healthy: Well-distributed contributions"
	}
}

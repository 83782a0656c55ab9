package algo

import "github.com/huangsam/repohealth/schema"

// MaxTopContributors caps the number of contributors reported with their share.
const MaxTopContributors = 5

// NoContributorScore is the neutral score reported when there is no contributor data.
const NoContributorScore = 50.0

// Bus factor score ladder.
const (
	busFactorNoneScore      = 0.0
	busFactorSingleScore    = 10.0
	busFactorPairScore      = 40.0
	busFactorSmallScore     = 70.0
	busFactorHealthyScore   = 100.0
	busFactorHealthyMinimum = 5
)

// CalculateBusFactor returns the minimum number of top contributors whose
// combined commits reach half of all commits (integer division), along with
// up to MaxTopContributors of the ranked contributors and their share.
//
// An empty list or a zero commit total yields a bus factor of 0. Callers that
// need to distinguish "no data" must check for an empty list first.
func CalculateBusFactor(contributors []schema.ContributorStats) schema.BusFactorResult {
	result := schema.BusFactorResult{
		Contributors:    len(contributors),
		TopContributors: []schema.TopContributor{},
	}
	total := TotalCommits(contributors)
	result.TotalCommits = total
	if len(contributors) == 0 || total == 0 {
		return result
	}

	ranked := RankContributors(contributors)
	target := total / 2

	running := 0
	for _, c := range ranked {
		running += c.Total
		result.BusFactor++
		if running >= target {
			break
		}
	}

	for i, c := range ranked {
		if i >= MaxTopContributors {
			break
		}
		result.TopContributors = append(result.TopContributors, schema.TopContributor{
			Login:      c.Login,
			Commits:    c.Total,
			Percentage: float64(c.Total) / float64(total) * 100,
		})
	}

	return result
}

// ScoreResult scores a computed bus factor. A result built from an empty
// contributor list gets NoContributorScore instead of the bus factor 0 score.
func ScoreResult(result schema.BusFactorResult) float64 {
	if result.Contributors == 0 {
		return NoContributorScore
	}
	return ScoreBusFactor(result.BusFactor)
}

// ScoreBusFactor maps a bus factor to its score on the 0-100 scale.
func ScoreBusFactor(busFactor int) float64 {
	switch {
	case busFactor <= 0:
		return busFactorNoneScore
	case busFactor == 1:
		return busFactorSingleScore
	case busFactor == 2:
		return busFactorPairScore
	case busFactor < busFactorHealthyMinimum:
		return busFactorSmallScore
	default:
		return busFactorHealthyScore
	}
}

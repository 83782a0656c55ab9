// Package algo holds the pure ranking and bus-factor algorithms.
package algo

import (
	"sort"

	"github.com/huangsam/repohealth/schema"
)

// RankContributors returns a copy of contributors sorted by commit total in
// descending order. Ties keep their original relative order.
func RankContributors(contributors []schema.ContributorStats) []schema.ContributorStats {
	ranked := make([]schema.ContributorStats, len(contributors))
	copy(ranked, contributors)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total > ranked[j].Total
	})
	return ranked
}

// TotalCommits sums the commit totals of all contributors.
func TotalCommits(contributors []schema.ContributorStats) int {
	total := 0
	for _, c := range contributors {
		total += c.Total
	}
	return total
}

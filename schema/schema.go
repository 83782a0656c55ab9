// Package schema has models and constants shared by all parts of repohealth.
package schema

import (
	"strings"
	"time"
)

// TreeEntry is a single path in the repository tree listing.
type TreeEntry struct {
	Path string    `json:"path" yaml:"path"` // Path relative to the repository root
	Kind EntryKind `json:"type" yaml:"type"` // blob for files, tree for directories
}

// IsBlob reports whether the entry is a file.
func (e TreeEntry) IsBlob() bool {
	return e.Kind == BlobEntry
}

// ContributorStats holds the commit total for one contributor.
type ContributorStats struct {
	Login string `json:"login" yaml:"login"`
	Total int    `json:"total" yaml:"total"`
}

// RepoMeta is the repository-level metadata needed by the analyzers and renderers.
type RepoMeta struct {
	Owner         string `json:"owner" yaml:"owner"`
	Name          string `json:"name" yaml:"name"`
	FullName      string `json:"full_name" yaml:"full_name"`
	DefaultBranch string `json:"default_branch" yaml:"default_branch"`
	Archived      bool   `json:"archived" yaml:"archived"`
}

// RepoSnapshot is the read-only input to every analyzer.
// A nil Readme means the repository has no README. Partial marks a snapshot
// whose source had not finished computing some payload; it must not be cached.
type RepoSnapshot struct {
	Repository   RepoMeta           `json:"repository" yaml:"repository"`
	Tree         []TreeEntry        `json:"tree" yaml:"tree"`
	Readme       *string            `json:"readme,omitempty" yaml:"readme,omitempty"`
	HasLicense   bool               `json:"has_license" yaml:"has_license"`
	Contributors []ContributorStats `json:"contributors" yaml:"contributors"`
	FetchedAt    time.Time          `json:"fetched_at" yaml:"fetched_at"`
	Partial      bool               `json:"partial,omitempty" yaml:"partial,omitempty"`
}

// HasReadme reports whether README content is present.
func (s *RepoSnapshot) HasReadme() bool {
	return s.Readme != nil
}

// ReadmeText returns the README content or an empty string.
func (s *RepoSnapshot) ReadmeText() string {
	if s.Readme == nil {
		return ""
	}
	return *s.Readme
}

// Blobs returns the file entries of the tree.
func (s *RepoSnapshot) Blobs() []TreeEntry {
	blobs := make([]TreeEntry, 0, len(s.Tree))
	for _, e := range s.Tree {
		if e.IsBlob() {
			blobs = append(blobs, e)
		}
	}
	return blobs
}

// Finding is one categorized observation emitted by an analyzer.
type Finding struct {
	Status  FindingStatus `json:"status" yaml:"status"`
	Message string        `json:"message" yaml:"message"`
}

// Positive builds a finding for a criterion that was met.
func Positive(msg string) Finding {
	return Finding{Status: PositiveStatus, Message: msg}
}

// Warning builds a finding for a criterion that was partially met.
func Warning(msg string) Finding {
	return Finding{Status: WarningStatus, Message: msg}
}

// Missing builds a finding for a criterion that was not met.
func Missing(msg string) Finding {
	return Finding{Status: MissingStatus, Message: msg}
}

// Symbol returns the console marker for the finding status.
func (f Finding) Symbol() string {
	switch f.Status {
	case PositiveStatus:
		return "✓"
	case WarningStatus:
		return "⚠"
	default:
		return "✗"
	}
}

// AnalysisResult is the outcome of one analyzer.
type AnalysisResult struct {
	Score    float64   `json:"score" yaml:"score"` // Always within [0, 100]
	Details  string    `json:"details" yaml:"details"`
	Findings []Finding `json:"findings" yaml:"findings"`
}

// CountByStatus returns the number of findings with the given status.
func (r AnalysisResult) CountByStatus(status FindingStatus) int {
	n := 0
	for _, f := range r.Findings {
		if f.Status == status {
			n++
		}
	}
	return n
}

// AnalyzerSpec describes a registered analyzer.
type AnalyzerSpec struct {
	Name     string  `json:"name" yaml:"name"`
	Weight   float64 `json:"weight" yaml:"weight"`
	Criteria string  `json:"criteria" yaml:"criteria"` // Human-readable scoring ladder
}

// AnalyzerOutput pairs an analyzer's identity with its result.
type AnalyzerOutput struct {
	Name   string         `json:"name" yaml:"name"`
	Weight float64        `json:"weight" yaml:"weight"`
	Result AnalysisResult `json:"result" yaml:"result"`
}

// WeightedScore is the contribution of this output to the overall score.
func (o AnalyzerOutput) WeightedScore() float64 {
	return o.Result.Score * o.Weight
}

// TopContributor is a contributor annotated with their share of all commits.
type TopContributor struct {
	Login      string  `json:"login" yaml:"login"`
	Commits    int     `json:"commits" yaml:"commits"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

// BusFactorResult is the outcome of the bus-factor computation.
type BusFactorResult struct {
	BusFactor       int              `json:"bus_factor" yaml:"bus_factor"`
	TotalCommits    int              `json:"total_commits" yaml:"total_commits"`
	Contributors    int              `json:"contributors" yaml:"contributors"`
	TopContributors []TopContributor `json:"top_contributors" yaml:"top_contributors"`
}

// HealthReport is the final result of scoring a repository.
type HealthReport struct {
	Repository   RepoMeta         `json:"repository" yaml:"repository"`
	Outputs      []AnalyzerOutput `json:"analyzers" yaml:"analyzers"`
	OverallScore float64          `json:"overall_score" yaml:"overall_score"`
	Grade        string           `json:"grade" yaml:"grade"`
	GradeShort   string           `json:"grade_short" yaml:"grade_short"`
	BadgeURL     string           `json:"badge_url" yaml:"badge_url"`
	GeneratedAt  time.Time        `json:"generated_at" yaml:"generated_at"`
	Duration     time.Duration    `json:"duration_ns" yaml:"duration_ns"`
}

// Output returns the analyzer output with the given name.
func (r *HealthReport) Output(name string) (AnalyzerOutput, bool) {
	for _, o := range r.Outputs {
		if strings.EqualFold(o.Name, name) {
			return o, true
		}
	}
	return AnalyzerOutput{}, false
}

// CheckViolation is a score that fell below its configured threshold.
type CheckViolation struct {
	Target    string  `json:"target"` // analyzer name or "overall"
	Score     float64 `json:"score"`
	Threshold float64 `json:"threshold"`
}

// CheckResult is the outcome of gating a health report against thresholds.
type CheckResult struct {
	Repository string             `json:"repository"`
	Passed     bool               `json:"passed"`
	Overall    float64            `json:"overall"`
	Grade      string             `json:"grade"`
	Thresholds map[string]float64 `json:"thresholds"`
	Violations []CheckViolation   `json:"violations"`
}

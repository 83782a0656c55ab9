package core

import (
	"maps"

	"github.com/huangsam/repohealth/schema"
)

// Analyzer inspects a repository snapshot and scores one health dimension.
// Implementations must be pure: no I/O and no mutation of the snapshot.
// Missing data is reported through findings, never through an error.
type Analyzer interface {
	Name() string
	Weight() float64
	Analyze(snap *schema.RepoSnapshot) (schema.AnalysisResult, error)
}

// weighted carries the name and weight shared by every analyzer.
type weighted struct {
	name   string
	weight float64
}

// Name implements the Analyzer interface.
func (w weighted) Name() string { return w.name }

// Weight implements the Analyzer interface.
func (w weighted) Weight() float64 { return w.weight }

// newWeighted resolves the weight for name, falling back to the built-in default.
func newWeighted(name string, weights map[string]float64) weighted {
	weight, ok := weights[name]
	if !ok {
		weight = schema.DefaultWeights[name]
	}
	return weighted{name: name, weight: weight}
}

// DefaultAnalyzers returns the fixed analyzer set with built-in weights.
func DefaultAnalyzers() []Analyzer {
	return NewAnalyzers(nil)
}

// NewAnalyzers returns the fixed analyzer set in registry order. Entries in
// weights override the built-in weight of the analyzer with the same name.
func NewAnalyzers(weights map[string]float64) []Analyzer {
	w := make(map[string]float64, len(schema.DefaultWeights))
	maps.Copy(w, schema.DefaultWeights)
	maps.Copy(w, weights)

	return []Analyzer{
		&DocumentationAnalyzer{weighted: newWeighted(schema.DocumentationName, w)},
		&TestsAnalyzer{weighted: newWeighted(schema.TestsName, w)},
		&CICDAnalyzer{weighted: newWeighted(schema.CICDName, w)},
		&DependenciesAnalyzer{weighted: newWeighted(schema.DependenciesName, w)},
		&BusFactorAnalyzer{weighted: newWeighted(schema.BusFactorName, w)},
	}
}

// analyzerCriteria summarizes how each analyzer awards points.
var analyzerCriteria = map[string]string{
	schema.DocumentationName: "README 40, >500 chars 10, sections 10, docs dir 20, LICENSE 10, CONTRIBUTING 10",
	schema.TestsName:         "test dir 40, 5+ test files 20, 10+ test files 10, CI 20, coverage badge 10",
	schema.CICDName:          "GitHub Actions 50, multiple workflows 15, other CI 40, pipeline 20",
	schema.DependenciesName:  "manifest 20, dependency estimate 20, not archived 40",
	schema.BusFactorName:     "1: 10, 2: 40, 3-4: 70, 5+: 100, no data: 50",
}

// Specs lists the name, weight and scoring criteria of every analyzer.
func Specs(analyzers []Analyzer) []schema.AnalyzerSpec {
	specs := make([]schema.AnalyzerSpec, len(analyzers))
	for i, a := range analyzers {
		specs[i] = schema.AnalyzerSpec{Name: a.Name(), Weight: a.Weight(), Criteria: analyzerCriteria[a.Name()]}
	}
	return specs
}

// resultBuilder accumulates points and findings for a single analysis.
type resultBuilder struct {
	score    float64
	findings []schema.Finding
}

// add awards points and records the finding that justified them.
func (b *resultBuilder) add(points float64, f schema.Finding) *resultBuilder {
	b.score += points
	b.findings = append(b.findings, f)
	return b
}

// note records a finding without awarding points.
func (b *resultBuilder) note(f schema.Finding) *resultBuilder {
	b.findings = append(b.findings, f)
	return b
}

// positives counts the positive findings recorded so far.
func (b *resultBuilder) positives() int {
	n := 0
	for _, f := range b.findings {
		if f.Status == schema.PositiveStatus {
			n++
		}
	}
	return n
}

// build produces the immutable result, clamping the score to [0, 100].
func (b *resultBuilder) build(details string) schema.AnalysisResult {
	score := b.score
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	findings := make([]schema.Finding, len(b.findings))
	copy(findings, b.findings)
	return schema.AnalysisResult{Score: score, Details: details, Findings: findings}
}

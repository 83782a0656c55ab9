package core

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/huangsam/repohealth/internal/contract"
	"github.com/huangsam/repohealth/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource serves a fixed snapshot and counts fetches.
type fakeSource struct {
	snap     *schema.RepoSnapshot
	revision string
	err      error
	fetches  atomic.Int32
}

var _ contract.SnapshotSource = &fakeSource{} // Compile-time check

func (f *fakeSource) Kind() schema.SourceKind { return schema.LocalSource }

func (f *fakeSource) Fetch(_ context.Context, _ contract.RepoTarget) (*schema.RepoSnapshot, error) {
	f.fetches.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.snap, nil
}

func (f *fakeSource) Revision(_ context.Context, _ contract.RepoTarget) string { return f.revision }

// useSource swaps the source factory for the duration of a test.
func useSource(t *testing.T, src contract.SnapshotSource, err error) {
	t.Helper()
	original := newSource
	newSource = func(*contract.Config) (contract.SnapshotSource, error) {
		return src, err
	}
	t.Cleanup(func() { newSource = original })
}

// captureHeaderOutput redirects progress headers into a buffer.
func captureHeaderOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	original := contract.HeaderWriter
	contract.HeaderWriter = &buf
	t.Cleanup(func() { contract.HeaderWriter = original })
	return &buf
}

// testConfig returns a quiet config for a local target with default weights.
func testConfig() *contract.Config {
	return &contract.Config{
		Target:     contract.NewLocalTarget("/work/demo"),
		Workers:    2,
		Precision:  1,
		Output:     schema.TextOut,
		Quiet:      true,
		Weights:    schema.DefaultWeights,
		Thresholds: map[string]float64{contract.OverallTarget: contract.DefaultOverallGate},
	}
}

// bareSnapshot is a repository with no README, tests, CI or manifest and two contributors.
func bareSnapshot() *schema.RepoSnapshot {
	return &schema.RepoSnapshot{
		Repository: schema.RepoMeta{Name: "demo", FullName: "demo", DefaultBranch: "main"},
		Tree:       []schema.TreeEntry{},
		Contributors: []schema.ContributorStats{
			{Login: "A", Total: 90},
			{Login: "B", Total: 10},
		},
	}
}

// TestGetHealthReportBareRepository verifies scoring of a repository with almost nothing in it.
func TestGetHealthReportBareRepository(t *testing.T) {
	useSource(t, &fakeSource{snap: bareSnapshot()}, nil)

	report, err := GetHealthReport(context.Background(), testConfig(), nil)
	require.NoError(t, err)
	require.Len(t, report.Outputs, 5)

	expected := map[string]float64{
		schema.DocumentationName: 0,
		schema.TestsName:         0,
		schema.CICDName:          0,
		schema.DependenciesName:  0,
		schema.BusFactorName:     10,
	}
	for i, o := range report.Outputs {
		assert.Equal(t, schema.AnalyzerOrder[i], o.Name)
		assert.Equal(t, expected[o.Name], o.Result.Score, o.Name)
	}

	bus, ok := report.Output(schema.BusFactorName)
	require.True(t, ok)
	assert.Equal(t, 1, bus.Result.CountByStatus(schema.WarningStatus))
	assert.Contains(t, bus.Result.Findings[len(bus.Result.Findings)-2].Message, "High concentration of ownership")

	assert.InDelta(t, 1.5, report.OverallScore, 1e-9)
	assert.Equal(t, "D Poor", report.Grade)
	assert.Equal(t, "D", report.GradeShort)
	assert.Contains(t, report.BadgeURL, "poor-red")
	assert.Equal(t, "demo", report.Repository.FullName)
	assert.False(t, report.GeneratedAt.IsZero())
}

// TestGetHealthReportHealthyRepository verifies a well-kept repository lands in the top grade.
func TestGetHealthReportHealthyRepository(t *testing.T) {
	text := "# Demo\n\n## Install\n\n![coverage](https://img.shields.io/badge/coverage-95-green)\n" + string(bytes.Repeat([]byte("x"), 500))
	tree := []schema.TreeEntry{
		{Path: "tests", Kind: schema.TreeKind},
		{Path: "docs/index.md", Kind: schema.BlobEntry},
		{Path: "CONTRIBUTING.md", Kind: schema.BlobEntry},
		{Path: "go.mod", Kind: schema.BlobEntry},
		{Path: ".github/workflows/ci.yml", Kind: schema.BlobEntry},
		{Path: ".github/workflows/release.yml", Kind: schema.BlobEntry},
	}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		tree = append(tree, schema.TreeEntry{Path: "pkg/" + name + "_test.go", Kind: schema.BlobEntry})
	}
	var contributors []schema.ContributorStats
	for _, login := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		contributors = append(contributors, schema.ContributorStats{Login: login, Total: 10})
	}
	useSource(t, &fakeSource{snap: &schema.RepoSnapshot{
		Repository:   schema.RepoMeta{Owner: "octo", Name: "demo", FullName: "octo/demo"},
		Tree:         tree,
		Readme:       &text,
		HasLicense:   true,
		Contributors: contributors,
	}}, nil)

	report, err := GetHealthReport(context.Background(), testConfig(), nil)
	require.NoError(t, err)

	// CI/CD caps at 85 with two workflows and no other system.
	assert.InDelta(t, 0.2*100+0.25*100+0.2*85+0.2*80+0.15*100, report.OverallScore, 1e-9)
	assert.Equal(t, "A+ Excellent", report.Grade)
}

// TestGetHealthReportCustomWeights verifies configured weights flow into the outputs.
func TestGetHealthReportCustomWeights(t *testing.T) {
	useSource(t, &fakeSource{snap: bareSnapshot()}, nil)

	cfg := testConfig()
	cfg.Weights = map[string]float64{
		schema.DocumentationName: 0,
		schema.TestsName:         0,
		schema.CICDName:          0,
		schema.DependenciesName:  0,
		schema.BusFactorName:     1,
	}
	report, err := GetHealthReport(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, report.OverallScore, 1e-9)
}

// TestGetHealthReportErrors verifies source failures surface unchanged.
func TestGetHealthReportErrors(t *testing.T) {
	t.Run("source construction", func(t *testing.T) {
		useSource(t, nil, errors.New("no source"))
		_, err := GetHealthReport(context.Background(), testConfig(), nil)
		assert.EqualError(t, err, "no source")
	})

	t.Run("fetch", func(t *testing.T) {
		useSource(t, &fakeSource{err: errors.New("repository not found")}, nil)
		_, err := GetHealthReport(context.Background(), testConfig(), nil)
		assert.EqualError(t, err, "repository not found")
	})

	t.Run("cancelled", func(t *testing.T) {
		useSource(t, &fakeSource{snap: bareSnapshot()}, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := GetHealthReport(ctx, testConfig(), nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// TestGetHealthReportHeaders verifies progress output and its suppression.
func TestGetHealthReportHeaders(t *testing.T) {
	useSource(t, &fakeSource{snap: bareSnapshot()}, nil)

	cfg := testConfig()
	cfg.Quiet = false

	buf := captureHeaderOutput(t)
	_, err := GetHealthReport(context.Background(), cfg, nil)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Fetching repository data...")
	assert.Contains(t, out, "Running analyzers...")
	assert.Contains(t, out, "Bus Factor")
	assert.Contains(t, out, "Overall Score: 1.5/100 (D Poor)")

	buf.Reset()
	_, err = GetHealthReport(WithSuppressHeader(context.Background()), cfg, nil)
	require.NoError(t, err)
	assert.Empty(t, buf.String())
	assert.False(t, cfg.Quiet, "suppression must not mutate the caller's config")
}

// TestGetBusFactorResults verifies the bus factor is computed from the fetched contributors.
func TestGetBusFactorResults(t *testing.T) {
	useSource(t, &fakeSource{snap: bareSnapshot()}, nil)

	result, meta, err := GetBusFactorResults(context.Background(), testConfig(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.BusFactor)
	assert.Equal(t, 100, result.TotalCommits)
	assert.Equal(t, 2, result.Contributors)
	require.Len(t, result.TopContributors, 2)
	assert.Equal(t, "A", result.TopContributors[0].Login)
	assert.InDelta(t, 90.0, result.TopContributors[0].Percentage, 1e-9)
	assert.Equal(t, "demo", meta.Name)
}

// TestBuildHealthReport verifies aggregation and grading of outputs.
func TestBuildHealthReport(t *testing.T) {
	tests := []struct {
		name    string
		scores  []float64
		overall float64
		grade   string
	}{
		{"all perfect", []float64{100, 100, 100, 100, 100}, 100, "A+ Excellent"},
		{"all zero", []float64{0, 0, 0, 0, 0}, 0, "D Poor"},
		{"good", []float64{85, 85, 85, 85, 85}, 85, "A Good"},
		{"mixed", []float64{100, 100, 60, 40, 0}, 20 + 25 + 12 + 8, "C Needs Improvement"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outputs := make([]schema.AnalyzerOutput, len(schema.AnalyzerOrder))
			for i, name := range schema.AnalyzerOrder {
				outputs[i] = schema.AnalyzerOutput{
					Name:   name,
					Weight: schema.DefaultWeights[name],
					Result: schema.AnalysisResult{Score: tt.scores[i]},
				}
			}
			report := BuildHealthReport(schema.RepoMeta{FullName: "octo/demo"}, outputs)
			assert.InDelta(t, tt.overall, report.OverallScore, 1e-9)
			assert.Equal(t, tt.grade, report.Grade)
			assert.Equal(t, "octo/demo", report.Repository.FullName)
		})
	}
}

// TestHeaderConfig verifies suppression returns a quiet copy.
func TestHeaderConfig(t *testing.T) {
	cfg := &contract.Config{}
	assert.Same(t, cfg, headerConfig(context.Background(), cfg))

	quiet := headerConfig(WithSuppressHeader(context.Background()), cfg)
	assert.NotSame(t, cfg, quiet)
	assert.True(t, quiet.Quiet)
	assert.False(t, cfg.Quiet)

	cfg.Quiet = true
	assert.Same(t, cfg, headerConfig(WithSuppressHeader(context.Background()), cfg))
}

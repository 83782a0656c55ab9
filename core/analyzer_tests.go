package core

import (
	"fmt"
	"strings"

	"github.com/huangsam/repohealth/schema"
)

// Test coverage scoring rules.
const (
	testDirPoints       = 40.0
	testFilesPoints     = 20.0
	extensiveTestPoints = 10.0
	testCIPoints        = 20.0
	coverageBadgePoints = 10.0

	goodTestFileCount      = 5
	excellentTestFileCount = 10
)

// testDirectories are the root paths recognized as a dedicated test directory.
var testDirectories = map[string]struct{}{
	"tests":     {},
	"test":      {},
	"__tests__": {},
	"spec":      {},
}

// TestsAnalyzer scores the presence and breadth of automated tests.
type TestsAnalyzer struct {
	weighted
}

var _ Analyzer = &TestsAnalyzer{} // Compile-time check

// Analyze implements the Analyzer interface.
func (a *TestsAnalyzer) Analyze(snap *schema.RepoSnapshot) (schema.AnalysisResult, error) {
	b := &resultBuilder{}

	if hasTestDirectory(snap.Tree) {
		b.add(testDirPoints, schema.Positive("Test directory exists"))
	} else {
		b.note(schema.Missing("No dedicated test directory found"))
	}

	count := CountTestFiles(snap.Blobs())
	switch {
	case count >= goodTestFileCount:
		b.add(testFilesPoints, schema.Positive(fmt.Sprintf("Found %d test files", count)))
		if count >= excellentTestFileCount {
			b.add(extensiveTestPoints, schema.Positive("Extensive test coverage (10+ test files)"))
		}
	case count > 0:
		b.note(schema.Warning(fmt.Sprintf("Only %d test files found", count)))
	default:
		b.note(schema.Missing("No test files detected"))
	}

	if hasTestCI(snap.Tree) {
		b.add(testCIPoints, schema.Positive("CI configured (likely includes tests)"))
	}

	if hasCoverageBadge(snap.ReadmeText()) {
		b.add(coverageBadgePoints, schema.Positive("Coverage badge found in README"))
	}

	details := fmt.Sprintf("Detected %d test files across the repository. %s", count, testCoverageTier(count))
	return b.build(details), nil
}

// IsTestFile applies per-ecosystem naming heuristics to a blob path.
func IsTestFile(path string) bool {
	switch {
	// Rust
	case strings.HasPrefix(path, "tests/"), strings.Contains(path, "_test.rs"), strings.Contains(path, "/test_"):
		return true
	// JavaScript and TypeScript
	case strings.Contains(path, ".test."), strings.Contains(path, ".spec."), strings.Contains(path, "__tests__"):
		return true
	// Python
	case strings.HasPrefix(path, "test_"), strings.HasSuffix(path, "_test.py"), strings.Contains(path, "/test/"):
		return true
	// Go
	case strings.HasSuffix(path, "_test.go"):
		return true
	// Java
	case strings.Contains(path, "/test/") && strings.Contains(path, ".java"):
		return true
	}
	return false
}

// CountTestFiles counts the blobs classified as test files.
func CountTestFiles(blobs []schema.TreeEntry) int {
	n := 0
	for _, e := range blobs {
		if IsTestFile(e.Path) {
			n++
		}
	}
	return n
}

// hasTestDirectory reports whether a canonical test directory exists at the root.
func hasTestDirectory(tree []schema.TreeEntry) bool {
	for _, e := range tree {
		if _, ok := testDirectories[e.Path]; ok {
			return true
		}
	}
	return false
}

// hasTestCI reports whether a CI system that typically runs tests is configured.
func hasTestCI(tree []schema.TreeEntry) bool {
	for _, e := range tree {
		if strings.HasPrefix(e.Path, ".github/workflows/") || e.Path == ".circleci/config.yml" || e.Path == ".travis.yml" {
			return true
		}
	}
	return false
}

// hasCoverageBadge reports whether the README advertises coverage with a badge.
func hasCoverageBadge(readme string) bool {
	return strings.Contains(readme, "coverage") &&
		(strings.Contains(readme, "badge") || strings.Contains(readme, "shields.io"))
}

// testCoverageTier describes the test file count qualitatively.
func testCoverageTier(count int) string {
	switch {
	case count >= excellentTestFileCount:
		return "Excellent test coverage"
	case count >= goodTestFileCount:
		return "Good test coverage"
	case count > 0:
		return "Limited test coverage"
	default:
		return "No tests found"
	}
}

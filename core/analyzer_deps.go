package core

import (
	"fmt"
	"strings"

	"github.com/huangsam/repohealth/schema"
)

// Dependency scoring rules.
const (
	manifestPoints   = 20.0
	estimatePoints   = 20.0
	maintainedPoints = 40.0

	smallProjectFiles  = 50
	mediumProjectFiles = 200
)

// manifestFiles maps root-level dependency manifests to their ecosystem label.
var manifestFiles = map[string]string{
	"Cargo.toml":       "Cargo.toml (Rust)",
	"package.json":     "package.json (Node.js)",
	"requirements.txt": "requirements.txt (Python)",
	"Pipfile":          "Pipfile (Python)",
	"pyproject.toml":   "pyproject.toml (Python)",
	"go.mod":           "go.mod (Go)",
	"pom.xml":          "pom.xml (Java/Maven)",
	"build.gradle":     "Gradle (Java)",
	"build.gradle.kts": "Gradle (Java)",
	"Gemfile":          "Gemfile (Ruby)",
}

// codeExtensions are the source file extensions used to size a project.
var codeExtensions = []string{".rs", ".js", ".ts", ".py", ".go", ".java"}

// DependenciesAnalyzer scores dependency management and maintenance status.
// It does not parse manifests or query package registries.
type DependenciesAnalyzer struct {
	weighted
}

var _ Analyzer = &DependenciesAnalyzer{} // Compile-time check

// Analyze implements the Analyzer interface.
func (a *DependenciesAnalyzer) Analyze(snap *schema.RepoSnapshot) (schema.AnalysisResult, error) {
	b := &resultBuilder{}
	files := snap.Blobs()
	manifests := FindManifests(files)

	if len(manifests) == 0 {
		b.note(schema.Missing("No dependency files detected"))
		return b.build("No dependency management detected"), nil
	}

	b.add(manifestPoints, schema.Positive("Dependency management: "+strings.Join(manifests, ", ")))

	if estimate := EstimateDependencies(files); estimate > 0 {
		b.add(estimatePoints, schema.Positive(fmt.Sprintf("Estimated ~%d dependencies", estimate)))
	}

	if !snap.Repository.Archived {
		b.add(maintainedPoints, schema.Positive("Repository is actively maintained"))
	} else {
		b.note(schema.Warning("Repository is archived - dependencies may be outdated"))
	}

	return b.build(fmt.Sprintf("Found %d dependency file(s)", len(manifests))), nil
}

// FindManifests returns ecosystem labels for the dependency manifests among
// the root-level blobs.
func FindManifests(blobs []schema.TreeEntry) []string {
	var found []string
	for _, e := range blobs {
		if label, ok := manifestFiles[e.Path]; ok {
			found = append(found, label)
		}
	}
	return found
}

// EstimateDependencies returns a rough dependency count from the number of
// source files. It is 0 when no manifest exists.
func EstimateDependencies(blobs []schema.TreeEntry) int {
	if len(FindManifests(blobs)) == 0 {
		return 0
	}
	codeFiles := 0
	for _, e := range blobs {
		if isCodeFile(e.Path) {
			codeFiles++
		}
	}
	switch {
	case codeFiles < smallProjectFiles:
		return 5
	case codeFiles < mediumProjectFiles:
		return 15
	default:
		return 30
	}
}

// isCodeFile reports whether path has a recognized source extension.
func isCodeFile(path string) bool {
	for _, ext := range codeExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

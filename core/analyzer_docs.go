package core

import (
	"fmt"
	"strings"

	"github.com/huangsam/repohealth/schema"
)

// Documentation scoring rules.
const (
	readmePoints        = 40.0
	readmeLengthPoints  = 10.0
	readmeSectionPoints = 10.0
	docsDirPoints       = 20.0
	licensePoints       = 10.0
	contributingPoints  = 10.0

	substantialReadmeBytes = 500
)

// docsPrefixes are the tree prefixes recognized as a documentation directory.
var docsPrefixes = []string{"docs/", "documentation/"}

// DocumentationAnalyzer scores README quality, docs directories, license and contributing guides.
type DocumentationAnalyzer struct {
	weighted
}

var _ Analyzer = &DocumentationAnalyzer{} // Compile-time check

// Analyze implements the Analyzer interface.
func (a *DocumentationAnalyzer) Analyze(snap *schema.RepoSnapshot) (schema.AnalysisResult, error) {
	b := &resultBuilder{}

	if snap.HasReadme() {
		readme := snap.ReadmeText()
		b.add(readmePoints, schema.Positive("README.md exists"))

		if len(readme) > substantialReadmeBytes {
			b.add(readmeLengthPoints, schema.Positive("README has substantial content (>500 chars)"))
		} else {
			b.note(schema.Warning("README is quite short (<500 chars)"))
		}

		if strings.Contains(readme, "##") {
			b.add(readmeSectionPoints, schema.Positive("README has sections"))
		} else {
			b.note(schema.Warning("README lacks structured sections"))
		}
	} else {
		b.note(schema.Missing("README.md not found"))
	}

	if hasDocsDirectory(snap.Tree) {
		b.add(docsDirPoints, schema.Positive("Documentation directory exists"))
	} else {
		b.note(schema.Missing("No dedicated documentation directory"))
	}

	if snap.HasLicense {
		b.add(licensePoints, schema.Positive("LICENSE file exists"))
	} else {
		b.note(schema.Missing("LICENSE file not found"))
	}

	if hasContributingGuide(snap.Tree) {
		b.add(contributingPoints, schema.Positive("CONTRIBUTING.md exists"))
	} else {
		b.note(schema.Missing("CONTRIBUTING.md not found"))
	}

	quality := "Missing"
	if snap.HasReadme() {
		quality = "Present"
	}
	details := fmt.Sprintf("Found %d documentation elements. README quality: %s.", b.positives(), quality)
	return b.build(details), nil
}

// hasDocsDirectory reports whether any entry lives under a documentation directory.
func hasDocsDirectory(tree []schema.TreeEntry) bool {
	for _, e := range tree {
		for _, prefix := range docsPrefixes {
			if strings.HasPrefix(e.Path, prefix) {
				return true
			}
		}
	}
	return false
}

// hasContributingGuide reports whether the tree has CONTRIBUTING.md in any letter case.
func hasContributingGuide(tree []schema.TreeEntry) bool {
	for _, e := range tree {
		if strings.EqualFold(e.Path, "CONTRIBUTING.md") {
			return true
		}
	}
	return false
}

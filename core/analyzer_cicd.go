package core

import (
	"fmt"
	"strings"

	"github.com/huangsam/repohealth/schema"
)

// CI/CD scoring rules.
const (
	primaryCIPoints        = 50.0
	multipleWorkflowPoints = 15.0
	otherCIPoints          = 40.0
	pipelinePoints         = 20.0
)

// githubActions is the primary CI system.
const githubActions = "GitHub Actions"

// otherCIFiles maps root-level config files to their CI system.
var otherCIFiles = map[string]string{
	".circleci/config.yml": "CircleCI",
	".travis.yml":          "Travis CI",
	"Jenkinsfile":          "Jenkins",
	".gitlab-ci.yml":       "GitLab CI",
	"azure-pipelines.yml":  "Azure Pipelines",
}

// CIConfig is a detected CI configuration.
type CIConfig struct {
	System string
	Path   string
}

// Primary reports whether the config belongs to the primary CI system.
func (c CIConfig) Primary() bool {
	return c.System == githubActions
}

// String renders the config the way findings report it.
func (c CIConfig) String() string {
	if c.Primary() {
		return fmt.Sprintf("%s: %s", c.System, c.Path)
	}
	return c.System
}

// CICDAnalyzer scores the presence of continuous integration pipelines.
type CICDAnalyzer struct {
	weighted
}

var _ Analyzer = &CICDAnalyzer{} // Compile-time check

// Analyze implements the Analyzer interface.
func (a *CICDAnalyzer) Analyze(snap *schema.RepoSnapshot) (schema.AnalysisResult, error) {
	b := &resultBuilder{}
	configs := DetectCIConfigs(snap.Blobs())

	if len(configs) == 0 {
		b.note(schema.Missing("No CI/CD configuration detected"))
		return b.build("No CI/CD pipelines detected"), nil
	}

	workflows := 0
	var others []CIConfig
	for _, c := range configs {
		if c.Primary() {
			workflows++
		} else {
			others = append(others, c)
		}
	}

	if workflows > 0 {
		b.add(primaryCIPoints, schema.Positive("GitHub Actions configured"))
		if workflows > 1 {
			b.add(multipleWorkflowPoints, schema.Positive(fmt.Sprintf("Multiple workflows configured (%d)", workflows)))
		}
		for _, c := range others {
			b.note(schema.Positive(fmt.Sprintf("Additional CI: %s", c)))
		}
	} else {
		b.add(otherCIPoints, schema.Positive(fmt.Sprintf("CI configured: %s", others[0])))
		for _, c := range others[1:] {
			b.note(schema.Positive(fmt.Sprintf("CI configured: %s", c)))
		}
	}

	b.add(pipelinePoints, schema.Positive("CI/CD pipeline established"))

	return b.build(fmt.Sprintf("Found %d CI/CD configuration(s)", len(configs))), nil
}

// DetectCIConfigs lists the CI configurations found among blobs, in tree order.
func DetectCIConfigs(blobs []schema.TreeEntry) []CIConfig {
	var configs []CIConfig
	for _, e := range blobs {
		if strings.HasPrefix(e.Path, ".github/workflows/") && strings.HasSuffix(e.Path, ".yml") {
			configs = append(configs, CIConfig{System: githubActions, Path: e.Path})
			continue
		}
		if system, ok := otherCIFiles[e.Path]; ok {
			configs = append(configs, CIConfig{System: system, Path: e.Path})
		}
	}
	return configs
}

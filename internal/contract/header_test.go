package contract

import (
	"bytes"
	"testing"

	"github.com/huangsam/repohealth/schema"
	"github.com/stretchr/testify/assert"
)

// captureHeaders redirects HeaderWriter for the duration of a test.
func captureHeaders(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := HeaderWriter
	HeaderWriter = &buf
	t.Cleanup(func() { HeaderWriter = old })
	return &buf
}

// TestLogFetchHeader verifies the token warning only appears for unauthenticated GitHub runs.
func TestLogFetchHeader(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *Config
		wantWarning bool
	}{
		{"github without token", &Config{Target: RepoTarget{Source: schema.GitHubSource, Owner: "o", Name: "r"}}, true},
		{"github with token", &Config{Target: RepoTarget{Source: schema.GitHubSource, Owner: "o", Name: "r"}, Token: "t"}, false},
		{"local", &Config{Target: NewLocalTarget("/tmp/r")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureHeaders(t)
			LogFetchHeader(tt.cfg)
			assert.Contains(t, buf.String(), "Fetching repository data...")
			if tt.wantWarning {
				assert.Contains(t, buf.String(), TokenEnvVar)
			} else {
				assert.NotContains(t, buf.String(), TokenEnvVar)
			}
		})
	}
}

// TestHeadersQuiet verifies quiet mode suppresses every progress line.
func TestHeadersQuiet(t *testing.T) {
	buf := captureHeaders(t)
	cfg := &Config{Quiet: true, Precision: 1, Target: RepoTarget{Source: schema.GitHubSource, Owner: "o", Name: "r"}}

	LogFetchHeader(cfg)
	LogFetchDone(cfg, false)
	LogAnalyzersHeader(cfg)
	LogAnalyzerProgress(cfg, schema.TestsName, 80)
	LogOverallScore(cfg, 80)

	assert.Empty(t, buf.String())
}

// TestLogAnalyzerProgress verifies the per-analyzer progress line.
func TestLogAnalyzerProgress(t *testing.T) {
	buf := captureHeaders(t)
	LogAnalyzerProgress(&Config{Precision: 1}, schema.DocumentationName, 80)
	assert.Equal(t, "  → Documentation... 80.0/100 (A)\n", buf.String())
}

// TestLogOverallScore verifies the overall banner.
func TestLogOverallScore(t *testing.T) {
	buf := captureHeaders(t)
	LogOverallScore(&Config{Precision: 2}, 1.5)
	assert.Contains(t, buf.String(), "Overall Score: 1.50/100 (D Poor)")
	assert.Contains(t, buf.String(), headerRule)
}

// TestLogFetchDone verifies cached and fresh messages.
func TestLogFetchDone(t *testing.T) {
	buf := captureHeaders(t)
	LogFetchDone(&Config{}, true)
	LogFetchDone(&Config{}, false)
	assert.Equal(t, "✓ Data loaded from cache\n✓ Data fetched successfully\n", buf.String())
}

package mcp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/huangsam/repohealth/internal/contract"
	mcp_internal "github.com/huangsam/repohealth/internal/mcp"
	"github.com/huangsam/repohealth/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newGitHubServer serves a small repository at /repos/octo/demo.
func newGitHubServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/demo", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"name":"demo","full_name":"octo/demo","default_branch":"main","owner":{"login":"octo"}}`))
	})
	mux.HandleFunc("/repos/octo/demo/git/trees/main", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tree":[{"path":"README.md","type":"blob"},{"path":".github/workflows/ci.yml","type":"blob"},{"path":"go.mod","type":"blob"},{"path":"main.go","type":"blob"}]}`))
	})
	mux.HandleFunc("/repos/octo/demo/stats/contributors", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"author":{"login":"alice"},"total":30},{"author":{"login":"bob"},"total":10}]`))
	})
	mux.HandleFunc("/repos/octo/demo/readme", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":"IyBEZW1v","encoding":"base64"}`))
	})
	mux.HandleFunc("/repos/octo/demo/license", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"license":{"spdx_id":"MIT"}}`))
	})
	mux.HandleFunc("/repos/octo/empty", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"name":"empty","full_name":"octo/empty","default_branch":"main","owner":{"login":"octo"}}`))
	})
	mux.HandleFunc("/repos/octo/empty/git/trees/main", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tree":[]}`))
	})
	mux.HandleFunc("/repos/octo/empty/stats/contributors", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// newTestServer builds an MCP server scoring against apiURL without a cache.
func newTestServer(apiURL string) *server.MCPServer {
	baseCfg := &contract.Config{
		APIURL:     apiURL,
		Timeout:    5 * time.Second,
		RateLimit:  100,
		Workers:    2,
		Precision:  1,
		Quiet:      true,
		Weights:    schema.DefaultWeights,
		Thresholds: map[string]float64{contract.OverallTarget: contract.DefaultOverallGate},
	}
	return mcp_internal.NewMCPServer(baseCfg, nil, new(contract.MockGitClient))
}

// callTool invokes a registered tool handler directly.
func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{Params: mcp.CallToolParams{Name: name, Arguments: args}}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotNil(t, res)
	return res
}

// resultText returns the text of the first content item.
func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

// TestMCPServerHandlers_ValidationErrors verifies bad arguments become tool errors.
func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	s := newTestServer("http://127.0.0.1:1")

	tests := []struct {
		name     string
		tool     string
		args     map[string]any
		expected string
	}{
		{"bad repo format", "get_health_report", map[string]any{"repo": "not-a-repo", "source": "github"}, "invalid repository format"},
		{"unknown source", "get_bus_factor", map[string]any{"repo": "octo/demo", "source": "svn"}, "invalid source 'svn'"},
		{"bad thresholds", "check_health", map[string]any{"repo": "octo/demo", "source": "github", "thresholds": "bogus:10"}, "invalid target 'bogus'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, s, tt.tool, tt.args)
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, resultText(t, res), tt.expected)
		})
	}
}

// TestMCPServerHandlers_FetchFailure verifies unreachable APIs become tool errors.
func TestMCPServerHandlers_FetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	res := callTool(t, newTestServer(srv.URL), "get_health_report", map[string]any{"repo": "octo/demo"})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "scoring failed")
}

// TestMCPServerHandlers_HealthReport verifies a full report is returned as JSON.
func TestMCPServerHandlers_HealthReport(t *testing.T) {
	s := newTestServer(newGitHubServer(t).URL)

	res := callTool(t, s, "get_health_report", map[string]any{"repo": "octo/demo"})
	require.False(t, res.IsError, resultText(t, res))

	var report schema.HealthReport
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &report))
	assert.Equal(t, "octo/demo", report.Repository.FullName)
	require.Len(t, report.Outputs, 5)
	assert.Equal(t, schema.DocumentationName, report.Outputs[0].Name)
	assert.NotEmpty(t, report.Grade)
	assert.GreaterOrEqual(t, report.OverallScore, 0.0)
	assert.LessOrEqual(t, report.OverallScore, 100.0)
}

// TestMCPServerHandlers_BusFactor verifies the bus factor summary.
func TestMCPServerHandlers_BusFactor(t *testing.T) {
	s := newTestServer(newGitHubServer(t).URL)

	res := callTool(t, s, "get_bus_factor", map[string]any{"repo": "https://github.com/octo/demo"})
	require.False(t, res.IsError, resultText(t, res))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &decoded))
	assert.Equal(t, "octo/demo", decoded["repository"])
	assert.Equal(t, 1.0, decoded["bus_factor"])
	assert.Equal(t, 10.0, decoded["score"])
	assert.Equal(t, 40.0, decoded["total_commits"])
	assert.Len(t, decoded["top_contributors"], 2)
	assert.Equal(t, "alice (75.0%), bob (25.0%)", decoded["summary"])
}

// TestMCPServerHandlers_BusFactorNoContributors verifies missing data reports the neutral score.
func TestMCPServerHandlers_BusFactorNoContributors(t *testing.T) {
	s := newTestServer(newGitHubServer(t).URL)

	res := callTool(t, s, "get_bus_factor", map[string]any{"repo": "octo/empty"})
	require.False(t, res.IsError, resultText(t, res))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &decoded))
	assert.Equal(t, 0.0, decoded["bus_factor"])
	assert.Equal(t, 50.0, decoded["score"])
	assert.Equal(t, "No contributors", decoded["summary"])
}

// TestMCPServerHandlers_CheckHealth verifies threshold overrides drive the outcome.
func TestMCPServerHandlers_CheckHealth(t *testing.T) {
	s := newTestServer(newGitHubServer(t).URL)

	tests := []struct {
		thresholds string
		passed     bool
	}{
		{"overall:0", true},
		{"overall:0,bus_factor:50", false},
	}

	for _, tt := range tests {
		t.Run(tt.thresholds, func(t *testing.T) {
			res := callTool(t, s, "check_health", map[string]any{"repo": "octo/demo", "thresholds": tt.thresholds})
			require.False(t, res.IsError, resultText(t, res))

			var result schema.CheckResult
			require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &result))
			assert.Equal(t, tt.passed, result.Passed)
			if !tt.passed {
				require.Len(t, result.Violations, 1)
				assert.Equal(t, schema.BusFactorName, result.Violations[0].Target)
			}
		})
	}
}

// TestMCPServerHandlers_ListAnalyzers verifies the registry is listed in order.
func TestMCPServerHandlers_ListAnalyzers(t *testing.T) {
	res := callTool(t, newTestServer("http://127.0.0.1:1"), "list_analyzers", nil)
	require.False(t, res.IsError)

	var specs []schema.AnalyzerSpec
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &specs))
	require.Len(t, specs, 5)
	for i, name := range schema.AnalyzerOrder {
		assert.Equal(t, name, specs[i].Name)
		assert.Equal(t, schema.DefaultWeights[name], specs[i].Weight)
	}
}

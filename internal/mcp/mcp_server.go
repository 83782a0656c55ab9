// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/repohealth/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the repohealth MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager, client contract.GitClient) *server.MCPServer {
	s := server.NewMCPServer(
		"Repository Health Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
		client:  client,
	}

	// --- 1. Tool: get_health_report ---
	s.AddTool(mcp.NewTool("get_health_report",
		mcp.WithDescription("Score a repository on documentation, tests, CI/CD, dependencies and bus factor."),
		mcp.WithString("repo", mcp.Description("GitHub repository as owner/name or URL, or a local path. Defaults to the current directory.")),
		mcp.WithString("source", mcp.Description("Where to read the repository from. Inferred from repo when omitted."), mcp.Enum("github", "local")),
	), h.handleGetHealthReport)

	// --- 2. Tool: get_bus_factor ---
	s.AddTool(mcp.NewTool("get_bus_factor",
		mcp.WithDescription("Compute the minimum number of contributors accounting for half of all commits."),
		mcp.WithString("repo", mcp.Description("GitHub repository as owner/name or URL, or a local path.")),
		mcp.WithString("source", mcp.Description("Where to read the repository from."), mcp.Enum("github", "local")),
	), h.handleGetBusFactor)

	// --- 3. Tool: check_health ---
	s.AddTool(mcp.NewTool("check_health",
		mcp.WithDescription("Gate a repository's health scores against minimum thresholds."),
		mcp.WithString("repo", mcp.Description("GitHub repository as owner/name or URL, or a local path.")),
		mcp.WithString("source", mcp.Description("Where to read the repository from."), mcp.Enum("github", "local")),
		mcp.WithString("thresholds", mcp.Description("Overrides such as 'overall:70,tests:50'. Defaults to the configured thresholds.")),
	), h.handleCheckHealth)

	// --- 4. Tool: list_analyzers ---
	s.AddTool(mcp.NewTool("list_analyzers",
		mcp.WithDescription("List the registered analyzers with their weights and scoring criteria."),
	), h.handleListAnalyzers)

	return s
}

// StartMCPServer starts the repohealth MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager, client contract.GitClient) error {
	s := NewMCPServer(baseCfg, mgr, client)
	return server.ServeStdio(s)
}

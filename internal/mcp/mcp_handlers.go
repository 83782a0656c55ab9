package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/huangsam/repohealth/core"
	"github.com/huangsam/repohealth/core/algo"
	"github.com/huangsam/repohealth/internal/contract"
	"github.com/huangsam/repohealth/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
	client  contract.GitClient
}

// resolveConfig clones the base config for the repository named in the request.
func (h *toolHandler) resolveConfig(ctx context.Context, request mcp.CallToolRequest) (*contract.Config, error) {
	target, err := contract.ResolveRepoTarget(ctx, h.client, request.GetString("repo", ""), request.GetString("source", ""))
	if err != nil {
		return nil, err
	}
	return h.baseCfg.CloneWithTarget(target), nil
}

// jsonResult renders v as an indented JSON text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (h *toolHandler) handleGetHealthReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.resolveConfig(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid repository: %v", err)), nil
	}

	report, err := core.GetHealthReport(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scoring failed: %v", err)), nil
	}
	return jsonResult(report)
}

func (h *toolHandler) handleGetBusFactor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.resolveConfig(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid repository: %v", err)), nil
	}

	result, meta, err := core.GetBusFactorResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("bus factor failed: %v", err)), nil
	}
	return jsonResult(map[string]any{
		"repository":       meta.FullName,
		"bus_factor":       result.BusFactor,
		"score":            algo.ScoreResult(result),
		"total_commits":    result.TotalCommits,
		"contributors":     result.Contributors,
		"top_contributors": result.TopContributors,
		"summary":          schema.FormatContributors(result.TopContributors),
	})
}

func (h *toolHandler) handleCheckHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.resolveConfig(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid repository: %v", err)), nil
	}
	if s := request.GetString("thresholds", ""); s != "" {
		overrides, err := contract.ParseThresholdsString(s)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid thresholds: %v", err)), nil
		}
		if cfg.Thresholds == nil {
			cfg.Thresholds = map[string]float64{contract.OverallTarget: contract.DefaultOverallGate}
		}
		maps.Copy(cfg.Thresholds, overrides)
	}

	report, err := core.GetHealthReport(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scoring failed: %v", err)), nil
	}
	return jsonResult(core.BuildCheckResult(report, cfg.Thresholds))
}

func (h *toolHandler) handleListAnalyzers(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(core.Specs(core.NewAnalyzers(h.baseCfg.Weights)))
}

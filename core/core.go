// Package core has the analyzers and the logic that runs them against a repository snapshot.
package core

import (
	"context"
	"time"

	"github.com/huangsam/repohealth/core/agg"
	"github.com/huangsam/repohealth/core/algo"
	"github.com/huangsam/repohealth/internal/contract"
	"github.com/huangsam/repohealth/internal/outwriter"
	"github.com/huangsam/repohealth/internal/source"
	"github.com/huangsam/repohealth/schema"
)

// ExecutorFunc defines the function signature for executing the different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// newSource builds the snapshot source for a config. Tests swap it for a fake.
var newSource = func(cfg *contract.Config) (contract.SnapshotSource, error) {
	return source.New(cfg, contract.NewLocalGitClient())
}

// ExecuteHealthScore scores the configured repository and prints the report.
// It serves as the main entry point for the 'score' command.
func ExecuteHealthScore(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	report, err := GetHealthReport(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintHealthReport(report, cfg)
}

// ExecuteBusFactor computes the bus factor of the configured repository and prints it.
func ExecuteBusFactor(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	result, meta, err := GetBusFactorResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintBusFactor(result, meta, cfg, time.Since(start))
}

// ExecuteAnalyzers prints the analyzer registry with the active weights.
// This is a static display that does not fetch any repository data.
func ExecuteAnalyzers(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	return outwriter.PrintAnalyzers(Specs(NewAnalyzers(cfg.Weights)), cfg)
}

// GetHealthReport fetches the snapshot, runs every analyzer and aggregates the
// results. Progress is printed to stderr unless the context or config silences it.
func GetHealthReport(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.HealthReport, error) {
	start := time.Now()
	logCfg := headerConfig(ctx, cfg)

	snap, err := fetchSnapshot(ctx, cfg, logCfg, mgr)
	if err != nil {
		return nil, err
	}

	contract.LogAnalyzersHeader(logCfg)
	outputs, err := RunAnalyzers(ctx, NewAnalyzers(cfg.Weights), snap, cfg.Workers)
	if err != nil {
		return nil, err
	}
	for _, o := range outputs {
		contract.LogAnalyzerProgress(logCfg, o.Name, o.Result.Score)
	}

	report := BuildHealthReport(snap.Repository, outputs)
	report.Duration = time.Since(start)
	contract.LogOverallScore(logCfg, report.OverallScore)
	return report, nil
}

// GetBusFactorResults fetches the snapshot and computes the bus factor from its contributors.
func GetBusFactorResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.BusFactorResult, schema.RepoMeta, error) {
	snap, err := fetchSnapshot(ctx, cfg, headerConfig(ctx, cfg), mgr)
	if err != nil {
		return schema.BusFactorResult{}, schema.RepoMeta{}, err
	}
	return algo.CalculateBusFactor(snap.Contributors), snap.Repository, nil
}

// BuildHealthReport aggregates analyzer outputs into a report.
func BuildHealthReport(meta schema.RepoMeta, outputs []schema.AnalyzerOutput) *schema.HealthReport {
	overall := agg.CalculateOverall(outputs)
	return &schema.HealthReport{
		Repository:   meta,
		Outputs:      outputs,
		OverallScore: overall,
		Grade:        agg.Grade(overall),
		GradeShort:   agg.GradeShort(overall),
		BadgeURL:     agg.BadgeURL(overall),
		GeneratedAt:  time.Now(),
	}
}

// fetchSnapshot resolves the source for cfg and fetches through the snapshot cache.
func fetchSnapshot(ctx context.Context, cfg, logCfg *contract.Config, mgr contract.CacheManager) (*schema.RepoSnapshot, error) {
	src, err := newSource(cfg)
	if err != nil {
		return nil, err
	}

	contract.LogFetchHeader(logCfg)
	snap, cached, err := CachedFetch(ctx, cfg, src, mgr)
	if err != nil {
		return nil, err
	}
	contract.LogFetchDone(logCfg, cached)
	return snap, nil
}

// headerConfig returns the config used for progress output, silenced when
// the context asks for suppressed headers.
func headerConfig(ctx context.Context, cfg *contract.Config) *contract.Config {
	if !shouldSuppressHeader(ctx) || cfg.Quiet {
		return cfg
	}
	quiet := *cfg
	quiet.Quiet = true
	return &quiet
}

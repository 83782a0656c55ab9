package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/huangsam/repohealth/schema"
)

// RunAnalyzers evaluates every analyzer against the snapshot on a bounded
// worker pool. Outputs are returned in registry order regardless of which
// worker finished first. Analyzer errors are joined; the slot of a failed
// analyzer keeps a zero result so aggregation still sees every analyzer.
func RunAnalyzers(ctx context.Context, analyzers []Analyzer, snap *schema.RepoSnapshot, workers int) ([]schema.AnalyzerOutput, error) {
	if snap == nil {
		return nil, errors.New("no snapshot to analyze")
	}
	workers = max(min(workers, len(analyzers)), 1)

	outputs := make([]schema.AnalyzerOutput, len(analyzers))
	errs := make([]error, len(analyzers))
	indexCh := make(chan int, len(analyzers))
	var wg sync.WaitGroup

	// Start worker pool
	for range workers {
		wg.Go(func() {
			for i := range indexCh {
				// Each worker writes to a unique slot, which is safe.
				outputs[i], errs[i] = runAnalyzer(ctx, analyzers[i], snap)
			}
		})
	}

	// Send registry indexes to worker channel
	for i := range analyzers {
		indexCh <- i
	}
	close(indexCh)

	// Wait for all workers to finish processing
	wg.Wait()

	return outputs, errors.Join(errs...)
}

// runAnalyzer executes one analyzer unless the context was cancelled first.
func runAnalyzer(ctx context.Context, a Analyzer, snap *schema.RepoSnapshot) (schema.AnalyzerOutput, error) {
	out := schema.AnalyzerOutput{Name: a.Name(), Weight: a.Weight(), Result: schema.AnalysisResult{Findings: []schema.Finding{}}}
	if err := ctx.Err(); err != nil {
		return out, fmt.Errorf("%s analyzer: %w", a.Name(), err)
	}
	result, err := a.Analyze(snap)
	if err != nil {
		return out, fmt.Errorf("%s analyzer: %w", a.Name(), err)
	}
	out.Result = result
	return out, nil
}

package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/repohealth/internal/contract"
	"github.com/huangsam/repohealth/schema"
)

// exitFunc terminates the process when a check fails.
var exitFunc = os.Exit

// ExecuteHealthCheck runs the check command for CI/CD gating.
// It scores the repository, compares the overall and per-analyzer scores
// against the configured thresholds, and exits non-zero on any violation.
func ExecuteHealthCheck(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()

	report, err := GetHealthReport(ctx, cfg, mgr)
	if err != nil {
		return err
	}

	result := BuildCheckResult(report, cfg.Thresholds)
	printCheckResult(os.Stdout, result, cfg.Precision, time.Since(start))

	// Return error if check failed
	if !result.Passed {
		fmt.Printf("%d violation(s) found\n", len(result.Violations))
		exitFunc(1)
	}
	return nil
}

// BuildCheckResult gates a report against thresholds keyed by "overall" or
// analyzer name. A score strictly below its threshold is a violation.
// Violations are listed overall first, then in registry order.
func BuildCheckResult(report *schema.HealthReport, thresholds map[string]float64) *schema.CheckResult {
	result := &schema.CheckResult{
		Repository: report.Repository.FullName,
		Overall:    report.OverallScore,
		Grade:      report.Grade,
		Thresholds: thresholds,
		Violations: []schema.CheckViolation{},
	}

	if threshold, ok := thresholds[contract.OverallTarget]; ok && report.OverallScore < threshold {
		result.Violations = append(result.Violations, schema.CheckViolation{
			Target:    contract.OverallTarget,
			Score:     report.OverallScore,
			Threshold: threshold,
		})
	}
	for _, o := range report.Outputs {
		if threshold, ok := thresholds[o.Name]; ok && o.Result.Score < threshold {
			result.Violations = append(result.Violations, schema.CheckViolation{
				Target:    o.Name,
				Score:     o.Result.Score,
				Threshold: threshold,
			})
		}
	}

	result.Passed = len(result.Violations) == 0
	return result
}

// printCheckResult prints the check result in a concise format suitable for CI/CD.
func printCheckResult(w io.Writer, result *schema.CheckResult, precision int, duration time.Duration) {
	_, _ = fmt.Fprintln(w, "Health Check Results:")

	// Define labels and values for dynamic padding
	labels := []string{"Repository:", "Overall:", "Thresholds:"}
	values := []string{
		result.Repository,
		fmt.Sprintf("%.*f (%s)", precision, result.Overall, result.Grade),
		formatThresholds(result.Thresholds, precision),
	}

	// Find the longest label for consistent padding
	maxLabelLen := 0
	for _, label := range labels {
		maxLabelLen = max(maxLabelLen, len(label))
	}
	for i, label := range labels {
		_, _ = fmt.Fprintf(w, "  %-*s %s\n", maxLabelLen+1, label, values[i])
	}
	_, _ = fmt.Fprintf(w, "\nChecked in %v\n\n", duration)

	if result.Passed {
		_, _ = fmt.Fprintln(w, "✅ All health checks passed")
		return
	}

	_, _ = fmt.Fprintf(w, "❌ Health check failed: %d violation(s) found\n\n", len(result.Violations))
	for _, v := range result.Violations {
		_, _ = fmt.Fprintf(w, "  - %s (score: %.*f < threshold: %.*f)\n", v.Target, precision, v.Score, precision, v.Threshold)
	}
	_, _ = fmt.Fprintln(w)
}

// formatThresholds renders thresholds overall first, then in registry order.
func formatThresholds(thresholds map[string]float64, precision int) string {
	keys := append([]string{contract.OverallTarget}, schema.AnalyzerOrder...)
	out := ""
	for _, k := range keys {
		v, ok := thresholds[k]
		if !ok {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += fmt.Sprintf("%s=%.*f", schema.AnalyzerKey(k), precision, v)
	}
	if out == "" {
		return "none"
	}
	return out
}

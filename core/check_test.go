package core

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/huangsam/repohealth/internal/contract"
	"github.com/huangsam/repohealth/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleReport builds a report with the given analyzer scores in registry order.
func sampleReport(overall float64, scores ...float64) *schema.HealthReport {
	outputs := make([]schema.AnalyzerOutput, len(scores))
	for i, s := range scores {
		name := schema.AnalyzerOrder[i]
		outputs[i] = schema.AnalyzerOutput{Name: name, Weight: schema.DefaultWeights[name], Result: schema.AnalysisResult{Score: s}}
	}
	return &schema.HealthReport{
		Repository:   schema.RepoMeta{FullName: "octo/demo"},
		Outputs:      outputs,
		OverallScore: overall,
		Grade:        "B Fair",
	}
}

// TestBuildCheckResult verifies threshold gating.
func TestBuildCheckResult(t *testing.T) {
	tests := []struct {
		name       string
		report     *schema.HealthReport
		thresholds map[string]float64
		passed     bool
		targets    []string
	}{
		{
			name:       "passes at exact threshold",
			report:     sampleReport(60, 50, 50, 50, 50, 50),
			thresholds: map[string]float64{contract.OverallTarget: 60},
			passed:     true,
			targets:    []string{},
		},
		{
			name:       "overall below",
			report:     sampleReport(59.9, 50, 50, 50, 50, 50),
			thresholds: map[string]float64{contract.OverallTarget: 60},
			targets:    []string{contract.OverallTarget},
		},
		{
			name:   "analyzers ordered after overall",
			report: sampleReport(10, 90, 10, 90, 10, 90),
			thresholds: map[string]float64{
				schema.DependenciesName:  20,
				contract.OverallTarget:   20,
				schema.TestsName:         20,
				schema.DocumentationName: 20,
			},
			targets: []string{contract.OverallTarget, schema.TestsName, schema.DependenciesName},
		},
		{
			name:       "no thresholds",
			report:     sampleReport(0, 0, 0, 0, 0, 0),
			thresholds: map[string]float64{},
			passed:     true,
			targets:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := BuildCheckResult(tt.report, tt.thresholds)
			assert.Equal(t, tt.passed, result.Passed)
			assert.Equal(t, "octo/demo", result.Repository)
			require.NotNil(t, result.Violations)
			targets := make([]string, 0, len(result.Violations))
			for _, v := range result.Violations {
				targets = append(targets, v.Target)
			}
			assert.Equal(t, tt.targets, targets)
		})
	}
}

// TestPrintCheckResult verifies the CI-friendly rendering.
func TestPrintCheckResult(t *testing.T) {
	t.Run("passed", func(t *testing.T) {
		var buf bytes.Buffer
		result := BuildCheckResult(sampleReport(75, 80, 70, 70, 80, 70), map[string]float64{contract.OverallTarget: 60})
		printCheckResult(&buf, result, 1, time.Second)

		out := buf.String()
		assert.Contains(t, out, "Health Check Results:")
		assert.Contains(t, out, "octo/demo")
		assert.Contains(t, out, "75.0 (B Fair)")
		assert.Contains(t, out, "overall=60.0")
		assert.Contains(t, out, "✅ All health checks passed")
	})

	t.Run("failed", func(t *testing.T) {
		var buf bytes.Buffer
		result := BuildCheckResult(sampleReport(55, 80, 30, 70, 80, 70),
			map[string]float64{contract.OverallTarget: 60, schema.TestsName: 50})
		printCheckResult(&buf, result, 2, time.Second)

		out := buf.String()
		assert.Contains(t, out, "❌ Health check failed: 2 violation(s) found")
		assert.Contains(t, out, "  - overall (score: 55.00 < threshold: 60.00)")
		assert.Contains(t, out, "  - Tests (score: 30.00 < threshold: 50.00)")
	})
}

// TestFormatThresholds verifies threshold rendering order.
func TestFormatThresholds(t *testing.T) {
	assert.Equal(t, "none", formatThresholds(nil, 1))
	assert.Equal(t, "overall=70.0, tests=50.0, bus_factor=30.0", formatThresholds(map[string]float64{
		schema.BusFactorName:   30,
		schema.TestsName:       50,
		contract.OverallTarget: 70,
	}, 1))
}

// TestExecuteHealthCheck verifies the exit code reflects violations.
func TestExecuteHealthCheck(t *testing.T) {
	useSource(t, &fakeSource{snap: bareSnapshot()}, nil)

	var exitCode int
	original := exitFunc
	exitFunc = func(code int) { exitCode = code }
	t.Cleanup(func() { exitFunc = original })

	cfg := testConfig()
	require.NoError(t, ExecuteHealthCheck(context.Background(), cfg, nil))
	assert.Equal(t, 1, exitCode, "overall 1.5 is below the default gate")

	exitCode = 0
	cfg.Thresholds = map[string]float64{contract.OverallTarget: 1.0}
	require.NoError(t, ExecuteHealthCheck(context.Background(), cfg, nil))
	assert.Equal(t, 0, exitCode)
}

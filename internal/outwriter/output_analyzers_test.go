package outwriter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/repohealth/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// sampleSpecs returns the registry with its default weights.
func sampleSpecs() []schema.AnalyzerSpec {
	specs := make([]schema.AnalyzerSpec, len(schema.AnalyzerOrder))
	for i, name := range schema.AnalyzerOrder {
		specs[i] = schema.AnalyzerSpec{Name: name, Weight: schema.DefaultWeights[name], Criteria: "criteria for " + name}
	}
	return specs
}

// TestWriteAnalyzersText verifies the registry table and weight sum.
func TestWriteAnalyzersText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeAnalyzersText(&buf, analyzersView{Analyzers: sampleSpecs(), WeightSum: 1}))
	out := buf.String()
	assert.Contains(t, out, "Repository Health Analyzers")
	assert.Contains(t, out, "bus_factor")
	assert.Contains(t, out, "criteria for CI/CD")
	assert.Contains(t, out, "Weight sum: 1.00")
}

// TestPrintAnalyzers verifies the weight sum is computed from the specs.
func TestPrintAnalyzers(t *testing.T) {
	specs := sampleSpecs()
	specs[0].Weight = 0.5

	cfg := textConfig()
	cfg.Output = schema.YAMLOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "analyzers.yaml")
	require.NoError(t, PrintAnalyzers(specs, cfg))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var decoded analyzersView
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Len(t, decoded.Analyzers, 5)
	assert.InDelta(t, 1.3, decoded.WeightSum, 1e-9)

	cfg.Output = schema.CSVOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "analyzers.csv")
	require.NoError(t, PrintAnalyzers(specs, cfg))
	data, err = os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Tests,tests,0.25,criteria for Tests")

	cfg.Output = schema.PrometheusOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "analyzers.prom")
	require.NoError(t, PrintAnalyzers(specs, cfg))
	data, err = os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `repohealth_analyzer_weight{analyzer="documentation"} 0.5`)
}

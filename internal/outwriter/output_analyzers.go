package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/repohealth/internal/contract"
	"github.com/huangsam/repohealth/schema"

	"github.com/olekukonko/tablewriter"
)

// analyzersView is the serialized form of the analyzer registry.
type analyzersView struct {
	Analyzers []schema.AnalyzerSpec `json:"analyzers" yaml:"analyzers"`
	WeightSum float64               `json:"weight_sum" yaml:"weight_sum"`
}

// PrintAnalyzers displays the analyzer registry with the active weights.
// This is a static display that does not require repository data.
func PrintAnalyzers(specs []schema.AnalyzerSpec, cfg *contract.Config) error {
	view := analyzersView{Analyzers: specs}
	for _, s := range specs {
		view.WeightSum += s.Weight
	}

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, view)
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, view)
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAnalyzersCSV(w, specs)
		}, "Wrote CSV")
	case schema.MarkdownOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAnalyzersMarkdown(w, view)
		}, "Wrote Markdown")
	case schema.PrometheusOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAnalyzerMetrics(w, specs)
		}, "Wrote metrics")
	case schema.ParquetOut:
		return unsupportedOutput(cfg.Output, "the analyzer registry")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAnalyzersText(w, view)
		}, "Wrote text")
	}
}

// writeAnalyzersText displays the registry in human-readable form.
func writeAnalyzersText(w io.Writer, view analyzersView) error {
	if _, err := fmt.Fprintf(w, "Repository Health Analyzers\n===========================\n\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "Overall = Σ score × weight, clamped to [0, 100]"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Analyzer", "Key", "Weight", "Scoring"})
	var data [][]string
	for _, s := range view.Analyzers {
		data = append(data, []string{s.Name, schema.AnalyzerKey(s.Name), fmt.Sprintf("%.2f", s.Weight), s.Criteria})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Weight sum: %.2f\n", view.WeightSum)
	return err
}

// writeAnalyzersCSV writes one row per analyzer.
func writeAnalyzersCSV(w io.Writer, specs []schema.AnalyzerSpec) error {
	return writeCSVWithHeader(w, []string{"analyzer", "key", "weight", "criteria"}, func(cw *csv.Writer) error {
		for _, s := range specs {
			if err := cw.Write([]string{s.Name, schema.AnalyzerKey(s.Name), fmt.Sprintf("%.2f", s.Weight), s.Criteria}); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeAnalyzersMarkdown writes the registry as a Markdown table.
func writeAnalyzersMarkdown(w io.Writer, view analyzersView) error {
	var b strings.Builder
	b.WriteString("# Repository Health Analyzers\n\n")
	b.WriteString("| Analyzer | Weight | Scoring |\n")
	b.WriteString("|----------|--------|---------|\n")
	for _, s := range view.Analyzers {
		fmt.Fprintf(&b, "| %s | %.2f | %s |\n", s.Name, s.Weight, s.Criteria)
	}
	fmt.Fprintf(&b, "\n**Weight sum:** %.2f\n", view.WeightSum)
	_, err := io.WriteString(w, b.String())
	return err
}

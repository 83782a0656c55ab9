package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/huangsam/repohealth/core/agg"
	"github.com/huangsam/repohealth/internal/contract"
	"github.com/huangsam/repohealth/internal/parquet"
	"github.com/huangsam/repohealth/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintHealthReport outputs the health report, dispatching based on the output format configured.
func PrintHealthReport(report *schema.HealthReport, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, report)
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportCSV(w, report, fmtFloat)
		}, "Wrote CSV")
	case schema.MarkdownOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportMarkdown(w, report, fmtFloat)
		}, "Wrote Markdown")
	case schema.PrometheusOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportMetrics(w, report)
		}, "Wrote metrics")
	case schema.ParquetOut:
		if err := parquet.WriteAnalyzerScoresParquet(parquet.ConvertHealthReport(report, agg.GradeShort), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
		return nil
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportTable(w, report, cfg, fmtFloat)
		}, "Wrote table")
	}
}

// writeReportTable generates and writes the human-readable report.
func writeReportTable(w io.Writer, report *schema.HealthReport, cfg *contract.Config, fmtFloat func(float64) string) error {
	if _, err := fmt.Fprintf(w, "Repository Health Report: %s\n\n", report.Repository.FullName); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Analyzer", "Weight", "Score", "Grade", "Label", "Details"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	detailsWidth := getMaxTableDetailsWidth(cfg)
	var data [][]string
	for _, o := range report.Outputs {
		data = append(data, []string{
			o.Name,
			fmt.Sprintf("%.2f", o.Weight),
			fmtFloat(o.Result.Score),
			agg.GradeShort(o.Result.Score),
			scoreLabel(o.Result.Score, cfg),
			contract.TruncateText(o.Result.Details, detailsWidth),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "\nFindings:"); err != nil {
		return err
	}
	for _, o := range report.Outputs {
		if _, err := fmt.Fprintf(w, "\n%s (%s/100)\n", o.Name, fmtFloat(o.Result.Score)); err != nil {
			return err
		}
		for _, f := range o.Result.Findings {
			if _, err := fmt.Fprintf(w, "  %s %s\n", findingMarker(f, cfg.UseEmojis), f.Message); err != nil {
				return err
			}
		}
	}

	overall := fmt.Sprintf("Overall Score: %s/100 (%s)", fmtFloat(report.OverallScore), report.Grade)
	if cfg.UseColors {
		overall = contract.ScoreColor(report.OverallScore).Sprint(overall)
	}
	if _, err := fmt.Fprintf(w, "\n%s\nBadge: %s\n", overall, report.BadgeURL); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Scored in %v with %d workers. Cache backend: %s\n", report.Duration, cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// findingMarker returns the status marker of a finding.
func findingMarker(f schema.Finding, emojis bool) string {
	if emojis {
		return f.Symbol()
	}
	switch f.Status {
	case schema.PositiveStatus:
		return "[+]"
	case schema.WarningStatus:
		return "[!]"
	default:
		return "[-]"
	}
}

// writeReportCSV writes one row per finding followed by an overall row.
// Analyzers without findings still get a row so every score is present.
func writeReportCSV(w io.Writer, report *schema.HealthReport, fmtFloat func(float64) string) error {
	header := []string{"analyzer", "weight", "score", "grade", "status", "message"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, o := range report.Outputs {
			base := []string{
				o.Name,
				fmt.Sprintf("%.2f", o.Weight),
				fmtFloat(o.Result.Score),
				agg.GradeShort(o.Result.Score),
			}
			if len(o.Result.Findings) == 0 {
				if err := cw.Write(append(base, "", "")); err != nil {
					return err
				}
				continue
			}
			for _, f := range o.Result.Findings {
				row := append(append([]string{}, base...), string(f.Status), f.Message)
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
		return cw.Write([]string{
			contract.OverallTarget,
			fmt.Sprintf("%.2f", agg.WeightSum(report.Outputs)),
			fmtFloat(report.OverallScore),
			report.GradeShort,
			"",
			report.Grade,
		})
	})
}

// writeReportMarkdown writes the report as a Markdown document with a badge,
// a summary table and the findings of every analyzer.
func writeReportMarkdown(w io.Writer, report *schema.HealthReport, fmtFloat func(float64) string) error {
	var b strings.Builder

	b.WriteString("# Repository Health Report\n\n")
	repo := report.Repository
	if repo.Owner != "" {
		fmt.Fprintf(&b, "**Repository:** [%s](https://github.com/%s)\n", repo.FullName, repo.FullName)
	} else {
		fmt.Fprintf(&b, "**Repository:** %s\n", repo.FullName)
	}
	fmt.Fprintf(&b, "**Generated:** %s\n\n", report.GeneratedAt.Format(contract.DateTimeFormat))
	fmt.Fprintf(&b, "![Repository Health](%s)\n\n", report.BadgeURL)
	fmt.Fprintf(&b, "## Overall Score: %s/100 (%s)\n\n", fmtFloat(report.OverallScore), report.Grade)

	b.WriteString("## Summary\n\n")
	b.WriteString("| Analyzer | Weight | Score | Grade |\n")
	b.WriteString("|----------|--------|-------|-------|\n")
	for _, o := range report.Outputs {
		fmt.Fprintf(&b, "| %s | %.0f%% | %s/100 | %s |\n", o.Name, o.Weight*100, fmtFloat(o.Result.Score), agg.GradeShort(o.Result.Score))
	}

	b.WriteString("\n## Detailed Findings\n")
	for _, o := range report.Outputs {
		fmt.Fprintf(&b, "\n### %s (%s/100)\n\n", o.Name, fmtFloat(o.Result.Score))
		if o.Result.Details != "" {
			fmt.Fprintf(&b, "%s\n\n", o.Result.Details)
		}
		for _, f := range o.Result.Findings {
			fmt.Fprintf(&b, "- %s %s\n", f.Symbol(), f.Message)
		}
	}

	b.WriteString("\n---\n\n*Generated by repohealth*\n")

	_, err := io.WriteString(w, b.String())
	return err
}

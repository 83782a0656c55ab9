package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/repohealth/core/agg"
	"github.com/huangsam/repohealth/core/algo"
	"github.com/huangsam/repohealth/internal/contract"
	"github.com/huangsam/repohealth/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// busFactorView is the serialized form of a bus factor result.
type busFactorView struct {
	schema.BusFactorResult `yaml:",inline"`

	Repository string  `json:"repository" yaml:"repository"`
	Score      float64 `json:"score" yaml:"score"`
}

// PrintBusFactor outputs the bus factor of a repository, dispatching based on the output format configured.
func PrintBusFactor(result schema.BusFactorResult, meta schema.RepoMeta, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	view := busFactorView{
		Repository:      meta.FullName,
		Score:           algo.ScoreResult(result),
		BusFactorResult: result,
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
			return writeBusFactorCSV(w, result, fmtFloat, intFmt)
		}, "Wrote CSV")
	case schema.MarkdownOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBusFactorMarkdown(w, view, fmtFloat)
		}, "Wrote Markdown")
	case schema.PrometheusOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBusFactorMetrics(w, result, meta)
		}, "Wrote metrics")
	case schema.ParquetOut:
		return unsupportedOutput(cfg.Output, "bus factor results")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBusFactorTable(w, view, cfg, fmtFloat, intFmt, duration)
		}, "Wrote table")
	}
}

// writeBusFactorTable writes the ranked contributors and the bus factor summary.
func writeBusFactorTable(w io.Writer, view busFactorView, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration) error {
	if _, err := fmt.Fprintf(w, "Bus Factor: %s\n\n", view.Repository); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Contributor", "Commits", "Share"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for i, c := range view.TopContributors {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			displayLogin(c.Login),
			fmt.Sprintf(intFmt, c.Commits),
			fmtFloat(c.Percentage) + "%",
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	summary := fmt.Sprintf("Bus factor: %d (score %s/100, %s)", view.BusFactor, fmtFloat(view.Score), agg.GradeShort(view.Score))
	if cfg.UseColors {
		summary = contract.ScoreColor(view.Score).Sprint(summary)
	}
	if _, err := fmt.Fprintln(w, summary); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Contributors: %d, total commits: %d\n", view.Contributors, view.TotalCommits); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Computed in %v. Cache backend: %s\n", duration, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeBusFactorCSV writes one row per top contributor.
func writeBusFactorCSV(w io.Writer, result schema.BusFactorResult, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"rank", "login", "commits", "percentage", "bus_factor"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, c := range result.TopContributors {
			row := []string{
				strconv.Itoa(i + 1),
				c.Login,
				fmt.Sprintf(intFmt, c.Commits),
				fmtFloat(c.Percentage),
				strconv.Itoa(result.BusFactor),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeBusFactorMarkdown writes the bus factor as a Markdown section.
func writeBusFactorMarkdown(w io.Writer, view busFactorView, fmtFloat func(float64) string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Bus Factor: %s\n\n", view.Repository)
	fmt.Fprintf(&b, "**Bus factor:** %d (score %s/100)\n\n", view.BusFactor, fmtFloat(view.Score))
	fmt.Fprintf(&b, "**Contributors:** %d, **total commits:** %d\n\n", view.Contributors, view.TotalCommits)
	b.WriteString("| Rank | Contributor | Commits | Share |\n")
	b.WriteString("|------|-------------|---------|-------|\n")
	for i, c := range view.TopContributors {
		fmt.Fprintf(&b, "| %d | %s | %d | %s%% |\n", i+1, displayLogin(c.Login), c.Commits, fmtFloat(c.Percentage))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// displayLogin substitutes a placeholder for commits without a linked account.
func displayLogin(login string) string {
	if login == "" {
		return "(unknown)"
	}
	return login
}

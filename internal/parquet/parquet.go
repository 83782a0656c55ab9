// Package parquet provides data structures and functions for exporting
// repository health reports to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/repohealth/schema"
	"github.com/parquet-go/parquet-go"
)

// AnalyzerScoreRow is the score of one analyzer within a health report.
// Report-level columns are repeated on every row so that a single file can be
// queried without joins.
type AnalyzerScoreRow struct {
	// Repository is the full name of the scored repository
	Repository string `parquet:"repository,snappy"`

	// GeneratedAt is when the report was produced (stored as TIMESTAMP with nanosecond precision)
	GeneratedAt time.Time `parquet:"generated_at,snappy"`

	// Analyzer is the analyzer name, e.g. "Bus Factor"
	Analyzer string `parquet:"analyzer,snappy"`

	// Weight is the weight the analyzer contributed with
	Weight float64 `parquet:"weight,snappy"`

	// Score is the analyzer score on the 0-100 scale
	Score float64 `parquet:"score,snappy"`

	// WeightedScore is Score multiplied by Weight
	WeightedScore float64 `parquet:"weighted_score,snappy"`

	// Grade is the short letter grade of the analyzer score
	Grade string `parquet:"grade,snappy"`

	// Details is the analyzer's one-line summary (nullable)
	Details *string `parquet:"details,optional,snappy"`

	// PositiveFindings counts the criteria that were met
	PositiveFindings int32 `parquet:"positive_findings,snappy"`

	// WarningFindings counts the criteria that were partially met
	WarningFindings int32 `parquet:"warning_findings,snappy"`

	// MissingFindings counts the criteria that were not met
	MissingFindings int32 `parquet:"missing_findings,snappy"`

	// OverallScore is the overall score of the report
	OverallScore float64 `parquet:"overall_score,snappy"`

	// OverallGrade is the descriptive grade of the overall score
	OverallGrade string `parquet:"overall_grade,snappy"`
}

// WriteAnalyzerScoresParquet writes a slice of AnalyzerScoreRow structs to a Parquet file.
func WriteAnalyzerScoresParquet(data []AnalyzerScoreRow, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the AnalyzerScoreRow struct tags
	writer := parquet.NewGenericWriter[AnalyzerScoreRow](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertHealthReport flattens a report into one row per analyzer, in registry order.
// gradeShort maps a score to its letter grade.
func ConvertHealthReport(report *schema.HealthReport, gradeShort func(float64) string) []AnalyzerScoreRow {
	rows := make([]AnalyzerScoreRow, len(report.Outputs))
	for i, o := range report.Outputs {
		var details *string
		if o.Result.Details != "" {
			d := o.Result.Details
			details = &d
		}
		rows[i] = AnalyzerScoreRow{
			Repository:       report.Repository.FullName,
			GeneratedAt:      report.GeneratedAt,
			Analyzer:         o.Name,
			Weight:           o.Weight,
			Score:            o.Result.Score,
			WeightedScore:    o.WeightedScore(),
			Grade:            gradeShort(o.Result.Score),
			Details:          details,
			PositiveFindings: int32(o.Result.CountByStatus(schema.PositiveStatus)),
			WarningFindings:  int32(o.Result.CountByStatus(schema.WarningStatus)),
			MissingFindings:  int32(o.Result.CountByStatus(schema.MissingStatus)),
			OverallScore:     report.OverallScore,
			OverallGrade:     report.Grade,
		}
	}
	return rows
}

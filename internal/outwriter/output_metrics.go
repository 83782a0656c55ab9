package outwriter

import (
	"fmt"
	"io"

	"github.com/huangsam/repohealth/schema"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Metric names exposed in the Prometheus text format.
const (
	overallScoreMetric   = "repohealth_overall_score"
	analyzerScoreMetric  = "repohealth_score"
	analyzerWeightMetric = "repohealth_analyzer_weight"
	findingsMetric       = "repohealth_findings"
	busFactorMetric      = "repohealth_bus_factor"
	contributorMetric    = "repohealth_contributor_commits"
)

// findingStatuses is the label order for the findings family.
var findingStatuses = []schema.FindingStatus{schema.PositiveStatus, schema.WarningStatus, schema.MissingStatus}

// ptr returns a pointer to v for the optional fields of the dto messages.
func ptr[T any](v T) *T {
	return &v
}

// gaugeFamily builds an empty gauge family.
func gaugeFamily(name, help string) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: ptr(name),
		Help: ptr(help),
		Type: dto.MetricType_GAUGE.Enum(),
	}
}

// addGauge appends a gauge sample with label pairs given as name, value, name, value...
func addGauge(mf *dto.MetricFamily, value float64, labels ...string) {
	m := &dto.Metric{Gauge: &dto.Gauge{Value: ptr(value)}}
	for i := 0; i+1 < len(labels); i += 2 {
		m.Label = append(m.Label, &dto.LabelPair{Name: ptr(labels[i]), Value: ptr(labels[i+1])})
	}
	mf.Metric = append(mf.Metric, m)
}

// writeMetricFamilies renders families in the Prometheus text exposition format.
func writeMetricFamilies(w io.Writer, families ...*dto.MetricFamily) error {
	for _, mf := range families {
		if len(mf.Metric) == 0 {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to encode metrics: %w", err)
		}
	}
	return nil
}

// writeReportMetrics renders a health report as gauges labelled by repository and analyzer key.
func writeReportMetrics(w io.Writer, report *schema.HealthReport) error {
	repo := report.Repository.FullName

	overall := gaugeFamily(overallScoreMetric, "Overall repository health score (0-100).")
	addGauge(overall, report.OverallScore, "repository", repo)

	scores := gaugeFamily(analyzerScoreMetric, "Repository health score of one analyzer (0-100).")
	weights := gaugeFamily(analyzerWeightMetric, "Weight of one analyzer in the overall score.")
	findings := gaugeFamily(findingsMetric, "Number of analyzer findings by status.")
	for _, o := range report.Outputs {
		key := schema.AnalyzerKey(o.Name)
		addGauge(scores, o.Result.Score, "repository", repo, "analyzer", key)
		addGauge(weights, o.Weight, "repository", repo, "analyzer", key)
		for _, status := range findingStatuses {
			addGauge(findings, float64(o.Result.CountByStatus(status)), "repository", repo, "analyzer", key, "status", string(status))
		}
	}

	return writeMetricFamilies(w, overall, scores, weights, findings)
}

// writeBusFactorMetrics renders the bus factor and the commit counts of the top contributors.
func writeBusFactorMetrics(w io.Writer, result schema.BusFactorResult, meta schema.RepoMeta) error {
	repo := meta.FullName

	busFactor := gaugeFamily(busFactorMetric, "Minimum number of contributors accounting for half of all commits.")
	addGauge(busFactor, float64(result.BusFactor), "repository", repo)

	commits := gaugeFamily(contributorMetric, "Commit total of a top contributor.")
	for _, c := range result.TopContributors {
		addGauge(commits, float64(c.Commits), "repository", repo, "login", c.Login)
	}

	return writeMetricFamilies(w, busFactor, commits)
}

// writeAnalyzerMetrics renders the active analyzer weights.
func writeAnalyzerMetrics(w io.Writer, specs []schema.AnalyzerSpec) error {
	weights := gaugeFamily(analyzerWeightMetric, "Weight of one analyzer in the overall score.")
	for _, s := range specs {
		addGauge(weights, s.Weight, "analyzer", schema.AnalyzerKey(s.Name))
	}
	return writeMetricFamilies(w, weights)
}

package contract

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/huangsam/repohealth/core/agg"
	"github.com/huangsam/repohealth/schema"
)

// HeaderWriter receives progress headers. Stdout stays reserved for the report.
var HeaderWriter io.Writer = os.Stderr

// headerRule separates the overall score from the per-analyzer progress.
var headerRule = strings.Repeat("=", 60)

// headerf prints one header line, prefixed with an emoji when enabled.
func headerf(cfg *Config, emoji string, format string, args ...any) {
	if cfg.Quiet {
		return
	}
	if cfg.UseEmojis && emoji != "" {
		format = emoji + " " + format
	}
	_, _ = fmt.Fprintf(HeaderWriter, format+"\n", args...)
}

// LogFetchHeader prints the repository being fetched and warns about unauthenticated GitHub access.
func LogFetchHeader(cfg *Config) {
	headerf(cfg, "🔎", "Repo: %s (Source: %s)", cfg.Target, cfg.Target.Source)
	if cfg.Target.Source == schema.GitHubSource && cfg.Token == "" {
		headerf(cfg, "⚠️", "No %s set. API rate limits will be restrictive.", TokenEnvVar)
	}
	headerf(cfg, "📥", "Fetching repository data...")
}

// LogFetchDone confirms the snapshot is available.
func LogFetchDone(cfg *Config, cached bool) {
	if cached {
		headerf(cfg, "", "✓ Data loaded from cache")
		return
	}
	headerf(cfg, "", "✓ Data fetched successfully")
}

// LogAnalyzersHeader announces the analyzer pass.
func LogAnalyzersHeader(cfg *Config) {
	headerf(cfg, "🧪", "Running analyzers...")
}

// LogAnalyzerProgress prints one analyzer's score colored by tier.
func LogAnalyzerProgress(cfg *Config, name string, score float64) {
	if cfg.Quiet {
		return
	}
	line := fmt.Sprintf("%.*f/100 (%s)", cfg.Precision, score, agg.GradeShort(score))
	if cfg.UseColors {
		line = ScoreColor(score).Sprint(line)
	}
	_, _ = fmt.Fprintf(HeaderWriter, "  → %s... %s\n", name, line)
}

// LogOverallScore prints the overall score between two rules.
func LogOverallScore(cfg *Config, score float64) {
	if cfg.Quiet {
		return
	}
	line := fmt.Sprintf("Overall Score: %.*f/100 (%s)", cfg.Precision, score, agg.Grade(score))
	if cfg.UseColors {
		line = ScoreColor(score).Sprint(line)
	}
	_, _ = fmt.Fprintf(HeaderWriter, "%s\n%s\n%s\n", headerRule, line, headerRule)
}

// LogWatchHeader announces which repository is being watched.
func LogWatchHeader(cfg *Config) {
	headerf(cfg, "👀", "Watching %s for new commits (Ctrl+C to stop)", cfg.Target)
}

// LogChangeDetected announces a re-score triggered by a repository change.
func LogChangeDetected(cfg *Config, path string) {
	headerf(cfg, "🔁", "Change detected in %s, re-scoring...", path)
}

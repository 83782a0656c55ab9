package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/repohealth/core/agg"
)

// Health label constants.
const (
	ExcellentValue = "Excellent"         // Excellent value
	GoodValue      = "Good"              // Good value
	FairValue      = "Fair"              // Fair value
	NeedsWorkValue = "Needs Improvement" // Needs improvement value
	PoorValue      = "Poor"              // Poor value
)

// Color variables for console output.
var (
	ExcellentColor = color.New(color.FgGreen, color.Bold) // ExcellentColor represents a healthy signal.
	GoodColor      = color.New(color.FgGreen)             // GoodColor represents a healthy signal, not bold.
	FairColor      = color.New(color.FgYellow)            // FairColor represents standard caution.
	NeedsWorkColor = color.New(color.FgMagenta)           // NeedsWorkColor represents a distinct warning.
	PoorColor      = color.New(color.FgRed, color.Bold)   // PoorColor represents standard danger.
)

// GetPlainLabel returns a plain text label for the health tier of a score.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(score float64) string {
	switch {
	case score >= agg.ExcellentThreshold:
		return ExcellentValue
	case score >= agg.GoodThreshold:
		return GoodValue
	case score >= agg.FairThreshold:
		return FairValue
	case score >= agg.NeedsWorkThreshold:
		return NeedsWorkValue
	default:
		return PoorValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(score float64) string {
	text := GetPlainLabel(score)

	switch text {
	case ExcellentValue:
		return ExcellentColor.Sprint(text)
	case GoodValue:
		return GoodColor.Sprint(text)
	case FairValue:
		return FairColor.Sprint(text)
	case NeedsWorkValue:
		return NeedsWorkColor.Sprint(text)
	default: // "Poor"
		return PoorColor.Sprint(text)
	}
}

// ScoreColor picks the color for a raw score in progress output:
// green from 80, yellow from 60, red below.
func ScoreColor(score float64) *color.Color {
	switch {
	case score >= agg.GoodThreshold:
		return GoodColor
	case score >= agg.NeedsWorkThreshold:
		return FairColor
	default:
		return PoorColor
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for snapshot caching.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".repohealth_cache.db"
	}
	return filepath.Join(homeDir, ".repohealth_cache.db")
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the "..." and at least one character.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at least one character of content.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

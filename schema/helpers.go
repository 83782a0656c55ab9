package schema

import (
	"fmt"
	"strings"
	"unicode"
)

// AnalyzerKey converts a display name like "Bus Factor" or "CI/CD" into the
// config key form ("bus_factor", "cicd").
func AnalyzerKey(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(unicode.ToLower(r))
			lastUnderscore = false
		case unicode.IsSpace(r) || r == '-' || r == '_':
			if b.Len() > 0 && !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// AnalyzerNameForKey resolves a config key (or display name) back to the
// registered analyzer name. The second return is false for unknown keys.
func AnalyzerNameForKey(key string) (string, bool) {
	k := AnalyzerKey(key)
	for _, name := range AnalyzerOrder {
		if AnalyzerKey(name) == k {
			return name, true
		}
	}
	return "", false
}

// FormatContributors renders top contributors as "alice (72.0%), bob (20.0%)".
func FormatContributors(top []TopContributor) string {
	if len(top) == 0 {
		return "No contributors"
	}
	parts := make([]string, 0, len(top))
	for _, c := range top {
		parts = append(parts, fmt.Sprintf("%s (%.1f%%)", c.Login, c.Percentage))
	}
	return strings.Join(parts, ", ")
}

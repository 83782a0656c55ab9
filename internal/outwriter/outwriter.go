// Package outwriter has output and writer logic.
package outwriter

import (
	"os"

	"github.com/huangsam/repohealth/internal/contract"
	"golang.org/x/term"
)

// Table layout limits for the details column.
const (
	defaultTermWidth = 80 // Conservative default for narrow terminals and CI
	minDetailsWidth  = 20
	maxDetailsWidth  = 80
)

// getMaxTableDetailsWidth calculates the maximum width for the details column
// in table output based on terminal width.
func getMaxTableDetailsWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = defaultTermWidth
		} else {
			termWidth = detectedWidth
		}
	}

	// Analyzer + Weight + Score + Grade + Label with borders/padding
	baseWidth := 60

	available := termWidth - baseWidth
	if available < minDetailsWidth {
		return minDetailsWidth
	}
	if available > maxDetailsWidth {
		return maxDetailsWidth
	}
	return available
}

// scoreLabel returns the tier label, coloured when colours are enabled.
func scoreLabel(score float64, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorLabel(score)
	}
	return contract.GetPlainLabel(score)
}

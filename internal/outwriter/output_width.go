package outwriter

import (
	"os"

	"github.com/huangsam/hmpi/internal/contract"
	"golang.org/x/term"
)

// Location column bounds for the sample table.
const (
	minLocationWidth = 12
	maxLocationWidth = 48
)

// GetMaxTableLocationWidth calculates the maximum width for sample locations
// in table output based on terminal width and the fixed columns.
func GetMaxTableLocationWidth(cfg *contract.Config) int {
	termWidth := cfg.Width

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// # + Sample + Metals + HMPI + Risk with borders/padding
	baseWidth := 50

	available := termWidth - baseWidth
	if available < minLocationWidth {
		return minLocationWidth
	}
	if available > maxLocationWidth {
		return maxLocationWidth
	}
	return available
}

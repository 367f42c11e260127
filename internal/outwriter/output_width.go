package outwriter

import (
	"os"

	"github.com/huangsam/reposcore/internal/contract"
	"golang.org/x/term"
)

// Bounds of the free-text column of result tables.
const (
	minTextWidth = 20
	maxTextWidth = 90
)

// terminalWidth returns the width override, the detected terminal width, or 80.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detected, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detected <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detected
}

// GetMaxTableTextWidth returns the width available to a free-text column
// after reserving fixedWidth for the other columns and table borders.
func GetMaxTableTextWidth(cfg *contract.Config, fixedWidth int) int {
	available := terminalWidth(cfg) - fixedWidth - 10
	return min(maxTextWidth, max(minTextWidth, available))
}

package score

import "github.com/kylesnowschwartz/agentwatch/internal/theme"

// BandLevel maps a 0-100 overall score to one of four display levels,
// per §4.6.5: >=80 L0, >=60 L1, >=40 L2, else L3. This mirrors
// theme.StatusFromScore's thresholds exactly (both read the same 80/60/40
// bands) but returns the bare level rather than a themed label — callers
// needing (label, emoji, color) should go through theme.Get(name) instead.
func BandLevel(overall float64) theme.Level {
	return theme.StatusFromScore(overall)
}

// ExitCode maps an overall score to the process exit code the `check`
// and `security-scan` CLI commands return: 0 healthy, 1 warning, 2
// critical.
func ExitCode(overall float64) int {
	switch {
	case overall < 40:
		return 2
	case overall < 60:
		return 1
	default:
		return 0
	}
}

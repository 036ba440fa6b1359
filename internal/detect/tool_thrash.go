package detect

import "github.com/kylesnowschwartz/agentwatch/internal/logformat"

// thrashWindow matches the 30-action window score/rot.go's
// scoreToolThrash composite module uses for the same underlying pattern;
// that module has no cut-off and ramps its value from a 0.5 switch ratio,
// while this detector emits a progress-category Warning once the ratio
// reaches thrashSwitchRatio.
const (
	thrashWindow      = 30
	thrashSwitchRatio = 0.7
)

// detectToolThrash flags rapid switching between unrelated tool kinds
// without settling into a productive pattern — e.g. read, bash, search,
// read, bash, search, never landing on an edit.
func detectToolThrash(buf *logformat.ActionBuffer, stats logformat.SessionStats) []Warning {
	window := buf.Last(thrashWindow)
	if len(window) < 6 {
		return nil
	}

	switches := 0
	for i := 1; i < len(window); i++ {
		if window[i].ToolKind != window[i-1].ToolKind {
			switches++
		}
	}
	ratio := float64(switches) / float64(len(window)-1)
	if ratio < thrashSwitchRatio {
		return nil
	}

	sev := SeverityLow
	if ratio >= 0.85 {
		sev = SeverityMedium
	}
	return []Warning{{
		Signal:     "tool_thrash",
		Category:   CategoryProgress,
		Severity:   sev,
		Message:    "agent is switching tool kinds rapidly without settling into a productive pattern",
		Suggestion: "check whether the agent has a clear next step, or is flailing between approaches",
		Details:    map[string]any{"switches": switches, "window": len(window)},
	}}
}

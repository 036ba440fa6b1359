package detect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kylesnowschwartz/agentwatch/internal/logformat"
)

// countExplorationActions counts read/search actions in actions — the
// "code exploration without an edit" turns SessionMaturityFactor's
// immediate-1.0 fast path looks for.
func countExplorationActions(actions []logformat.Action) int {
	n := 0
	for _, a := range actions {
		if a.IsFileRead() || a.ToolKind == logformat.ToolSearch {
			n++
		}
	}
	return n
}

// detectProgressStall flags a window dominated by reads and searches
// with no file edits, the signature of an agent circling a problem
// without converging on a change.
func detectProgressStall(buf *logformat.ActionBuffer, stats logformat.SessionStats) []Warning {
	window := ScaledActionWindow(stats.ActionCount)
	recent := buf.Last(window)
	if len(recent) < 8 {
		return nil
	}

	var edits, reads int
	for _, a := range recent {
		switch {
		case a.IsFileEdit():
			edits++
		case a.IsFileRead() || a.ToolKind == logformat.ToolSearch:
			reads++
		}
	}
	if edits > 0 || reads < 6 {
		return nil
	}

	sev := SeverityMedium
	if len(recent) >= actionWindowCap/2 {
		sev = SeverityHigh
	}
	return []Warning{{
		Signal:     "progress_stall",
		Category:   CategoryProgress,
		Severity:   sev,
		Message:    fmt.Sprintf("%d of the last %d actions read or searched with no file edits", reads, len(recent)),
		Suggestion: "check whether the agent understands the task, or is stuck re-reading the same files",
		Details:    map[string]any{"reads": reads, "window": len(recent)},
	}}
}

// detectErrorLoop flags a run of consecutive tool failures, or a
// recurring identical error message, within the recent window — both are
// the same underlying pattern (the agent retrying without adapting), so
// they're folded into a single `error_loop` signal rather than two
// separately-named ones.
func detectErrorLoop(buf *logformat.ActionBuffer, stats logformat.SessionStats) []Warning {
	window := ScaledActionWindow(stats.ActionCount)
	recent := buf.Last(window)

	streak, maxStreak := 0, 0
	for _, a := range recent {
		if !a.Success {
			streak++
			if streak > maxStreak {
				maxStreak = streak
			}
		} else {
			streak = 0
		}
	}

	counts := make(map[string]int)
	var order []string
	for _, msg := range buf.RecentErrors(window) {
		line := firstLineOf(msg)
		if counts[line] == 0 {
			order = append(order, line)
		}
		counts[line]++
	}
	var pattern string
	var repeatedCount int
	for _, line := range order {
		if counts[line] > repeatedCount {
			pattern, repeatedCount = line, counts[line]
		}
	}

	if maxStreak < 3 && repeatedCount < 3 {
		return nil
	}

	sampleErrors := order
	if len(sampleErrors) > 3 {
		sampleErrors = sampleErrors[:3]
	}

	sev := SeverityMedium
	if maxStreak >= 6 || repeatedCount >= 6 {
		sev = SeverityHigh
	}

	return []Warning{{
		Signal:     "error_loop",
		Category:   CategoryErrors,
		Severity:   sev,
		Message:    fmt.Sprintf("agent is stuck in an error loop: %d consecutive failures, same error seen %d times", maxStreak, repeatedCount),
		Suggestion: "the agent may be retrying a broken approach without adapting; consider intervening",
		Details:    map[string]any{"error_pattern": truncate(pattern, 160), "sample_errors": sampleErrors},
	}}
}

// detectBashFailureCluster flags a cluster of failing bash invocations
// within the recent window, distinct from detectErrorLoop's streak/repeat
// check in that it's scoped to the shell specifically and reports the
// failing command, not just the error text.
func detectBashFailureCluster(buf *logformat.ActionBuffer, stats logformat.SessionStats) []Warning {
	window := ScaledActionWindow(stats.ActionCount)
	recent := buf.Last(window)

	var lastCommand, lastError string
	failures := 0
	for _, a := range recent {
		if !a.IsBash() {
			continue
		}
		if !a.Success {
			failures++
			lastCommand, lastError = a.Command, a.ErrorMessage
		}
	}
	if failures < 3 {
		return nil
	}

	sev := SeverityMedium
	if failures >= 6 {
		sev = SeverityHigh
	}
	return []Warning{{
		Signal:     "bash_failure_cluster",
		Category:   CategoryErrors,
		Severity:   sev,
		Message:    fmt.Sprintf("%d failed shell commands in the recent window", failures),
		Suggestion: "check whether the agent's environment or command assumptions are broken",
		Details: map[string]any{
			"last_command":  truncate(lastCommand, 160),
			"last_error":    truncate(lastError, 160),
			"failure_count": failures,
		},
	}}
}

// testCommandPattern recognizes common test-runner invocations across
// ecosystems, independent of any single language's toolchain.
var testCommandPattern = regexp.MustCompile(`(?i)\b(go test|pytest|npm test|yarn test|jest|rspec|cargo test|mvn test|gradle test)\b`)

// detectFlakyTestLoop flags the same test command being re-run
// repeatedly with alternating pass/fail results — a sign the agent is
// chasing a flaky test rather than a real regression.
func detectFlakyTestLoop(buf *logformat.ActionBuffer, stats logformat.SessionStats) []Warning {
	window := ScaledActionWindow(stats.ActionCount)
	recent := buf.Last(window)

	type run struct {
		command string
		success bool
	}
	var runs []run
	for _, a := range recent {
		if a.IsBash() && testCommandPattern.MatchString(a.Command) {
			runs = append(runs, run{command: a.Command, success: a.Success})
		}
	}
	if len(runs) < 4 {
		return nil
	}

	byCommand := make(map[string][]bool)
	for _, r := range runs {
		byCommand[r.command] = append(byCommand[r.command], r.success)
	}

	var warnings []Warning
	for cmd, results := range byCommand {
		if len(results) < 4 {
			continue
		}
		flips := 0
		for i := 1; i < len(results); i++ {
			if results[i] != results[i-1] {
				flips++
			}
		}
		if flips < 2 {
			continue
		}
		sev := SeverityLow
		if flips >= 4 {
			sev = SeverityMedium
		}
		warnings = append(warnings, Warning{
			Signal:     "flaky_test_loop",
			Category:   CategoryErrors,
			Severity:   sev,
			Message:    fmt.Sprintf("test command re-run %d times with %d pass/fail flips: %s", len(results), flips, truncate(cmd, 120)),
			Suggestion: "investigate whether the test itself is flaky before re-running it again",
			Details:    map[string]any{"command": truncate(cmd, 160), "runs": len(results), "flips": flips},
		})
	}
	return warnings
}

// maxContextTokens approximates the context window budget used to turn
// a raw token count into a usage_percent, the detail field the
// efficiency scorer's pressure_penalty reads from this warning.
const maxContextTokens = 200_000

// detectContextPressure flags a session accumulating tokens fast enough
// that a context-window cutoff is plausible soon.
func detectContextPressure(buf *logformat.ActionBuffer, stats logformat.SessionStats) []Warning {
	usagePercent := float64(stats.TotalTokens) / float64(maxContextTokens) * 100
	if usagePercent < 25 {
		return nil
	}

	signal := "context_pressure"
	sev := SeverityLow
	switch {
	case usagePercent >= 90:
		signal, sev = "context_critical", SeverityCritical
	case usagePercent >= 60:
		sev = SeverityHigh
	case usagePercent >= 40:
		sev = SeverityMedium
	}
	return []Warning{{
		Signal:     signal,
		Category:   CategoryContext,
		Severity:   sev,
		Message:    fmt.Sprintf("session has used %.0f%% of its estimated context budget", usagePercent),
		Suggestion: "consider compacting or starting a fresh session soon",
		Details:    map[string]any{"usage_percent": usagePercent, "total_tokens": stats.TotalTokens},
	}}
}

// detectGoalDrift flags a widening gap between the files touched early
// in a session and the files touched in the recent window — a rough
// proxy for an agent wandering away from its original task scope.
func detectGoalDrift(buf *logformat.ActionBuffer, stats logformat.SessionStats) []Warning {
	turnWindow := ScaledTurnWindow(stats.ActionCount)
	earlyActions := buf.First(20)
	hasEdit := false
	for _, a := range buf.Actions() {
		if a.IsFileEdit() {
			hasEdit = true
			break
		}
	}
	maturity := SessionMaturityFactor(stats.ActionCount, hasEdit, countExplorationActions(earlyActions))
	if maturity < 1.0 {
		return nil
	}

	early := buf.EarlyFiles(20)
	recent := buf.FilesInWindow(turnWindow)
	if len(early) == 0 || len(recent) == 0 {
		return nil
	}

	overlap := 0
	for f := range recent {
		if _, ok := early[f]; ok {
			overlap++
		}
	}
	overlapRatio := float64(overlap) / float64(len(recent))
	if overlapRatio > 0.1 || len(recent) < 4 {
		return nil
	}

	return []Warning{{
		Signal:     "goal_drift",
		Category:   CategoryGoal,
		Severity:   SeverityLow,
		Message:    "recent file activity shares almost no overlap with the files touched early in the session",
		Suggestion: "verify the agent hasn't wandered away from the original task",
		Details:    map[string]any{"overlap_ratio": overlapRatio},
	}}
}

// detectContextRot flags files touched early in the session that have
// dropped entirely out of the recent window — the agent may have
// "forgotten" context about them it once had.
func detectContextRot(buf *logformat.ActionBuffer, stats logformat.SessionStats) []Warning {
	early := buf.EarlyFiles(20)
	recent := buf.FilesInWindow(ScaledActionWindow(stats.ActionCount))
	if len(early) == 0 {
		return nil
	}

	var forgotten []string
	for f := range early {
		if _, ok := recent[f]; !ok {
			forgotten = append(forgotten, f)
		}
	}
	if len(forgotten) == 0 {
		return nil
	}

	sev := SeverityLow
	if len(forgotten) >= 5 {
		sev = SeverityMedium
	}
	return []Warning{{
		Signal:     "context_rot",
		Category:   CategoryContext,
		Severity:   sev,
		Message:    "early-session files have dropped out of the recent window",
		Suggestion: "remind the agent of files it touched earlier if they're still relevant",
		Details:    map[string]any{"forgotten_files": forgotten},
	}}
}

// detectRediscovery flags a file re-read within the last 50 actions,
// the same fixed lookback calculate_efficiency's waste_ratio uses —
// kept as a literal 50 here too rather than the adaptive window, since
// this detector and the efficiency scorer must agree on what counts as
// a "duplicate read".
func detectRediscovery(buf *logformat.ActionBuffer, stats logformat.SessionStats) []Warning {
	const fixedLookback = 50
	counts := make(map[string]int)
	for _, a := range buf.Last(fixedLookback) {
		if a.IsFileRead() && a.FilePath != "" {
			counts[a.FilePath]++
		}
	}

	var warnings []Warning
	for path, n := range counts {
		if n < 2 {
			continue
		}
		sev := SeverityLow
		if n >= 4 {
			sev = SeverityMedium
		}
		warnings = append(warnings, Warning{
			Signal:     "rediscovery",
			Category:   CategoryContext,
			Severity:   sev,
			Message:    "file re-read multiple times in the recent window",
			Suggestion: "the agent may not be retaining what it already read",
			Details:    map[string]any{"file": path, "rediscovery_count": n},
		})
	}
	return warnings
}

func firstLineOf(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

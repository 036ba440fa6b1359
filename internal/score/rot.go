package score

import (
	"sort"
	"strconv"

	"github.com/kylesnowschwartz/agentwatch/internal/detect"
	"github.com/kylesnowschwartz/agentwatch/internal/logformat"
	"github.com/kylesnowschwartz/agentwatch/internal/theme"
)

// rotEMAAlpha is the exponential-moving-average smoothing factor applied
// across successive RotScorer.Score calls, damping tick-to-tick
// oscillation in the composite rot score.
const rotEMAAlpha = 0.3

// RotModule is one of the five named inputs to the context-rot
// composite, each scored independently on [0,1] (0 = no sign of rot, 1
// = fully rotted) with a short evidence string explaining the value.
type RotModule struct {
	Name     string
	Value    float64
	Evidence string
}

// rotModuleWeights is a fixed weighted sum over the five modules. The
// spec names the five modules but not their relative weights; this
// split favors behavioral and repetition signals (the most direct
// evidence of a degraded session) over the slower-moving constraint
// signal, a judgment call recorded in the project's grounding ledger.
var rotModuleWeights = map[string]float64{
	"behavioral":  0.25,
	"repetition":  0.25,
	"tool_thrash": 0.20,
	"progress":    0.15,
	"constraint":  0.15,
}

// RotReport is the context-rot scorer's output: the raw composite for
// this tick, the EMA-smoothed composite across ticks, a banded state,
// and the top 3 contributing reasons.
type RotReport struct {
	Composite float64
	Smoothed  float64
	State     theme.Level
	Reasons   []string
	Modules   []RotModule
}

// RotHealth converts a smoothed [0,1] rot composite into the [0,100]
// "rot health" the overall blend consumes, where 0 rot = 100 health.
func (r RotReport) RotHealth() float64 {
	return (1 - r.Smoothed) * 100
}

// RotScorer holds the EMA state across successive Score calls for one
// agent session. Zero value is ready to use (first call seeds the EMA
// with its own raw composite).
type RotScorer struct {
	hasPrior bool
	smoothed float64
}

// NewRotScorer returns a ready-to-use RotScorer.
func NewRotScorer() *RotScorer { return &RotScorer{} }

// Score computes the five rot modules from the current window and
// blends them into a new RotReport, updating the scorer's EMA state.
func (s *RotScorer) Score(buf *logformat.ActionBuffer, stats logformat.SessionStats, warnings []detect.Warning) RotReport {
	modules := []RotModule{
		scoreBehavioral(warnings),
		scoreRepetition(buf),
		scoreToolThrash(buf),
		scoreProgress(buf, stats),
		scoreConstraint(warnings),
	}

	composite := 0.0
	for _, m := range modules {
		composite += m.Value * rotModuleWeights[m.Name]
	}
	if composite > 1 {
		composite = 1
	}

	if !s.hasPrior {
		s.smoothed = composite
		s.hasPrior = true
	} else {
		s.smoothed = rotEMAAlpha*composite + (1-rotEMAAlpha)*s.smoothed
	}

	return RotReport{
		Composite: composite,
		Smoothed:  s.smoothed,
		State:     theme.StatusFromScore((1 - s.smoothed) * 100),
		Reasons:   topReasons(modules, 3),
		Modules:   modules,
	}
}

// scoreBehavioral reflects how many security/behavioral warnings (prompt
// injection, privilege escalation; network warnings are not counted) have fired in
// this tick — a session under active adversarial pressure is a rotted
// one even if its task-progress signals still look fine.
func scoreBehavioral(warnings []detect.Warning) RotModule {
	n := 0
	for _, w := range warnings {
		if w.Category == detect.CategoryInjection || w.Category == detect.CategoryPrivilege {
			n++
		}
	}
	v := clamp01(float64(n) / 3)
	return RotModule{Name: "behavioral", Value: v, Evidence: countEvidence(n, "behavioral warning")}
}

// scoreRepetition reflects duplicate file reads in the recent window —
// the agent retreading ground it has already covered.
func scoreRepetition(buf *logformat.ActionBuffer) RotModule {
	window := buf.Last(50)
	seen := make(map[string]int)
	dups := 0
	for _, a := range window {
		if a.IsFileRead() && a.FilePath != "" {
			seen[a.FilePath]++
			if seen[a.FilePath] > 1 {
				dups++
			}
		}
	}
	v := clamp01(float64(dups) / 10)
	return RotModule{Name: "repetition", Value: v, Evidence: countEvidence(dups, "duplicate read")}
}

// scoreToolThrash reflects rapid switching between unrelated tool kinds
// without settling into a productive pattern (e.g. read, bash, search,
// read, bash, search — never landing on an edit).
func scoreToolThrash(buf *logformat.ActionBuffer) RotModule {
	window := buf.Last(30)
	if len(window) < 6 {
		return RotModule{Name: "tool_thrash", Value: 0, Evidence: "insufficient history"}
	}
	switches := 0
	for i := 1; i < len(window); i++ {
		if window[i].ToolKind != window[i-1].ToolKind {
			switches++
		}
	}
	ratio := float64(switches) / float64(len(window)-1)
	v := clamp01((ratio - 0.5) / 0.5)
	return RotModule{Name: "tool_thrash", Value: v, Evidence: countEvidence(switches, "tool switch")}
}

// scoreProgress mirrors the progress-stall signal: a window with no
// file edits is evidence of rot, gated by session maturity so a short
// exploratory preamble isn't punished.
func scoreProgress(buf *logformat.ActionBuffer, stats logformat.SessionStats) RotModule {
	window := buf.Last(detect.ScaledActionWindow(stats.ActionCount))
	edits, exploration := 0, 0
	for _, a := range window {
		switch {
		case a.IsFileEdit():
			edits++
		case a.IsFileRead() || a.ToolKind == logformat.ToolSearch:
			exploration++
		}
	}
	maturity := detect.SessionMaturityFactor(stats.ActionCount, edits > 0, exploration)
	v := clamp01(maturity * boolFloat(len(window) > 0 && edits == 0))
	return RotModule{Name: "progress", Value: clamp01(v), Evidence: countEvidence(edits, "file edit")}
}

// scoreConstraint reflects accumulated context pressure and rediscovery
// warnings — signs the session is bumping up against its own
// constraints (token budget, already-explored ground).
func scoreConstraint(warnings []detect.Warning) RotModule {
	n := 0
	for _, w := range warnings {
		if w.Signal == "context_critical" || w.Signal == "context_pressure" || w.Signal == "rediscovery" {
			n++
		}
	}
	v := clamp01(float64(n) / 4)
	return RotModule{Name: "constraint", Value: v, Evidence: countEvidence(n, "constraint warning")}
}

func topReasons(modules []RotModule, n int) []string {
	sorted := make([]RotModule, len(modules))
	copy(sorted, modules)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Value > sorted[j].Value })

	var reasons []string
	for i := 0; i < len(sorted) && i < n; i++ {
		if sorted[i].Value <= 0 {
			continue
		}
		reasons = append(reasons, sorted[i].Name+": "+sorted[i].Evidence)
	}
	return reasons
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func countEvidence(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

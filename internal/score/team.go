package score

import "github.com/kylesnowschwartz/agentwatch/internal/detect"

const (
	teamRootWeight = 0.50
	teamSubWeight  = 0.50
)

// TeamHealthReport aggregates one HealthReport per agent pid into a
// team-level score, plus cross-agent warnings synthesized by comparing
// root and subagent health.
type TeamHealthReport struct {
	RootPID  int32
	Overall  float64
	Status   string
	Warnings []detect.Warning
}

// CalculateTeamHealth combines a root agent's health with its
// subagents', weighting the root at 0.50 and splitting the remaining
// 0.50 evenly across subagents. Two cross-agent warnings are
// synthesized: team_cascade_failure (HIGH) when a majority of
// subagents score below 60, and subagent_distress (MEDIUM) when the
// root is healthy (>=80) but at least one subagent is critical (<40).
func CalculateTeamHealth(rootPID int32, reports map[int32]HealthReport) TeamHealthReport {
	root, hasRoot := reports[rootPID]
	var subScores []float64
	for pid, r := range reports {
		if pid == rootPID {
			continue
		}
		subScores = append(subScores, r.Overall)
	}

	overall := 0.0
	switch {
	case hasRoot && len(subScores) > 0:
		subAvg := average(subScores)
		overall = root.Overall*teamRootWeight + subAvg*teamSubWeight
	case hasRoot:
		overall = root.Overall
	case len(subScores) > 0:
		overall = average(subScores)
	}

	var warnings []detect.Warning
	if len(subScores) > 0 {
		below60 := 0
		for _, s := range subScores {
			if s < 60 {
				below60++
			}
		}
		if below60*2 > len(subScores) {
			warnings = append(warnings, detect.Warning{
				Signal:     "team_cascade_failure",
				Category:   detect.CategoryProgress,
				Severity:   detect.SeverityHigh,
				Message:    "a majority of subagents are scoring below 60",
				Suggestion: "investigate whether a shared resource or instruction is causing widespread failure",
				Details:    map[string]any{"subagent_count": len(subScores), "below_60": below60},
			})
		}

		if hasRoot && root.Overall >= 80 {
			for _, s := range subScores {
				if s < 40 {
					warnings = append(warnings, detect.Warning{
						Signal:     "subagent_distress",
						Category:   detect.CategoryProgress,
						Severity:   detect.SeverityMedium,
						Message:    "root agent is healthy but at least one subagent is critical",
						Suggestion: "check whether the struggling subagent needs redirection or should be stopped",
						Details:    map[string]any{"root_score": root.Overall},
					})
					break
				}
			}
		}
	}

	for _, w := range warnings {
		overall -= w.Severity.ScoreImpact()
	}
	if overall < 0 {
		overall = 0
	}
	if overall > 100 {
		overall = 100
	}

	return TeamHealthReport{
		RootPID:  rootPID,
		Overall:  overall,
		Status:   categoryStatus(overall),
		Warnings: warnings,
	}
}

func average(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

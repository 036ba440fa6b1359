package score

import (
	"math"

	"github.com/kylesnowschwartz/agentwatch/internal/detect"
	"github.com/kylesnowschwartz/agentwatch/internal/logformat"
)

// dupReadLookback is the FIXED (non-adaptive) number of recent actions
// checked for duplicate file reads, per the waste_ratio definition in
// spec's efficiency formula. Unlike the detectors' adaptive windows
// (detect.ScaledActionWindow), this lookback is a constant 50
// regardless of session length — an intentional difference, not an
// oversight, so it is kept as a literal here rather than reusing the
// adaptive helper.
const dupReadLookback = 50

const (
	weightPressure    = 0.45
	weightRot         = 0.20
	weightRediscovery = 0.10
	weightWaste       = 0.25

	wasteRatioCeiling = 0.30
)

// EfficiencyReport scores how productively a session is using its
// context budget: low rediscovery (re-reading files it already read),
// low wasted tool calls (failed bash + duplicate reads), low context
// pressure, low context rot.
type EfficiencyReport struct {
	Score             int
	Status            string // "efficient" | "degraded" | "wasteful"
	Recommendation    string
	PressurePenalty   float64
	RotPenalty        float64
	RediscoveryPenalty float64
	WastePenalty      float64
}

func efficiencyStatus(score int) string {
	switch {
	case score >= 70:
		return "efficient"
	case score >= 40:
		return "degraded"
	default:
		return "wasteful"
	}
}

func efficiencyRecommendation(score int) string {
	switch {
	case score >= 80:
		return "session is running efficiently; no action needed"
	case score >= 60:
		return "efficiency is acceptable but worth a glance at recent warnings"
	case score >= 40:
		return "consider compacting context or redirecting the agent"
	default:
		return "session is wasting significant context; intervene"
	}
}

// CalculateEfficiency reduces the action buffer and this tick's warnings
// into a single 0-100 efficiency score, following the four-penalty
// formula: pressure, rot, rediscovery, waste, weighted (0.45, 0.20,
// 0.10, 0.25) and combined as 100 * (1 - total_penalty).
func CalculateEfficiency(buf *logformat.ActionBuffer, warnings []detect.Warning) EfficiencyReport {
	usagePercent := detailFloat(warnings, "context_pressure", "usage_percent")
	if usagePercent == 0 {
		usagePercent = detailFloat(warnings, "context_critical", "usage_percent")
	}
	pressurePenalty := usagePercent / 100

	forgottenFiles := detailStringSliceLen(warnings, "context_rot", "forgotten_files")
	rotPenalty := math.Min(float64(forgottenFiles)/5, 1)

	rediscoveryCount := detailIntSum(warnings, "rediscovery", "rediscovery_count")
	rediscoveryPenalty := math.Min(float64(rediscoveryCount)/4, 1)

	window := buf.Last(dupReadLookback)
	failedBash := 0
	seen := make(map[string]int)
	duplicateReads := 0
	totalActions := len(window)
	for _, a := range window {
		if a.IsBash() && !a.Success {
			failedBash++
		}
		if a.IsFileRead() && a.FilePath != "" {
			seen[a.FilePath]++
			if seen[a.FilePath] > 1 {
				duplicateReads++
			}
		}
	}
	wasteRatio := 0.0
	if totalActions > 0 {
		wasteRatio = float64(failedBash+duplicateReads) / float64(totalActions)
	}
	wastePenalty := math.Min(wasteRatio/wasteRatioCeiling, 1)

	totalPenalty := pressurePenalty*weightPressure +
		rotPenalty*weightRot +
		rediscoveryPenalty*weightRediscovery +
		wastePenalty*weightWaste

	score := int(math.Round(100 * (1 - totalPenalty)))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return EfficiencyReport{
		Score:              score,
		Status:             efficiencyStatus(score),
		Recommendation:     efficiencyRecommendation(score),
		PressurePenalty:    pressurePenalty,
		RotPenalty:         rotPenalty,
		RediscoveryPenalty: rediscoveryPenalty,
		WastePenalty:       wastePenalty,
	}
}

func detailFloat(warnings []detect.Warning, signal, key string) float64 {
	for _, w := range warnings {
		if w.Signal != signal {
			continue
		}
		if v, ok := w.Details[key]; ok {
			if f, ok := v.(float64); ok {
				return f
			}
		}
	}
	return 0
}

func detailIntSum(warnings []detect.Warning, signal, key string) int {
	total := 0
	for _, w := range warnings {
		if w.Signal != signal {
			continue
		}
		if v, ok := w.Details[key]; ok {
			switch n := v.(type) {
			case int:
				total += n
			case float64:
				total += int(n)
			}
		}
	}
	return total
}

func detailStringSliceLen(warnings []detect.Warning, signal, key string) int {
	for _, w := range warnings {
		if w.Signal != signal {
			continue
		}
		if v, ok := w.Details[key]; ok {
			if s, ok := v.([]string); ok {
				return len(s)
			}
		}
	}
	return 0
}

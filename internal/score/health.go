// Package score reduces detector warnings and session statistics into
// weighted health, efficiency, security, and context-rot scores.
package score

import (
	"math"

	"github.com/kylesnowschwartz/agentwatch/internal/detect"
)

// HealthCategoryWeights mirrors original_source/health/score.py's
// HEALTH_CATEGORY_WEIGHTS: how much each health category contributes to
// the blended health score.
var HealthCategoryWeights = map[detect.Category]float64{
	detect.CategoryProgress: 0.35,
	detect.CategoryErrors:   0.30,
	detect.CategoryContext:  0.20,
	detect.CategoryGoal:     0.15,
}

// SecurityCategoryWeights mirrors SECURITY_CATEGORY_WEIGHTS.
var SecurityCategoryWeights = map[detect.Category]float64{
	detect.CategoryCredential:   0.20,
	detect.CategoryInjection:    0.25,
	detect.CategoryExfiltration: 0.20,
	detect.CategoryPrivilege:    0.15,
	detect.CategoryNetwork:      0.10,
	detect.CategorySupplyChain:  0.10,
}

// blendWeights combine the three inputs to the overall health score:
// detector findings, efficiency, and context-rot health.
const (
	blendWeightDetector = 0.60
	blendWeightEffic    = 0.20
	blendWeightRotHealth = 0.20
)

// CategoryScore is a single category's 0-100 score plus the warnings
// that produced it, with a status derived from the 80/50 banding used
// internally by calculate_health (distinct from the 80/60/40 banding
// StatusTheme uses for display — see status.go).
type CategoryScore struct {
	Category detect.Category
	Score    float64
	Status   string // "healthy" | "degraded" | "critical"
	Warnings []detect.Warning
}

func categoryStatus(s float64) string {
	switch {
	case s >= 80:
		return "healthy"
	case s >= 50:
		return "degraded"
	default:
		return "critical"
	}
}

// scoreCategory reduces one category's warnings to a 0-100 score: start
// at 100, subtract each warning's severity score_impact, floor at 0. A
// single critical-severity warning in a security category zeroes the
// category outright, matching calculate_security_score's
// critical-severity-immediate-zero rule.
func scoreCategory(cat detect.Category, warnings []detect.Warning, isSecurity bool) CategoryScore {
	var relevant []detect.Warning
	for _, w := range warnings {
		if w.Category == cat {
			relevant = append(relevant, w)
		}
	}

	s := 100.0
	for _, w := range relevant {
		if isSecurity && w.Severity == detect.SeverityCritical {
			s = 0
			break
		}
		s -= w.Severity.ScoreImpact()
	}
	if s < 0 {
		s = 0
	}

	return CategoryScore{Category: cat, Score: s, Status: categoryStatus(s), Warnings: relevant}
}

// HealthReport is the full health-category breakdown plus its blended
// overall score.
type HealthReport struct {
	Categories []CategoryScore
	Overall    float64
	Status     string
}

// CalculateHealth scores every health category from warnings and blends
// them by HealthCategoryWeights.
func CalculateHealth(warnings []detect.Warning) HealthReport {
	var cats []CategoryScore
	var weighted, totalWeight float64
	for cat, weight := range HealthCategoryWeights {
		cs := scoreCategory(cat, warnings, false)
		cats = append(cats, cs)
		weighted += cs.Score * weight
		totalWeight += weight
	}
	overall := 100.0
	if totalWeight > 0 {
		// Round away float noise from summing weights in map order.
		overall = math.Round(weighted/totalWeight*1e9) / 1e9
	}
	return HealthReport{Categories: cats, Overall: overall, Status: categoryStatus(overall)}
}

// SecurityReport is the security-category analogue of HealthReport.
type SecurityReport struct {
	Categories []CategoryScore
	Overall    float64
	Status     string
}

// CalculateSecurity scores every security category and blends them by
// SecurityCategoryWeights.
func CalculateSecurity(warnings []detect.Warning) SecurityReport {
	var cats []CategoryScore
	var weighted, totalWeight float64
	for cat, weight := range SecurityCategoryWeights {
		cs := scoreCategory(cat, warnings, true)
		cats = append(cats, cs)
		weighted += cs.Score * weight
		totalWeight += weight
	}
	overall := 100.0
	if totalWeight > 0 {
		overall = math.Round(weighted/totalWeight*1e9) / 1e9
	}
	return SecurityReport{Categories: cats, Overall: overall, Status: categoryStatus(overall)}
}

// BlendOverall combines detector-driven health, efficiency, and
// context-rot health into the single score shown as an agent's headline
// number, per calculate_health's 0.60/0.20/0.20 split.
func BlendOverall(detectorHealth, efficiency, rotHealth float64) float64 {
	return detectorHealth*blendWeightDetector + efficiency*blendWeightEffic + rotHealth*blendWeightRotHealth
}

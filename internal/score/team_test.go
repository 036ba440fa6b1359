package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kylesnowschwartz/agentwatch/internal/detect"
)

// TestCalculateTeamHealth_CrossAgentWarningsDeductFromScore pins spec
// scenario S2: three reports {root=90, sub1=30, sub2=25}. The pre-penalty
// weighted average is 58.75 (90*0.5 + 27.5*0.5); team_cascade_failure
// (HIGH, -30) fires because both subagents score below 60, and
// subagent_distress (MEDIUM, -15) also fires because the root is healthy
// (>=80) while a subagent is critical (<40) — matching
// original_source/tests/test_teams.py::test_cross_agent_penalty_applied's
// "58 - 30 = 28 ... 28 - 15 = 13" deduction chain.
func TestCalculateTeamHealth_CrossAgentWarningsDeductFromScore(t *testing.T) {
	reports := map[int32]HealthReport{
		1: {Overall: 90},
		2: {Overall: 30},
		3: {Overall: 25},
	}
	team := CalculateTeamHealth(1, reports)

	var signals []string
	for _, w := range team.Warnings {
		signals = append(signals, w.Signal)
	}
	assert.Contains(t, signals, "team_cascade_failure")
	assert.Contains(t, signals, "subagent_distress")

	assert.Less(t, team.Overall, 58.0)
	assert.InDelta(t, 13.75, team.Overall, 0.01)
}

func TestCalculateTeamHealth_ScoreNeverNegative(t *testing.T) {
	reports := map[int32]HealthReport{
		1: {Overall: 85},
		2: {Overall: 0},
		3: {Overall: 0},
		4: {Overall: 0},
	}
	team := CalculateTeamHealth(1, reports)
	assert.GreaterOrEqual(t, team.Overall, 0.0)
}

func TestCalculateTeamHealth_NoWarningsLeavesScoreUnpenalized(t *testing.T) {
	reports := map[int32]HealthReport{
		1: {Overall: 90},
		2: {Overall: 85},
	}
	team := CalculateTeamHealth(1, reports)
	assert.Empty(t, team.Warnings)
	assert.InDelta(t, 87.5, team.Overall, 0.01)
}

func TestCalculateTeamHealth_WarningSeverityImpactsAreAdditive(t *testing.T) {
	// Sanity check that the deduction is a straight sum, not a max/clamp
	// per-warning.
	reports := map[int32]HealthReport{1: {Overall: 100}}
	base := CalculateTeamHealth(1, reports).Overall
	assert.Equal(t, 100.0, base)

	withPenalty := base
	withPenalty -= detect.SeverityHigh.ScoreImpact()
	withPenalty -= detect.SeverityMedium.ScoreImpact()
	assert.Equal(t, 55.0, withPenalty)
}

package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionMaturityFactor_Boundaries(t *testing.T) {
	assert.Equal(t, 0.0, SessionMaturityFactor(0, false, 0))
	assert.Equal(t, 1.0, SessionMaturityFactor(10, false, 0), "ramp_turns reached with no edit still saturates")
	assert.Equal(t, 1.0, SessionMaturityFactor(1, true, 0), "a single edit anywhere saturates immediately")
	assert.InDelta(t, 0.5, SessionMaturityFactor(5, false, 0), 0.001)
}

func TestSessionMaturityFactor_ExplorationTurnsSaturateEarly(t *testing.T) {
	assert.Equal(t, 1.0, SessionMaturityFactor(2, false, maturityExplorationTurns),
		"3+ exploration turns with no edit still saturates immediately")
	assert.Equal(t, 1.0, SessionMaturityFactor(1, false, maturityExplorationTurns+5))
	assert.Less(t, SessionMaturityFactor(2, false, maturityExplorationTurns-1), 1.0,
		"fewer than 3 exploration turns falls back to the ramp")
}

func TestScaledActionWindow_ClampsToBounds(t *testing.T) {
	assert.Equal(t, actionWindowBase, ScaledActionWindow(0))
	assert.Equal(t, actionWindowCap, ScaledActionWindow(10000))
	assert.Equal(t, 50, ScaledActionWindow(200))
}

func TestScaledTurnWindow_ClampsToBounds(t *testing.T) {
	assert.Equal(t, turnWindowBase, ScaledTurnWindow(0))
	assert.Equal(t, turnWindowCap, ScaledTurnWindow(1000))
}

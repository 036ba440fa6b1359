package detect

// Adaptive window sizing: detectors that look back over recent actions
// or turns widen their lookback as a session grows, so a long-running
// agent isn't judged against a window sized for a five-minute session.
// Ported from original_source/detectors/health/_window.py.

const (
	actionWindowBase     = 20
	actionWindowFraction = 0.15
	actionWindowCap      = 100

	turnWindowBase     = 8
	turnWindowFraction = 0.20
	turnWindowCap      = 30

	maturityRampTurns        = 10
	maturityExplorationTurns = 3
)

// ScaledActionWindow returns how many recent actions a detector should
// consider, growing with total action count but capped.
func ScaledActionWindow(totalActions int) int {
	w := actionWindowBase + int(float64(totalActions)*actionWindowFraction)
	if w > actionWindowCap {
		return actionWindowCap
	}
	if w < actionWindowBase {
		return actionWindowBase
	}
	return w
}

// ScaledTurnWindow returns how many recent turns a detector should
// consider, growing with total turn count but capped.
func ScaledTurnWindow(totalTurns int) int {
	w := turnWindowBase + int(float64(totalTurns)*turnWindowFraction)
	if w > turnWindowCap {
		return turnWindowCap
	}
	if w < turnWindowBase {
		return turnWindowBase
	}
	return w
}

// SessionMaturityFactor dampens early-session findings: a session still
// in its first turns with no file edit yet is still finding its feet, so
// goal/progress detectors should weigh their own findings less. The
// factor jumps to 1.0 (full weight) immediately if any file has been
// edited, or if explorationTurns (turns that read/searched without
// editing) has reached maturityExplorationTurns — three or more turns of
// deliberate code exploration are themselves evidence the agent has
// moved past a cold start, per original_source/detectors/health/_window.py's
// session_maturity_factor. Short of either, the factor ramps linearly up
// to 1.0 over maturityRampTurns turns.
func SessionMaturityFactor(turnCount int, hasEditedFile bool, explorationTurns int) float64 {
	if hasEditedFile || turnCount >= maturityRampTurns || explorationTurns >= maturityExplorationTurns {
		return 1.0
	}
	return float64(turnCount) / float64(maturityRampTurns)
}

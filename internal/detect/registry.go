package detect

import (
	"github.com/rs/zerolog/log"

	"github.com/kylesnowschwartz/agentwatch/internal/logformat"
)

// Mode selects which detector families a Registry runs.
type Mode string

const (
	ModeHealth   Mode = "health"
	ModeSecurity Mode = "security"
	ModeAll      Mode = "all"
)

// Detector inspects the current action window and cumulative stats,
// returning zero or more Warnings.
type Detector func(buf *logformat.ActionBuffer, stats logformat.SessionStats) []Warning

// registration pairs a detector with metadata used for mode filtering
// and the list-detectors CLI surface.
type registration struct {
	name     string
	category Category
	fn       Detector
}

// Registry runs a fixed set of detectors over an ActionBuffer, isolating
// callers from a single misbehaving detector: a panicking detector is
// recovered, logged, and simply contributes no warnings for that tick,
// rather than taking down the whole scoring pass.
type Registry struct {
	regs []registration
}

// NewRegistry builds a Registry containing every built-in detector
// (health and security). Callers pick which subset actually runs via
// Run's mode argument.
func NewRegistry() *Registry {
	r := &Registry{}
	r.register("progress_stall", CategoryProgress, detectProgressStall)
	r.register("tool_thrash", CategoryProgress, detectToolThrash)
	r.register("error_loop", CategoryErrors, detectErrorLoop)
	r.register("bash_failure_cluster", CategoryErrors, detectBashFailureCluster)
	r.register("flaky_test_loop", CategoryErrors, detectFlakyTestLoop)
	r.register("context_pressure", CategoryContext, detectContextPressure)
	r.register("context_rot", CategoryContext, detectContextRot)
	r.register("rediscovery", CategoryContext, detectRediscovery)
	r.register("goal_drift", CategoryGoal, detectGoalDrift)

	r.register("credential_exposure", CategoryCredential, detectCredentialExposure)
	r.register("prompt_injection", CategoryInjection, detectPromptInjection)
	r.register("data_exfiltration", CategoryExfiltration, detectDataExfiltration)
	r.register("privilege_escalation", CategoryPrivilege, detectPrivilegeEscalation)
	r.register("suspicious_network", CategoryNetwork, detectSuspiciousNetwork)
	r.register("supply_chain_risk", CategorySupplyChain, detectSupplyChainRisk)
	return r
}

func (r *Registry) register(name string, cat Category, fn Detector) {
	r.regs = append(r.regs, registration{name: name, category: cat, fn: fn})
}

// Names lists every registered detector name, in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.regs))
	for _, reg := range r.regs {
		names = append(names, reg.name)
	}
	return names
}

// DetectorInfo is one row of the list-detectors output.
type DetectorInfo struct {
	Name     string
	Category Category
}

// Describe lists every registered detector's name and category.
func (r *Registry) Describe() []DetectorInfo {
	out := make([]DetectorInfo, 0, len(r.regs))
	for _, reg := range r.regs {
		out = append(out, DetectorInfo{Name: reg.name, Category: reg.category})
	}
	return out
}

// Run executes every detector matching mode against buf/stats, isolating
// panics per-detector.
func (r *Registry) Run(mode Mode, buf *logformat.ActionBuffer, stats logformat.SessionStats) []Warning {
	var warnings []Warning
	for _, reg := range r.regs {
		if !matchesMode(reg.category, mode) {
			continue
		}
		warnings = append(warnings, r.runOne(reg, buf, stats)...)
	}
	return warnings
}

func (r *Registry) runOne(reg registration, buf *logformat.ActionBuffer, stats logformat.SessionStats) (out []Warning) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Debug().Interface("panic", rec).Str("detector", reg.name).Msg("detector panicked, skipping")
			out = nil
		}
	}()
	return reg.fn(buf, stats)
}

func matchesMode(cat Category, mode Mode) bool {
	switch mode {
	case ModeAll:
		return true
	case ModeHealth:
		return cat.IsHealth()
	case ModeSecurity:
		return cat.IsSecurity()
	default:
		return false
	}
}

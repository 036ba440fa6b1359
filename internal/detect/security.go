package detect

import (
	"regexp"
	"strings"

	"github.com/kylesnowschwartz/agentwatch/internal/logformat"
)

// credentialPatterns match command/file-path text that looks like a
// secret being read or handled directly, rather than through an
// environment variable or secrets manager.
var credentialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bAKIA[0-9A-Z]{16}\b`),
	regexp.MustCompile(`(?i)-----BEGIN (RSA|EC|OPENSSH|DSA) PRIVATE KEY-----`),
	regexp.MustCompile(`(?i)\.env\b`),
	regexp.MustCompile(`(?i)id_rsa\b`),
	regexp.MustCompile(`(?i)\bsk-[a-zA-Z0-9]{20,}\b`),
}

// detectCredentialExposure flags commands or file reads that touch
// likely-secret material.
func detectCredentialExposure(buf *logformat.ActionBuffer, stats logformat.SessionStats) []Warning {
	var warnings []Warning
	for _, a := range buf.Last(ScaledActionWindow(stats.ActionCount)) {
		text := a.Command + " " + a.FilePath
		for _, pat := range credentialPatterns {
			if pat.MatchString(text) {
				warnings = append(warnings, Warning{
					Signal:     "credential_exposure",
					Category:   CategoryCredential,
					Severity:   SeverityHigh,
					Message:    "action touched what looks like credential material: " + truncate(text, 160),
					Suggestion: "confirm the agent isn't exfiltrating or logging a secret",
					Details:    map[string]any{"match": pat.String()},
				})
				break
			}
		}
	}
	return warnings
}

// injectionMarkers are phrases that, appearing in a message the agent
// received from tool output or a subagent (rather than the user),
// suggest an attempt to hijack the agent's instructions.
var injectionMarkers = []string{
	"ignore previous instructions",
	"ignore all previous",
	"disregard your instructions",
	"you are now",
	"new instructions:",
	"system prompt:",
}

func detectPromptInjection(buf *logformat.ActionBuffer, stats logformat.SessionStats) []Warning {
	var warnings []Warning
	for _, a := range buf.Last(ScaledActionWindow(stats.ActionCount)) {
		if a.IncomingMessage == "" {
			continue
		}
		lower := strings.ToLower(a.IncomingMessage)
		for _, marker := range injectionMarkers {
			if strings.Contains(lower, marker) {
				warnings = append(warnings, Warning{
					Signal:     "prompt_injection",
					Category:   CategoryInjection,
					Severity:   SeverityCritical,
					Message:    "incoming content contains an instruction-override phrase: " + marker,
					Suggestion: "treat tool output as untrusted data, not instructions",
					Details:    map[string]any{"marker": marker},
				})
				break
			}
		}
	}
	return warnings
}

// exfiltrationHosts are destinations where outgoing data is unusual
// enough to warrant a look — paste bins, raw IP literals, etc. This is
// a starter list, not exhaustive; the contract is the category and
// severity, not this exact set.
var exfiltrationHostPattern = regexp.MustCompile(`(?i)pastebin\.com|transfer\.sh|ngrok\.io|requestbin|webhook\.site`)

func detectDataExfiltration(buf *logformat.ActionBuffer, stats logformat.SessionStats) []Warning {
	var warnings []Warning
	for _, a := range buf.Last(ScaledActionWindow(stats.ActionCount)) {
		if a.OutgoingData == "" && a.NetworkHost == "" {
			continue
		}
		if exfiltrationHostPattern.MatchString(a.NetworkHost) {
			warnings = append(warnings, Warning{
				Signal:     "exfiltration_host",
				Category:   CategoryExfiltration,
				Severity:   SeverityCritical,
				Message:    "outgoing request to a known data-drop host: " + a.NetworkHost,
				Suggestion: "block the request and review what data was sent",
				Details:    map[string]any{"host": a.NetworkHost},
			})
			continue
		}
		if len(a.OutgoingData) > 4096 && a.NetworkHost != "" {
			warnings = append(warnings, Warning{
				Signal:     "exfiltration_volume",
				Category:   CategoryExfiltration,
				Severity:   SeverityMedium,
				Message:    "large outgoing payload to an external host",
				Suggestion: "verify this transfer was expected",
				Details:    map[string]any{"bytes": len(a.OutgoingData), "host": a.NetworkHost},
			})
		}
	}
	return warnings
}

var privilegeCommandPattern = regexp.MustCompile(`(?i)\bsudo\b|\bchmod\s+777\b|\bsetuid\b|/etc/(sudoers|passwd|shadow)\b`)

func detectPrivilegeEscalation(buf *logformat.ActionBuffer, stats logformat.SessionStats) []Warning {
	var warnings []Warning
	for _, a := range buf.Last(ScaledActionWindow(stats.ActionCount)) {
		if !a.IsBash() || a.Command == "" {
			continue
		}
		if privilegeCommandPattern.MatchString(a.Command) {
			warnings = append(warnings, Warning{
				Signal:     "privilege_escalation",
				Category:   CategoryPrivilege,
				Severity:   SeverityHigh,
				Message:    "command requests elevated privileges: " + truncate(a.Command, 160),
				Suggestion: "confirm this was requested by the operator, not inferred by the agent",
				Details:    map[string]any{"command": a.Command},
			})
		}
	}
	return warnings
}

func detectSuspiciousNetwork(buf *logformat.ActionBuffer, stats logformat.SessionStats) []Warning {
	var warnings []Warning
	hostCounts := make(map[string]int)
	for _, a := range buf.NetworkActions() {
		if a.NetworkHost != "" {
			hostCounts[a.NetworkHost]++
		}
	}
	if len(hostCounts) > 15 {
		warnings = append(warnings, Warning{
			Signal:     "suspicious_network",
			Category:   CategoryNetwork,
			Severity:   SeverityMedium,
			Message:    "agent has contacted an unusually large number of distinct hosts this session",
			Suggestion: "review the list of contacted hosts for anything unexpected",
			Details:    map[string]any{"distinct_hosts": len(hostCounts)},
		})
	}
	return warnings
}

var installCommandPattern = regexp.MustCompile(`(?i)\bpip install\b|\bnpm install\b|\byarn add\b|\bgo install\b|\bgem install\b|\bcargo add\b`)

func detectSupplyChainRisk(buf *logformat.ActionBuffer, stats logformat.SessionStats) []Warning {
	var warnings []Warning
	for _, a := range buf.Last(ScaledActionWindow(stats.ActionCount)) {
		if a.SkillName != "" {
			warnings = append(warnings, Warning{
				Signal:     "supply_chain_skill",
				Category:   CategorySupplyChain,
				Severity:   SeverityMedium,
				Message:    "agent loaded an external skill/plugin: " + a.SkillName,
				Suggestion: "verify the skill source is trusted before it runs again",
				Details:    map[string]any{"skill": a.SkillName},
			})
		}
		if a.IsBash() && installCommandPattern.MatchString(a.Command) {
			warnings = append(warnings, Warning{
				Signal:     "supply_chain_install",
				Category:   CategorySupplyChain,
				Severity:   SeverityLow,
				Message:    "agent installed a new dependency: " + truncate(a.Command, 160),
				Suggestion: "check the installed package is a known, intended dependency",
				Details:    map[string]any{"command": a.Command},
			})
		}
	}
	return warnings
}

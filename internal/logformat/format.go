package logformat

import (
	"encoding/json"
)

// Format identifies which log adapter applies to a session file.
type Format string

const (
	FormatClaudeCode Format = "claude-code"
	FormatGeneric    Format = "generic"
	FormatSkip       Format = "skip"
)

// DetectFormat inspects one decoded JSONL line and reports which adapter
// understands it. Detection is sticky per file: callers detect once from
// the first parseable line and reuse the verdict, the same way the
// original implementation's LogWatcher caches _log_format after the
// first successful detection rather than re-sniffing every line.
func DetectFormat(line []byte) Format {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(line, &raw); err != nil {
		return FormatSkip
	}
	if DetectClaudeCode(raw) {
		return FormatClaudeCode
	}
	if _, ok := raw["tool"]; ok {
		return FormatGeneric
	}
	if _, ok := raw["tool_name"]; ok {
		return FormatGeneric
	}
	return FormatSkip
}

// genericEntry is a best-effort shape for non-Claude-Code agent logs that
// report one completed tool call per line (the common case across
// Codex/Gemini/OpenCode-style CLIs, as opposed to Claude Code's
// split tool_use/tool_result-across-two-lines shape).
type genericEntry struct {
	Timestamp    string `json:"timestamp"`
	Tool         string `json:"tool"`
	ToolName     string `json:"tool_name"`
	Success      *bool  `json:"success"`
	Error        string `json:"error"`
	FilePath     string `json:"file_path"`
	Command      string `json:"command"`
	TokensIn     int    `json:"tokens_in"`
	TokensOut    int    `json:"tokens_out"`
	DurationMs   int64  `json:"duration_ms"`
	NetworkHost  string `json:"network_host"`
	NetworkPort  int    `json:"network_port"`
	UserID       string `json:"user_id"`
	SkillName    string `json:"skill_name"`
}

// ParseGenericLine parses one line of a generic single-line-per-action
// log format into zero or one Action.
func ParseGenericLine(line []byte) (Action, bool) {
	var e genericEntry
	if err := json.Unmarshal(line, &e); err != nil {
		return Action{}, false
	}
	name := e.Tool
	if name == "" {
		name = e.ToolName
	}
	if name == "" {
		return Action{}, false
	}

	success := true
	if e.Success != nil {
		success = *e.Success
	} else if e.Error != "" {
		success = false
	}

	return Action{
		Timestamp:    parseClaudeTimestamp(e.Timestamp),
		ToolName:     name,
		ToolKind:     CategorizeToolName(name),
		Success:      success,
		FilePath:     e.FilePath,
		Command:      e.Command,
		ErrorMessage: e.Error,
		TokensIn:     e.TokensIn,
		TokensOut:    e.TokensOut,
		DurationMs:   e.DurationMs,
		NetworkHost:  e.NetworkHost,
		NetworkPort:  e.NetworkPort,
		UserID:       e.UserID,
		SkillName:    e.SkillName,
	}, true
}

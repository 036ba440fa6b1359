package logformat

import (
	"encoding/json"
	"strings"
	"time"
)

// claudeEntry is the on-disk shape of one line of a Claude Code session
// JSONL transcript. Field set mirrors the teacher's parser.Entry plus the
// toolUseResult/sourceToolUseId fields the teacher's subagent linking
// depends on but its own entry.go never declared explicitly.
type claudeEntry struct {
	Type            string          `json:"type"`
	UUID            string          `json:"uuid"`
	ParentUUID      *string         `json:"parentUuid"`
	Timestamp       string          `json:"timestamp"`
	IsSidechain     bool            `json:"isSidechain"`
	IsMeta          bool            `json:"isMeta"`
	Message         *claudeMessage  `json:"message"`
	ToolUseResult   json.RawMessage `json:"toolUseResult"`
	SourceToolUseID string          `json:"sourceToolUseId"`
	CWD             string          `json:"cwd"`
}

type claudeMessage struct {
	Role       string          `json:"role"`
	Content    json.RawMessage `json:"content"`
	Model      string          `json:"model"`
	StopReason *string         `json:"stop_reason"`
	Usage      *claudeUsage    `json:"usage"`
	ID         string          `json:"id"`
}

type claudeUsage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
}

// claudeContentBlock is one element of a message's content array.
type claudeContentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	ToolUseID string          `json:"tool_use_id"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Input     json.RawMessage `json:"input"`
	Content   json.RawMessage `json:"content"`
	IsError   *bool           `json:"is_error"`
}

type pendingToolUse struct {
	timestamp time.Time
	toolName  string
	toolKind  ToolKind
	filePath  string
	command   string
	tokensIn  int
}

// ClaudeCodeAdapter converts a stream of Claude Code JSONL lines into
// Actions. Tool invocations (tool_use blocks) and their results
// (tool_result blocks, arriving on a later line) are correlated by
// tool_use id and emitted as a single Action once the result is seen, or
// flushed unmatched via Flush at end of stream.
type ClaudeCodeAdapter struct {
	pending map[string]pendingToolUse
}

func NewClaudeCodeAdapter() *ClaudeCodeAdapter {
	return &ClaudeCodeAdapter{pending: make(map[string]pendingToolUse)}
}

// DetectClaudeCode reports whether a decoded JSON object looks like a
// Claude Code transcript entry (has a recognized "type" and a "uuid").
func DetectClaudeCode(raw map[string]json.RawMessage) bool {
	var typ string
	if v, ok := raw["type"]; ok {
		_ = json.Unmarshal(v, &typ)
	}
	_, hasUUID := raw["uuid"]
	switch typ {
	case "user", "assistant", "summary", "system":
		return hasUUID
	}
	return false
}

// ProcessLine parses one JSONL line and returns any Actions it completes.
// A single line can complete more than one Action (an assistant entry with
// several tool_use blocks whose results were already buffered, or a user
// entry with several tool_result blocks).
func (a *ClaudeCodeAdapter) ProcessLine(line []byte) []Action {
	var e claudeEntry
	if err := json.Unmarshal(line, &e); err != nil || e.UUID == "" {
		return nil
	}
	if e.IsSidechain || e.Message == nil {
		return nil
	}

	ts := parseClaudeTimestamp(e.Timestamp)

	var blocks []claudeContentBlock
	if len(e.Message.Content) > 0 {
		_ = json.Unmarshal(e.Message.Content, &blocks)
	}

	var out []Action
	for _, b := range blocks {
		switch b.Type {
		case "tool_use":
			kind := CategorizeToolName(b.Name)
			p := pendingToolUse{
				timestamp: ts,
				toolName:  b.Name,
				toolKind:  kind,
				filePath:  extractFilePath(b.Input),
				command:   extractCommand(b.Input),
			}
			if e.Message.Usage != nil {
				p.tokensIn = e.Message.Usage.InputTokens
			}
			a.pending[b.ID] = p
		case "tool_result":
			id := b.ToolUseID
			if id == "" {
				id = e.SourceToolUseID
			}
			p, ok := a.pending[id]
			if !ok {
				continue
			}
			delete(a.pending, id)
			out = append(out, buildAction(p, b, ts))
		}
	}
	return out
}

// Flush returns an Action for every tool_use that never received a
// matching tool_result (e.g. the agent process was killed mid-call), and
// clears pending state.
func (a *ClaudeCodeAdapter) Flush() []Action {
	var out []Action
	for id, p := range a.pending {
		out = append(out, Action{
			Timestamp: p.timestamp,
			ToolName:  p.toolName,
			ToolKind:  p.toolKind,
			Success:   false,
			FilePath:  p.filePath,
			Command:   p.command,
			TokensIn:  p.tokensIn,
			Raw:       map[string]any{"unmatched_tool_use_id": id},
		})
		delete(a.pending, id)
	}
	return out
}

func buildAction(p pendingToolUse, result claudeContentBlock, resultTS time.Time) Action {
	content := rawMessageToString(result.Content)
	success, errMsg := resolveSuccess(result.IsError, content)

	act := Action{
		Timestamp:    p.timestamp,
		ToolName:     p.toolName,
		ToolKind:     p.toolKind,
		Success:      success,
		FilePath:     p.filePath,
		Command:      p.command,
		ErrorMessage: errMsg,
		TokensIn:     p.tokensIn,
	}
	if !p.timestamp.IsZero() && !resultTS.IsZero() {
		act.DurationMs = resultTS.Sub(p.timestamp).Milliseconds()
	}
	if p.toolKind == ToolBash {
		act.OutgoingData = content
	}
	return act
}

// resolveSuccess determines whether a tool call succeeded. The explicit
// is_error field, when present in the entry, takes precedence over the
// "Error:" text-prefix heuristic — a tool can prefix its own successful
// output with the literal word "Error:" (e.g. printing a log line), and
// trusting the heuristic over an explicit flag produces false positives.
func resolveSuccess(isError *bool, content string) (bool, string) {
	if isError != nil {
		if *isError {
			return false, firstLine(content, 500)
		}
		return true, ""
	}
	if strings.HasPrefix(strings.TrimSpace(content), "Error:") {
		return false, firstLine(content, 500)
	}
	return true, ""
}

func firstLine(s string, max int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > max {
		s = s[:max]
	}
	return s
}

func rawMessageToString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	// Content can also be an array of blocks (e.g. [{"type":"text","text":"..."}]).
	var blocks []claudeContentBlock
	if err := json.Unmarshal(raw, &blocks); err == nil {
		var sb strings.Builder
		for _, b := range blocks {
			if b.Type == "text" {
				sb.WriteString(b.Text)
			}
		}
		return sb.String()
	}
	return string(raw)
}

func extractFilePath(input json.RawMessage) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(input, &fields); err != nil {
		return ""
	}
	for _, key := range []string{"file_path", "path", "notebook_path"} {
		if raw, ok := fields[key]; ok {
			var s string
			if json.Unmarshal(raw, &s) == nil {
				return s
			}
		}
	}
	return ""
}

func extractCommand(input json.RawMessage) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(input, &fields); err != nil {
		return ""
	}
	for _, key := range []string{"command", "cmd"} {
		if raw, ok := fields[key]; ok {
			var s string
			if json.Unmarshal(raw, &s) == nil {
				return s
			}
		}
	}
	return ""
}

func parseClaudeTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999999"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

package logformat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaudeCodeAdapter_ToolUseThenResult(t *testing.T) {
	a := NewClaudeCodeAdapter()

	useLine := []byte(`{"type":"assistant","uuid":"u1","timestamp":"2026-01-01T00:00:00Z",
		"message":{"role":"assistant","usage":{"input_tokens":10,"output_tokens":5},
		"content":[{"type":"tool_use","id":"tu1","name":"Read","input":{"file_path":"a.go"}}]}}`)
	actions := a.ProcessLine(useLine)
	assert.Empty(t, actions, "a lone tool_use produces no action until its result arrives")

	resultLine := []byte(`{"type":"user","uuid":"u2","timestamp":"2026-01-01T00:00:01Z",
		"message":{"role":"user",
		"content":[{"type":"tool_result","tool_use_id":"tu1","content":"file contents","is_error":false}]}}`)
	actions = a.ProcessLine(resultLine)
	require.Len(t, actions, 1)

	act := actions[0]
	assert.Equal(t, "Read", act.ToolName)
	assert.Equal(t, ToolRead, act.ToolKind)
	assert.True(t, act.Success)
	assert.Equal(t, "a.go", act.FilePath)
	assert.Equal(t, 10, act.TokensIn)
	assert.Equal(t, int64(1000), act.DurationMs)
}

func TestClaudeCodeAdapter_IsErrorTakesPrecedenceOverPrefixHeuristic(t *testing.T) {
	a := NewClaudeCodeAdapter()
	a.ProcessLine([]byte(`{"type":"assistant","uuid":"u1","timestamp":"2026-01-01T00:00:00Z",
		"message":{"role":"assistant","content":[{"type":"tool_use","id":"tu1","name":"Bash","input":{"command":"echo hi"}}]}}`))

	// Content literally starts with "Error:" but is_error is explicitly false:
	// the tool printed a log line, it did not fail.
	actions := a.ProcessLine([]byte(`{"type":"user","uuid":"u2","timestamp":"2026-01-01T00:00:01Z",
		"message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"tu1","content":"Error: this is just printed output","is_error":false}]}}`))
	require.Len(t, actions, 1)
	assert.True(t, actions[0].Success)
	assert.Empty(t, actions[0].ErrorMessage)
}

func TestClaudeCodeAdapter_ErrorPrefixHeuristicWhenIsErrorAbsent(t *testing.T) {
	a := NewClaudeCodeAdapter()
	a.ProcessLine([]byte(`{"type":"assistant","uuid":"u1","timestamp":"2026-01-01T00:00:00Z",
		"message":{"role":"assistant","content":[{"type":"tool_use","id":"tu1","name":"Bash","input":{"command":"false"}}]}}`))

	actions := a.ProcessLine([]byte(`{"type":"user","uuid":"u2","timestamp":"2026-01-01T00:00:01Z",
		"message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"tu1","content":"Error: command not found"}]}}`))
	require.Len(t, actions, 1)
	assert.False(t, actions[0].Success)
	assert.Equal(t, "Error: command not found", actions[0].ErrorMessage)
}

func TestClaudeCodeAdapter_FlushEmitsUnmatchedToolUse(t *testing.T) {
	a := NewClaudeCodeAdapter()
	a.ProcessLine([]byte(`{"type":"assistant","uuid":"u1","timestamp":"2026-01-01T00:00:00Z",
		"message":{"role":"assistant","content":[{"type":"tool_use","id":"tu1","name":"Bash","input":{"command":"sleep 100"}}]}}`))

	out := a.Flush()
	require.Len(t, out, 1)
	assert.False(t, out[0].Success)
	assert.Equal(t, "Bash", out[0].ToolName)
}

func TestClaudeCodeAdapter_UnparseableLineIsSkippedNotFatal(t *testing.T) {
	a := NewClaudeCodeAdapter()
	actions := a.ProcessLine([]byte(`not json at all`))
	assert.Nil(t, actions)
	actions = a.ProcessLine([]byte(`{"type":"summary","uuid":"","timestamp":""}`))
	assert.Nil(t, actions)
}

func TestDetectClaudeCode(t *testing.T) {
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(`{"type":"assistant","uuid":"u1"}`), &raw))
	assert.True(t, DetectClaudeCode(raw))

	raw = nil
	require.NoError(t, json.Unmarshal([]byte(`{"type":"summary"}`), &raw))
	assert.False(t, DetectClaudeCode(raw), "summary entries have no uuid in this fixture")

	raw = nil
	require.NoError(t, json.Unmarshal([]byte(`{"other":"shape"}`), &raw))
	assert.False(t, DetectClaudeCode(raw))
}

package score

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kylesnowschwartz/agentwatch/internal/detect"
	"github.com/kylesnowschwartz/agentwatch/internal/logformat"
)

func TestCalculateEfficiency_CleanBufferIsPerfect(t *testing.T) {
	buf := logformat.NewActionBuffer(50)
	for i := 0; i < 10; i++ {
		buf.Add(logformat.Action{Timestamp: time.Now(), ToolKind: logformat.ToolRead, Success: true, FilePath: "file" + string(rune('a'+i)) + ".go"})
	}
	report := CalculateEfficiency(buf, nil)
	assert.Equal(t, 100, report.Score)
	assert.Equal(t, "efficient", report.Status)
}

func TestCalculateEfficiency_DuplicateReadsPenalized(t *testing.T) {
	buf := logformat.NewActionBuffer(50)
	for i := 0; i < 10; i++ {
		buf.Add(logformat.Action{Timestamp: time.Now(), ToolKind: logformat.ToolRead, Success: true, FilePath: "same.go"})
	}
	report := CalculateEfficiency(buf, nil)
	assert.Less(t, report.Score, 100)
}

func TestCalculateEfficiency_ContextPressureWarningPenalizes(t *testing.T) {
	buf := logformat.NewActionBuffer(50)
	warnings := []detect.Warning{
		{Signal: "context_pressure", Category: detect.CategoryContext, Details: map[string]any{"usage_percent": 80.0}},
	}
	report := CalculateEfficiency(buf, warnings)
	assert.InDelta(t, 0.8, report.PressurePenalty, 0.001)
	assert.Less(t, report.Score, 100)
}

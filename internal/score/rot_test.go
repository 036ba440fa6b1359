package score

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kylesnowschwartz/agentwatch/internal/logformat"
)

func TestRotScorer_CleanSessionStaysLow(t *testing.T) {
	buf := logformat.NewActionBuffer(50)
	for i := 0; i < 10; i++ {
		buf.Add(logformat.Action{Timestamp: time.Now(), ToolKind: logformat.ToolEdit, Success: true, FilePath: "a.go"})
	}
	scorer := NewRotScorer()
	report := scorer.Score(buf, buf.Stats(), nil)

	assert.Less(t, report.Smoothed, 0.5)
}

func TestRotScorer_SmoothsAcrossTicks(t *testing.T) {
	buf := logformat.NewActionBuffer(50)
	for i := 0; i < 20; i++ {
		buf.Add(logformat.Action{Timestamp: time.Now(), ToolKind: logformat.ToolRead, Success: true, FilePath: "same.go"})
	}
	scorer := NewRotScorer()

	first := scorer.Score(buf, buf.Stats(), nil)
	second := scorer.Score(buf, buf.Stats(), nil)

	// Same input twice: the first call seeds the EMA with the raw
	// composite, so smoothing an identical composite leaves it unchanged.
	assert.InDelta(t, first.Composite, second.Composite, 0.0001)
	assert.InDelta(t, first.Smoothed, second.Smoothed, 0.0001)
}

func TestRotScorer_TopReasonsCapped(t *testing.T) {
	buf := logformat.NewActionBuffer(50)
	for i := 0; i < 20; i++ {
		buf.Add(logformat.Action{Timestamp: time.Now(), ToolKind: logformat.ToolRead, Success: true, FilePath: "same.go"})
	}
	scorer := NewRotScorer()
	report := scorer.Score(buf, buf.Stats(), nil)

	assert.LessOrEqual(t, len(report.Reasons), 3)
}

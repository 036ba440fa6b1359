package logformat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionBuffer_CapacityBoundary(t *testing.T) {
	buf := NewActionBuffer(5)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 6; i++ {
		buf.Add(Action{Timestamp: base.Add(time.Duration(i) * time.Minute), ToolName: "Read", ToolKind: ToolRead, Success: true, FilePath: "f.go"})
	}
	require.Equal(t, 5, buf.Len())
	require.LessOrEqual(t, buf.Len(), buf.Cap())

	actions := buf.Actions()
	require.Len(t, actions, 5)
	// The oldest surviving action is the second one added (index 1),
	// since capacity is 5 and 6 were added.
	assert.Equal(t, base.Add(1*time.Minute), actions[0].Timestamp)
	assert.Equal(t, base.Add(5*time.Minute), actions[4].Timestamp)
}

func TestActionBuffer_StatsAreCumulativeAcrossEviction(t *testing.T) {
	buf := NewActionBuffer(2)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	buf.Add(Action{Timestamp: base, ToolName: "Read", ToolKind: ToolRead, Success: false, ErrorMessage: "boom"})
	buf.Add(Action{Timestamp: base.Add(time.Minute), ToolName: "Read", ToolKind: ToolRead, Success: true})
	buf.Add(Action{Timestamp: base.Add(2 * time.Minute), ToolName: "Read", ToolKind: ToolRead, Success: true})

	// The first action (the error) has been evicted from the window...
	require.Equal(t, 2, buf.Len())
	// ...but SessionStats still reflects it: error_count never decreases,
	// and start_time is the very first action ever seen.
	assert.Equal(t, 1, buf.Stats().ErrorCount)
	assert.Equal(t, 3, buf.Stats().ActionCount)
	assert.Equal(t, base, buf.Stats().StartTime)
}

func TestActionBuffer_EmptyBufferQueries(t *testing.T) {
	buf := NewActionBuffer(10)
	assert.Empty(t, buf.Actions())
	assert.Empty(t, buf.Last(5))
	assert.Empty(t, buf.First(5))
	assert.Empty(t, buf.FilesInWindow(5))
	assert.Empty(t, buf.RecentErrors(5))
	assert.Empty(t, buf.ActionsByFile("x.go"))
	assert.Empty(t, buf.NetworkActions())
	assert.Zero(t, buf.Stats().ActionCount)
}

func TestActionBuffer_FileAccessCountIsCumulative(t *testing.T) {
	buf := NewActionBuffer(1)
	buf.Add(Action{ToolKind: ToolRead, Success: true, FilePath: "a.go"})
	buf.Add(Action{ToolKind: ToolRead, Success: true, FilePath: "a.go"})
	buf.Add(Action{ToolKind: ToolRead, Success: true, FilePath: "b.go"})

	// a.go has fallen out of the 1-capacity window, but its access count
	// is lifetime-cumulative, per spec's documented "lifetime within this
	// session" semantics.
	assert.Equal(t, 2, buf.FileAccessCount("a.go"))
	assert.Equal(t, 1, buf.FileAccessCount("b.go"))
}

func TestActionBuffer_NetworkActionsAndBashCommands(t *testing.T) {
	buf := NewActionBuffer(10)
	buf.Add(Action{ToolKind: ToolBash, Success: true, Command: "curl example.com:443", NetworkHost: "example.com", NetworkPort: 443})
	buf.Add(Action{ToolKind: ToolBash, Success: true, Command: "ls -la"})

	net := buf.NetworkActions()
	require.Len(t, net, 1)
	assert.Equal(t, "example.com", net[0].NetworkHost)

	cmds := buf.BashCommands(0)
	require.Len(t, cmds, 2)
	assert.Equal(t, "ls -la", cmds[1])
}

func TestActionBuffer_DefaultCapacity(t *testing.T) {
	buf := NewActionBuffer(0)
	assert.Equal(t, DefaultBufferCapacity, buf.Cap())
}

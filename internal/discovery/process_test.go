package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name    string
		cmdline string
		wantOK  bool
		wantKind AgentKind
	}{
		{"claude code cli", "node /usr/local/bin/claude --resume", true, KindClaudeCode},
		{"claude desktop app excluded", "/Applications/Claude.app/Contents/MacOS/Claude Helper", false, ""},
		{"claude-code-guide excluded", "python claude-code-guide.py", false, ""},
		{"aider", "python3 -m aider --model gpt-4", true, KindAider},
		{"codex", "codex --exec", true, KindCodex},
		{"unrelated shell", "/bin/zsh -l", false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind, ok := classify(tc.cmdline)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.wantKind, kind)
			}
		})
	}
}

func TestWalkToAncestorAgent(t *testing.T) {
	// pid 3's parent is 2, 2's parent is 1, 1's parent is 0. Only 1 is
	// an agent.
	ppidOf := map[int32]int32{3: 2, 2: 1, 1: 0}
	agentPIDs := map[int32]bool{1: true}

	assert.Equal(t, int32(1), walkToAncestorAgent(3, ppidOf, agentPIDs))
	assert.Equal(t, int32(0), walkToAncestorAgent(1, ppidOf, agentPIDs))
}

func TestWalkToAncestorAgent_CycleIsSafe(t *testing.T) {
	ppidOf := map[int32]int32{5: 6, 6: 5}
	agentPIDs := map[int32]bool{}

	assert.Equal(t, int32(0), walkToAncestorAgent(5, ppidOf, agentPIDs))
}

func TestComputeDepthsAndTeamIDs(t *testing.T) {
	agents := []AgentProcess{
		{PID: 1, ParentAgentPID: 0},
		{PID: 2, ParentAgentPID: 1},
		{PID: 3, ParentAgentPID: 2},
		{PID: 4, ParentAgentPID: 0},
	}
	computeDepths(agents)
	assignTeamIDs(agents)

	byPID := make(map[int32]AgentProcess, len(agents))
	for _, a := range agents {
		byPID[a.PID] = a
	}

	assert.Equal(t, 0, byPID[1].Depth)
	assert.Equal(t, 1, byPID[2].Depth)
	assert.Equal(t, 2, byPID[3].Depth)
	assert.Equal(t, 0, byPID[4].Depth)

	assert.Equal(t, int32(1), byPID[1].TeamID)
	assert.Equal(t, int32(1), byPID[2].TeamID)
	assert.Equal(t, int32(1), byPID[3].TeamID)
	assert.Equal(t, int32(4), byPID[4].TeamID)
}

func TestComputeDepths_OrphanedParentPromotedToRoot(t *testing.T) {
	// pid 2 claims pid 99 as its parent agent, but 99 doesn't exist in
	// the slice (it vanished between discovery passes). It should be
	// promoted to a root rather than left unresolved forever.
	agents := []AgentProcess{
		{PID: 2, ParentAgentPID: 99},
	}
	computeDepths(agents)
	assert.Equal(t, 0, agents[0].Depth)
	assert.Equal(t, int32(0), agents[0].ParentAgentPID)
}

func TestBuildAgentTree_PreorderSortedByPID(t *testing.T) {
	agents := []AgentProcess{
		{PID: 10, ParentAgentPID: 0},
		{PID: 5, ParentAgentPID: 0},
		{PID: 11, ParentAgentPID: 5},
		{PID: 6, ParentAgentPID: 5},
	}
	tree := BuildAgentTree(agents)

	var pids []int32
	for _, a := range tree {
		pids = append(pids, a.PID)
	}
	// roots in pid order (5, 10); 5's children (6, 11) follow immediately
	// after it, depth-first.
	assert.Equal(t, []int32{5, 6, 11, 10}, pids)
}

func TestBuildTeams_GroupsByRootAndOrdersByPID(t *testing.T) {
	agents := []AgentProcess{
		{PID: 1, ParentAgentPID: 0, Kind: KindClaudeCode, WorkingDirectory: "/repo/a"},
		{PID: 2, ParentAgentPID: 1, Kind: KindClaudeCode, WorkingDirectory: "/repo/a"},
		{PID: 9, ParentAgentPID: 0, Kind: KindAider, WorkingDirectory: "/repo/b"},
	}
	computeDepths(agents)
	assignTeamIDs(agents)
	teams := BuildTeams(agents)

	if assert.Len(t, teams, 2) {
		assert.Equal(t, int32(1), teams[0].TeamID)
		assert.Equal(t, 1, teams[0].SubagentCount())
		assert.Equal(t, 1, teams[0].MaxDepth())
		assert.Equal(t, int32(9), teams[1].TeamID)
		assert.Equal(t, 0, teams[1].SubagentCount())
	}
}

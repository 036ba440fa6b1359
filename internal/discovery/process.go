// Package discovery finds running AI coding agent processes on the local
// machine and reconstructs the parent/child team graph between them.
package discovery

import (
	"context"
	"regexp"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/process"
)

// AgentKind identifies which agent CLI a process belongs to.
type AgentKind string

const (
	KindClaudeCode AgentKind = "claude-code"
	KindAider      AgentKind = "aider"
	KindCodex      AgentKind = "codex"
)

type agentPattern struct {
	kind    AgentKind
	match   *regexp.Regexp
	exclude *regexp.Regexp
}

// agentPatterns is the process-classification table: a process whose
// command line matches match (and does not match exclude, if set) is a
// discovered agent of that kind. Ported verbatim from
// original_source/discovery.py's AGENT_PATTERNS.
var agentPatterns = []agentPattern{
	{
		kind:    KindClaudeCode,
		match:   regexp.MustCompile(`\bclaude\b`),
		exclude: regexp.MustCompile(`Claude\.app|Claude Helper|claude-code-guide|shell-snapshots`),
	},
	{
		kind:  KindAider,
		match: regexp.MustCompile(`\baider\b`),
	},
	{
		kind:  KindCodex,
		match: regexp.MustCompile(`\bcodex\b`),
	},
}

// maxAncestorHops bounds the ppid walk so a corrupted or cyclic process
// table (a pid reparented to itself, or a PID reused mid-walk) can never
// spin forever looking for an ancestor agent.
const maxAncestorHops = 50

// AgentProcess represents one running AI agent process.
type AgentProcess struct {
	PID              int32
	Kind             AgentKind
	WorkingDirectory string
	LogFile          string
	SessionID        string
	LogAttribution   string // "" | "open_fd" | "mtime_fallback"
	CPUPercent       float64
	MemoryMB         float64
	Uptime           time.Duration
	Command          string
	ParentPID        int32 // raw OS ppid
	ParentAgentPID   int32 // nearest ancestor pid that is also a discovered agent, 0 if none
	Depth            int   // 0 = root, 1 = subagent, ...
	TeamID           int32 // pid of the root ancestor
}

func (a AgentProcess) ProjectName() string { return resolveProjectName(a.WorkingDirectory) }
func (a AgentProcess) IsRoot() bool        { return a.Depth == 0 }
func (a AgentProcess) IsSubagent() bool    { return a.Depth > 0 }

// AgentTeam groups an agent tree (root + all descendants) sharing a
// common root ancestor.
type AgentTeam struct {
	TeamID  int32
	Root    AgentProcess
	Members []AgentProcess
}

func (t AgentTeam) Name() string {
	return string(t.Root.Kind) + ":" + t.Root.ProjectName()
}

func (t AgentTeam) SubagentCount() int {
	n := 0
	for _, m := range t.Members {
		if m.IsSubagent() {
			n++
		}
	}
	return n
}

func (t AgentTeam) MaxDepth() int {
	max := 0
	for _, m := range t.Members {
		if m.Depth > max {
			max = m.Depth
		}
	}
	return max
}

// FindRunningAgents enumerates local processes and returns every one that
// matches a known agent pattern, with parent/child/team relationships
// resolved. Any single process's detail lookup (cwd, cmdline) failing is
// non-fatal — that process is simply skipped, matching spec's policy
// that OS-interaction failures degrade gracefully rather than abort.
func FindRunningAgents(ctx context.Context) ([]AgentProcess, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	ppidOf := make(map[int32]int32, len(procs))
	cmdlineOf := make(map[int32]string, len(procs))
	for _, p := range procs {
		ppid, err := p.PpidWithContext(ctx)
		if err != nil {
			continue
		}
		ppidOf[p.Pid] = ppid
		if cmd, err := p.CmdlineWithContext(ctx); err == nil {
			cmdlineOf[p.Pid] = cmd
		}
	}

	var agents []AgentProcess
	for _, p := range procs {
		cmd, ok := cmdlineOf[p.Pid]
		if !ok || cmd == "" {
			continue
		}
		kind, matched := classify(cmd)
		if !matched {
			continue
		}

		cwd, err := p.CwdWithContext(ctx)
		if err != nil || cwd == "" {
			continue
		}

		cpuPct, err := p.CPUPercentWithContext(ctx)
		if err != nil {
			cpuPct = 0
		}
		memInfo, err := p.MemoryInfoWithContext(ctx)
		var memMB float64
		if err == nil && memInfo != nil {
			memMB = float64(memInfo.RSS) / (1024 * 1024)
		}
		createMs, err := p.CreateTimeWithContext(ctx)
		var uptime time.Duration
		if err == nil && createMs > 0 {
			uptime = time.Since(time.UnixMilli(createMs))
		}

		agent := AgentProcess{
			PID:              p.Pid,
			Kind:             kind,
			WorkingDirectory: cwd,
			CPUPercent:       cpuPct,
			MemoryMB:         memMB,
			Uptime:           uptime,
			Command:          cmd,
			ParentPID:        ppidOf[p.Pid],
		}

		switch kind {
		case KindClaudeCode:
			agent.LogFile, agent.SessionID, agent.LogAttribution = resolveClaudeCodeLog(cwd, p.Pid)
		case KindAider:
			agent.LogFile, agent.SessionID = resolveAiderLog(cwd)
		}

		agents = append(agents, agent)
	}

	agentPIDs := make(map[int32]bool, len(agents))
	for _, a := range agents {
		agentPIDs[a.PID] = true
	}
	for i := range agents {
		if ancestor := walkToAncestorAgent(agents[i].PID, ppidOf, agentPIDs); ancestor != 0 {
			agents[i].ParentAgentPID = ancestor
		}
	}

	computeDepths(agents)
	assignTeamIDs(agents)

	log.Debug().Int("count", len(agents)).Msg("discovered agent processes")
	return agents, nil
}

func classify(cmdline string) (AgentKind, bool) {
	for _, pat := range agentPatterns {
		if !pat.match.MatchString(cmdline) {
			continue
		}
		if pat.exclude != nil && pat.exclude.MatchString(cmdline) {
			continue
		}
		return pat.kind, true
	}
	return "", false
}

// walkToAncestorAgent walks the ppid chain upward from pid looking for
// the nearest ancestor that is itself a discovered agent, traversing
// through intermediate non-agent processes (shells, node workers, etc).
// Returns 0 if no ancestor is an agent, hops exceed maxAncestorHops, or a
// cycle is detected.
func walkToAncestorAgent(pid int32, ppidOf map[int32]int32, agentPIDs map[int32]bool) int32 {
	visited := map[int32]bool{pid: true}
	current, ok := ppidOf[pid]
	hops := 0
	for ok && !visited[current] && hops < maxAncestorHops {
		if agentPIDs[current] {
			return current
		}
		visited[current] = true
		next, hasNext := ppidOf[current]
		if !hasNext {
			break
		}
		current = next
		ok = hasNext
		hops++
	}
	return 0
}

// computeDepths sets Depth on each agent via fixpoint iteration: roots
// (no parent agent) are 0, everyone else is their resolved parent's depth
// + 1. Agents whose parent chain never bottoms out at a resolved root
// (e.g. a parent agent pid that vanished mid-scan) are promoted to roots
// rather than left unresolved.
func computeDepths(agents []AgentProcess) {
	byPID := make(map[int32]*AgentProcess, len(agents))
	for i := range agents {
		byPID[agents[i].PID] = &agents[i]
	}

	resolved := make(map[int32]bool, len(agents))
	for i := range agents {
		if agents[i].ParentAgentPID == 0 {
			agents[i].Depth = 0
			resolved[agents[i].PID] = true
		}
	}

	for changed := true; changed; {
		changed = false
		for i := range agents {
			if resolved[agents[i].PID] {
				continue
			}
			parent, ok := byPID[agents[i].ParentAgentPID]
			if ok && resolved[parent.PID] {
				agents[i].Depth = parent.Depth + 1
				resolved[agents[i].PID] = true
				changed = true
			}
		}
	}

	for i := range agents {
		if !resolved[agents[i].PID] {
			agents[i].ParentAgentPID = 0
			agents[i].Depth = 0
		}
	}
}

func assignTeamIDs(agents []AgentProcess) {
	byPID := make(map[int32]*AgentProcess, len(agents))
	for i := range agents {
		byPID[agents[i].PID] = &agents[i]
	}
	for i := range agents {
		if agents[i].IsRoot() {
			agents[i].TeamID = agents[i].PID
			continue
		}
		current := &agents[i]
		for current.ParentAgentPID != 0 {
			parent, ok := byPID[current.ParentAgentPID]
			if !ok {
				break
			}
			current = parent
		}
		agents[i].TeamID = current.PID
	}
}

// BuildAgentTree sorts agents into parent-before-children, pid-sorted
// preorder — the display order for the "ps" CLI tree view.
func BuildAgentTree(agents []AgentProcess) []AgentProcess {
	byParent := make(map[int32][]AgentProcess)
	for _, a := range agents {
		byParent[a.ParentAgentPID] = append(byParent[a.ParentAgentPID], a)
	}
	for k := range byParent {
		children := byParent[k]
		for i := 1; i < len(children); i++ {
			for j := i; j > 0 && children[j-1].PID > children[j].PID; j-- {
				children[j-1], children[j] = children[j], children[j-1]
			}
		}
		byParent[k] = children
	}

	var result []AgentProcess
	var walk func(parent int32)
	walk = func(parent int32) {
		for _, a := range byParent[parent] {
			result = append(result, a)
			walk(a.PID)
		}
	}
	walk(0)
	return result
}

// BuildTeams groups agents by root ancestor into AgentTeam values, sorted
// by root pid with members in tree order.
func BuildTeams(agents []AgentProcess) []AgentTeam {
	byPID := make(map[int32]AgentProcess, len(agents))
	for _, a := range agents {
		byPID[a.PID] = a
	}

	teamOf := make(map[int32]*AgentTeam)
	var order []int32
	for _, a := range agents {
		tid := a.TeamID
		if _, ok := teamOf[tid]; !ok {
			root := byPID[tid]
			teamOf[tid] = &AgentTeam{TeamID: tid, Root: root}
			order = append(order, tid)
		}
		teamOf[tid].Members = append(teamOf[tid].Members, a)
	}

	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && order[j-1] > order[j]; j-- {
			order[j-1], order[j] = order[j], order[j-1]
		}
	}

	result := make([]AgentTeam, 0, len(order))
	for _, tid := range order {
		team := *teamOf[tid]
		team.Members = BuildAgentTree(team.Members)
		result = append(result, team)
	}
	return result
}

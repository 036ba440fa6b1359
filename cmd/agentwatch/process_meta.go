package main

import (
	"context"

	"github.com/kylesnowschwartz/agentwatch/internal/discovery"
	"github.com/kylesnowschwartz/agentwatch/internal/tail"
)

// liveProcessMeta discovers running agents and converts them to the
// tail package's process-attribution shape.
func liveProcessMeta() ([]tail.ProcessMeta, error) {
	agents, err := discovery.FindRunningAgents(context.Background())
	if err != nil {
		return nil, err
	}
	out := make([]tail.ProcessMeta, 0, len(agents))
	for _, a := range agents {
		if a.LogFile == "" {
			continue
		}
		out = append(out, tail.ProcessMeta{PID: int(a.PID), LogFile: a.LogFile})
	}
	return out, nil
}

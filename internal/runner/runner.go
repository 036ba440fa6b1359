// Package runner wires together the logformat/detect/score packages
// into the single pipeline every CLI surface (check, watch, watch-all,
// security-scan) drives: ingest actions into a buffer, run detectors,
// reduce to health/efficiency/rot/security reports.
package runner

import (
	"github.com/kylesnowschwartz/agentwatch/internal/detect"
	"github.com/kylesnowschwartz/agentwatch/internal/logformat"
	"github.com/kylesnowschwartz/agentwatch/internal/score"
)

// Snapshot is one scoring pass's full output.
type Snapshot struct {
	Health     score.HealthReport
	Security   score.SecurityReport
	Efficiency score.EfficiencyReport
	Rot        score.RotReport
	Overall    float64
	Warnings   []detect.Warning
}

// Session holds the stateful pieces of the scoring pipeline for one
// agent: its rolling action buffer and its rot scorer's EMA state.
type Session struct {
	Buffer   *logformat.ActionBuffer
	registry *detect.Registry
	rot      *score.RotScorer
}

// New creates a Session with the given buffer capacity (0 uses the
// default).
func New(bufferCapacity int) *Session {
	return &Session{
		Buffer:   logformat.NewActionBuffer(bufferCapacity),
		registry: detect.NewRegistry(),
		rot:      score.NewRotScorer(),
	}
}

// Ingest appends actions to the session's buffer.
func (s *Session) Ingest(actions []logformat.Action) {
	for _, a := range actions {
		s.Buffer.Add(a)
	}
}

// Score runs every detector matching mode and reduces the result to a
// full Snapshot.
func (s *Session) Score(mode detect.Mode) Snapshot {
	stats := s.Buffer.Stats()
	warnings := s.registry.Run(mode, s.Buffer, stats)

	health := score.CalculateHealth(warnings)
	security := score.CalculateSecurity(warnings)
	efficiency := score.CalculateEfficiency(s.Buffer, warnings)
	rot := s.rot.Score(s.Buffer, stats, warnings)

	detectorScore := health.Overall
	if mode == detect.ModeSecurity || mode == detect.ModeAll {
		detectorScore = (health.Overall + security.Overall) / 2
		if mode == detect.ModeSecurity {
			detectorScore = security.Overall
		}
	}

	overall := score.BlendOverall(detectorScore, float64(efficiency.Score), rot.RotHealth())

	return Snapshot{
		Health:     health,
		Security:   security,
		Efficiency: efficiency,
		Rot:        rot,
		Overall:    overall,
		Warnings:   warnings,
	}
}

// Registry exposes the session's detector registry.
func (s *Session) Registry() *detect.Registry { return s.registry }

package main

import "github.com/kylesnowschwartz/agentwatch/internal/score"

func exitCodeFor(overall float64) int { return score.ExitCode(overall) }

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kylesnowschwartz/agentwatch/internal/detect"
	"github.com/kylesnowschwartz/agentwatch/internal/runner"
	"github.com/kylesnowschwartz/agentwatch/internal/tail"
)

func securityScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "security-scan [log-file]",
		Short: "One-shot security-only scan of a session log",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveLogPath(args)
			if err != nil {
				return err
			}

			cfg := resolveConfig(true)
			session := runner.New(cfg.BufferCapacity)

			actions, err := tail.LoadBacklog(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			session.Ingest(actions)

			snap := session.Score(detect.ModeSecurity)
			printSnapshot(cfg.Theme, path, snap)
			os.Exit(exitCodeFor(snap.Security.Overall))
			return nil
		},
	}
}

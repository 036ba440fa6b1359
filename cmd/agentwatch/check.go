package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kylesnowschwartz/agentwatch/internal/detect"
	"github.com/kylesnowschwartz/agentwatch/internal/logformat"
	"github.com/kylesnowschwartz/agentwatch/internal/runner"
	"github.com/kylesnowschwartz/agentwatch/internal/tail"
	"github.com/kylesnowschwartz/agentwatch/internal/theme"
)

func checkCmd() *cobra.Command {
	var security bool
	cmd := &cobra.Command{
		Use:   "check [log-file]",
		Short: "One-shot health/efficiency/rot scoring on a session log",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveLogPath(args)
			if err != nil {
				return err
			}

			cfg := resolveConfig(security)
			mode := detect.ModeHealth
			if cfg.SecurityMode {
				mode = detect.ModeAll
			}

			session := runner.New(cfg.BufferCapacity)
			actions, err := tail.LoadBacklog(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			session.Ingest(actions)

			snap := session.Score(mode)
			printSnapshot(cfg.Theme, path, snap)
			os.Exit(exitCodeFor(snap.Overall))
			return nil
		},
	}
	cmd.Flags().BoolVar(&security, "security", false, "also run security detectors")
	return cmd
}

func resolveLogPath(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	path, err := logformat.FindLatestSession()
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", fmt.Errorf("no claude-code session log found; pass a path explicitly")
	}
	return path, nil
}

func printSnapshot(themeName, path string, snap runner.Snapshot) {
	t := theme.Get(themeName)
	level := theme.StatusFromScore(snap.Overall)

	fmt.Printf("%s %s  overall %.0f (%s)\n", t.EmojiFor(level), path, snap.Overall, t.LabelFor(level))
	fmt.Printf("  health: %.0f (%s)   efficiency: %d (%s)   rot: %.2f (%s)\n",
		snap.Health.Overall, snap.Health.Status,
		snap.Efficiency.Score, snap.Efficiency.Status,
		snap.Rot.Smoothed, snap.Efficiency.Recommendation)

	if len(snap.Warnings) == 0 {
		fmt.Println("  no warnings")
		return
	}
	fmt.Printf("  %d warning(s):\n", len(snap.Warnings))
	for _, w := range snap.Warnings {
		fmt.Printf("    [%s/%s] %s: %s\n", w.Category, w.Severity, w.Signal, w.Message)
	}
}

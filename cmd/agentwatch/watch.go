package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kylesnowschwartz/agentwatch/internal/dashboard"
	"github.com/kylesnowschwartz/agentwatch/internal/detect"
	"github.com/kylesnowschwartz/agentwatch/internal/logformat"
	"github.com/kylesnowschwartz/agentwatch/internal/tail"
)

func watchCmd() *cobra.Command {
	var security bool
	cmd := &cobra.Command{
		Use:   "watch [log-file]",
		Short: "Live single-agent health/efficiency/rot dashboard",
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

			watcher := tail.NewProcessWatcher([]tail.ProcessMeta{{LogFile: path}}, cfg.PollInterval)
			go func() {
				_ = watcher.Run(cmd.Context())
			}()

			return dashboard.Run(watcher, cfg.Theme, mode)
		},
	}
	cmd.Flags().BoolVar(&security, "security", false, "also run security detectors")
	return cmd
}

func watchAllCmd() *cobra.Command {
	var security, allLogs bool
	cmd := &cobra.Command{
		Use:   "watch-all",
		Short: "Live multi-agent health/efficiency/rot dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := resolveConfig(security)
			mode := detect.ModeHealth
			if cfg.SecurityMode {
				mode = detect.ModeAll
			}

			var watcher *tail.MultiWatcher
			if allLogs {
				root, err := logformat.ClaudeProjectsRoot()
				if err != nil {
					return err
				}
				watcher = tail.NewDirectoryWatcher([]string{root}, cfg.PollInterval)
			} else {
				procs, err := liveProcessMeta()
				if err != nil {
					return err
				}
				if len(procs) == 0 {
					return fmt.Errorf("no running agent processes found; try --all-logs")
				}
				watcher = tail.NewProcessWatcher(procs, cfg.PollInterval)
			}

			go func() {
				_ = watcher.Run(cmd.Context())
			}()

			return dashboard.Run(watcher, cfg.Theme, mode)
		},
	}
	cmd.Flags().BoolVar(&security, "security", false, "also run security detectors")
	cmd.Flags().BoolVar(&allLogs, "all-logs", false, "tail every session log directory instead of only running agent processes")
	return cmd
}

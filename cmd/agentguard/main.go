// Package main is the agentguard CLI entrypoint: a security-first
// persona of agentwatch that shadows check/watch/scan/watch-all with
// security mode forced on, grounded on original_source/cli.py's
// security_main()/guard_cli split between the "watch for problems" and
// "watch for attacks" entrypoints of the same underlying program.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kylesnowschwartz/agentwatch/internal/config"
	"github.com/kylesnowschwartz/agentwatch/internal/dashboard"
	"github.com/kylesnowschwartz/agentwatch/internal/detect"
	"github.com/kylesnowschwartz/agentwatch/internal/discovery"
	"github.com/kylesnowschwartz/agentwatch/internal/logging"
	"github.com/kylesnowschwartz/agentwatch/internal/runner"
	"github.com/kylesnowschwartz/agentwatch/internal/tail"
)

var (
	themeFlag   string
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "agentguard",
	Short: "Security-first monitor for running AI coding agents",
	Long:  "agentguard is agentwatch's security persona: every command runs with security detectors forced on.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&themeFlag, "theme", "t", "", "status theme (default: agent)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(guardWatchCmd())
	rootCmd.AddCommand(guardCheckCmd())
	rootCmd.AddCommand(guardWatchAllCmd())
}

func cfg() config.Config {
	return config.Resolve(config.FlagOverrides{Theme: themeFlag, SecurityMode: true, Verbose: verboseFlag})
}

func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <log-file>",
		Short: "One-shot security scan of a session log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			session := runner.New(c.BufferCapacity)
			actions, err := tail.LoadBacklog(args[0])
			if err != nil {
				return err
			}
			session.Ingest(actions)
			snap := session.Score(detect.ModeSecurity)
			printReport(args[0], snap)
			os.Exit(scoreExitCode(snap.Security.Overall))
			return nil
		},
	}
}

func guardCheckCmd() *cobra.Command {
	cmd := scanCmd()
	cmd.Use = "check <log-file>"
	cmd.Short = "Alias for scan: forced-security one-shot check"
	return cmd
}

func guardWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <log-file>",
		Short: "Live single-agent dashboard with security detectors forced on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			watcher := tail.NewProcessWatcher([]tail.ProcessMeta{{LogFile: args[0]}}, c.PollInterval)
			go func() { _ = watcher.Run(cmd.Context()) }()
			return dashboard.Run(watcher, c.Theme, detect.ModeSecurity)
		},
	}
}

func guardWatchAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch-all",
		Short: "Live multi-agent dashboard with security detectors forced on",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			agents, err := discovery.FindRunningAgents(cmd.Context())
			if err != nil {
				return err
			}
			var procs []tail.ProcessMeta
			for _, a := range agents {
				if a.LogFile != "" {
					procs = append(procs, tail.ProcessMeta{PID: int(a.PID), LogFile: a.LogFile})
				}
			}
			if len(procs) == 0 {
				return fmt.Errorf("no running agent processes found")
			}
			watcher := tail.NewProcessWatcher(procs, c.PollInterval)
			go func() { _ = watcher.Run(cmd.Context()) }()
			return dashboard.Run(watcher, c.Theme, detect.ModeSecurity)
		},
	}
}

func printReport(path string, snap runner.Snapshot) {
	fmt.Printf("%s  security %.0f (%s)\n", path, snap.Security.Overall, snap.Security.Status)
	for _, w := range snap.Warnings {
		fmt.Printf("  [%s/%s] %s: %s\n", w.Category, w.Severity, w.Signal, w.Message)
	}
}

func scoreExitCode(overall float64) int {
	switch {
	case overall < 40:
		return 2
	case overall < 60:
		return 1
	default:
		return 0
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

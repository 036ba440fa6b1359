// Package main is the agentwatch CLI entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kylesnowschwartz/agentwatch/internal/config"
	"github.com/kylesnowschwartz/agentwatch/internal/logging"
)

var (
	themeFlag   string
	verboseFlag bool

	// securityForced forces security mode on regardless of flags when
	// true. Nothing in this binary sets it; the agentguard binary forces
	// security mode through its own config.
	securityForced bool
)

var rootCmd = &cobra.Command{
	Use:   "agentwatch",
	Short: "Watch running AI coding agents for health, efficiency, and security signals",
	Long: "agentwatch tails running AI coding agents' session logs in real time, " +
		"scores their health, efficiency, and context rot, and flags security-relevant behavior.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&themeFlag, "theme", "t", "", "status theme (default: agent)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(psCmd())
	rootCmd.AddCommand(watchAllCmd())
	rootCmd.AddCommand(listDetectorsCmd())
	rootCmd.AddCommand(securityScanCmd())
	rootCmd.AddCommand(themesCmd())
}

func resolveConfig(security bool) config.Config {
	return config.Resolve(config.FlagOverrides{
		Theme:        themeFlag,
		SecurityMode: security || securityForced,
		Verbose:      verboseFlag,
	})
}

// Execute runs the root cobra command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}

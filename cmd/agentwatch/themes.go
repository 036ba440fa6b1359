package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kylesnowschwartz/agentwatch/internal/theme"
)

func themesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List available status themes",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range theme.List() {
				t := theme.Get(name)
				marker := ""
				if name == theme.DefaultTheme {
					marker = " (default)"
				}
				fmt.Printf("%-16s %s %s %s %s%s\n", name,
					t.EmojiFor(theme.LevelHealthy), t.EmojiFor(theme.LevelOK),
					t.EmojiFor(theme.LevelDegraded), t.EmojiFor(theme.LevelCritical), marker)
			}
		},
	}
}

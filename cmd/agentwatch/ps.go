package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kylesnowschwartz/agentwatch/internal/discovery"
)

func psCmd() *cobra.Command {
	var asJSON, flat, teams bool
	cmd := &cobra.Command{
		Use:   "ps",
		Short: "List running AI coding agent processes",
		RunE: func(cmd *cobra.Command, args []string) error {
			agents, err := discovery.FindRunningAgents(context.Background())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if teams {
					return enc.Encode(discovery.BuildTeams(agents))
				}
				return enc.Encode(agents)
			}

			if teams {
				printTeams(discovery.BuildTeams(agents))
				return nil
			}
			if flat {
				printFlat(agents)
				return nil
			}
			printTree(discovery.BuildAgentTree(agents))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	cmd.Flags().BoolVar(&flat, "flat", false, "list agents without tree indentation")
	cmd.Flags().BoolVar(&teams, "teams", false, "group agents by team")
	return cmd
}

func printFlat(agents []discovery.AgentProcess) {
	for _, a := range agents {
		fmt.Printf("%-8d %-12s %-24s %s\n", a.PID, a.Kind, a.ProjectName(), a.WorkingDirectory)
	}
}

func printTree(agents []discovery.AgentProcess) {
	for _, a := range agents {
		indent := ""
		for i := 0; i < a.Depth; i++ {
			indent += "  "
		}
		marker := "agent"
		if a.IsSubagent() {
			marker = "subagent"
		}
		fmt.Printf("%s%s pid=%d %s %s\n", indent, marker, a.PID, a.Kind, a.ProjectName())
	}
}

func printTeams(teams []discovery.AgentTeam) {
	for _, t := range teams {
		fmt.Printf("team %s (root pid=%d, %d subagents, depth %d)\n", t.Name(), t.TeamID, t.SubagentCount(), t.MaxDepth())
		printTree(t.Members)
	}
}

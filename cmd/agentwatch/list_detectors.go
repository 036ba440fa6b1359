package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kylesnowschwartz/agentwatch/internal/detect"
)

func listDetectorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-detectors",
		Short: "List every built-in detector grouped by category",
		Run: func(cmd *cobra.Command, args []string) {
			byCategory := make(map[detect.Category][]string)
			var order []detect.Category
			for _, d := range detect.NewRegistry().Describe() {
				if _, seen := byCategory[d.Category]; !seen {
					order = append(order, d.Category)
				}
				byCategory[d.Category] = append(byCategory[d.Category], d.Name)
			}
			for _, cat := range order {
				kind := "health"
				if cat.IsSecurity() {
					kind = "security"
				}
				fmt.Printf("%s [%s]\n", cat, kind)
				for _, name := range byCategory[cat] {
					fmt.Printf("  - %s\n", name)
				}
			}
		},
	}
}

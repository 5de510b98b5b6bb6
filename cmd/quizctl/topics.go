package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-quiz/internal/curriculum"
)

func newTopicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "Print the topic graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := resolveGraph(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, t := range g.Topics() {
				fmt.Fprintf(out, "%s\n", g.Name(t))
				fmt.Fprintf(out, "  requires: %s\n", joinTopics(g.Prerequisites(t)))
				fmt.Fprintf(out, "  unlocks:  %s\n", joinTopics(g.Unlocks(t)))
			}
			return nil
		},
	}
}

func joinTopics(topics []curriculum.Topic) string {
	if len(topics) == 0 {
		return "-"
	}
	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

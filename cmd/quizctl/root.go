package main

import (
	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-quiz/internal/curriculum"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "quizctl",
		Short:        "Quiz catalog and progress administration",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("graph", "", "Path to a YAML topic graph (default: built-in graph)")

	root.AddCommand(newValidateCmd())
	root.AddCommand(newTopicsCmd())
	root.AddCommand(newExportCmd())
	return root
}

// resolveGraph returns the graph named by --graph, or the built-in one.
func resolveGraph(cmd *cobra.Command) (*curriculum.Graph, error) {
	if p, _ := cmd.Flags().GetString("graph"); p != "" {
		return curriculum.LoadGraph(p)
	}
	return curriculum.DefaultGraph(), nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-quiz/internal/curriculum"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <catalog>",
		Short: "Check a question catalog against the topic graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := resolveGraph(cmd)
			if err != nil {
				return err
			}

			questions, rejected, err := curriculum.LoadCatalog(args[0], g)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			repo := curriculum.NewRepository(g, questions)
			fmt.Fprintf(out, "%d questions loaded\n", len(questions))
			for _, t := range g.Topics() {
				fmt.Fprintf(out, "  %-14s", g.Name(t))
				for _, d := range curriculum.AllDifficulties() {
					fmt.Fprintf(out, " %s=%d", d, repo.Count(t, d))
				}
				fmt.Fprintln(out)
			}

			for _, r := range rejected {
				fmt.Fprintf(out, "rejected record %d", r.Index)
				if r.ID != "" {
					fmt.Fprintf(out, " (%s)", r.ID)
				}
				fmt.Fprintf(out, ": %s\n", r.Reason)
			}
			if len(rejected) > 0 {
				return fmt.Errorf("%d of %d records rejected", len(rejected), len(rejected)+len(questions))
			}
			return nil
		},
	}
}

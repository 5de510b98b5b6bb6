package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-quiz/internal/platform/backend"
	"github.com/p-n-ai/pai-quiz/internal/platform/config"
	"github.com/p-n-ai/pai-quiz/internal/progress"
	"github.com/p-n-ai/pai-quiz/internal/report"
)

func newExportCmd() *cobra.Command {
	var userID, outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a user's results to an Excel workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			g, err := resolveGraph(cmd)
			if err != nil {
				return err
			}

			b, err := backend.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			tracker := progress.NewTracker(progress.TrackerConfig{Graph: g, Store: b.Store})
			results, err := tracker.Results(cmd.Context(), userID)
			if err != nil {
				return err
			}

			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create %s: %w", outPath, err)
			}
			if err := report.WriteResults(f, results, g); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", outPath, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "exported %d results for %s to %s\n", len(results), userID, outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User id to export")
	cmd.Flags().StringVar(&outPath, "out", "results.xlsx", "Output workbook path")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

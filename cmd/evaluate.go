package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/keystone-gtm/icp-discovery/internal/evals"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <csv-file>",
	Short: "Audit a batch CSV for organization uniqueness",
	Long:  "Scores how unique the organizations in a batch are after normalization and fuzzy matching. Exits non-zero when the batch fails the gate.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := evals.EvaluateCSV(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("organizations:        %d\n", report.TotalOrganizations)
		fmt.Printf("unique (normalized):  %d\n", report.UniqueNormalized)
		fmt.Printf("uniqueness ratio:     %.3f\n", report.UniquenessRatio)
		fmt.Printf("potential duplicates: %d (high=%d medium=%d)\n",
			report.PotentialDuplicates, report.HighConfidenceDuplicates, report.MediumConfidenceDuplicates)
		for _, pair := range report.Samples {
			fmt.Printf("  %q ~ %q (%.2f)\n", pair.OrgA, pair.OrgB, pair.Similarity)
		}
		fmt.Printf("final score:          %.1f / 100 (gate %.0f)\n", report.FinalScore, evals.PassThreshold)

		if !report.Passed() {
			return eris.Errorf("evaluate: batch failed uniqueness gate (%.1f < %.0f)",
				report.FinalScore, evals.PassThreshold)
		}
		fmt.Println("PASS")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/keystone-gtm/icp-discovery/internal/dedupe"
	"github.com/keystone-gtm/icp-discovery/internal/model"
	"github.com/keystone-gtm/icp-discovery/internal/output"
)

var (
	dedupeSegment   string
	dedupeOut       string
	dedupeThreshold float64
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe <csv-file>",
	Short: "Deduplicate an existing segment CSV",
	Long:  "Resolves fuzzy duplicates in a previously written segment CSV, keeping the most complete record of each duplicate group, and writes the surviving rows.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seg, err := model.ParseSegment(dedupeSegment)
		if err != nil {
			return err
		}

		rows, err := output.ReadRows(args[0], seg)
		if err != nil {
			return err
		}

		resolver := dedupe.NewResolver(dedupeThreshold)
		resolution := resolver.Resolve(rows)

		outPath := dedupeOut
		if outPath == "" {
			outPath = args[0]
		}
		writer := output.NewWriter(cfg.Output.Dir, cfg.Output.SchemaDir)
		if err := output.WriteCSV(outPath, writer.Headers(seg), resolution.Unique); err != nil {
			return err
		}

		fmt.Printf("kept %d of %d rows (%d duplicates removed)\n",
			len(resolution.Unique), len(rows), resolution.DuplicatesRemoved)
		for org, sim := range resolution.ConfidenceScores {
			zap.L().Info("kept duplicate winner",
				zap.String("organization", org), zap.Float64("similarity", sim))
		}
		return nil
	},
}

func init() {
	dedupeCmd.Flags().StringVar(&dedupeSegment, "segment", "", "segment the CSV belongs to (required)")
	dedupeCmd.Flags().StringVar(&dedupeOut, "out", "", "output path (default: overwrite input)")
	dedupeCmd.Flags().Float64Var(&dedupeThreshold, "threshold", dedupe.DefaultThreshold, "similarity threshold")
	_ = dedupeCmd.MarkFlagRequired("segment")
	rootCmd.AddCommand(dedupeCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keystone-gtm/icp-discovery/internal/ledger"
	"github.com/keystone-gtm/icp-discovery/internal/model"
	"github.com/keystone-gtm/icp-discovery/internal/output"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect and export the organization ledger",
}

var ledgerStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show entry counts per segment",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := ledger.Open(ctx, cfg.Ledger)
		if err != nil {
			return err
		}
		defer store.Close()

		counts, err := store.Counts(ctx)
		if err != nil {
			return err
		}

		total := 0
		for _, seg := range model.Segments {
			fmt.Printf("%-12s %d\n", seg, counts[seg])
			total += counts[seg]
		}
		fmt.Printf("%-12s %d\n", "total", total)
		return nil
	},
}

var ledgerExportOut string

var ledgerExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the full ledger to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := ledger.Open(ctx, cfg.Ledger)
		if err != nil {
			return err
		}
		defer store.Close()

		entries := make(map[model.Segment][]model.LedgerEntry, len(model.Segments))
		total := 0
		for _, seg := range model.Segments {
			segEntries, err := store.List(ctx, seg)
			if err != nil {
				return err
			}
			entries[seg] = segEntries
			total += len(segEntries)
		}

		if err := output.ExportXLSX(ledgerExportOut, entries, model.Segments); err != nil {
			return err
		}
		fmt.Printf("exported %d entries to %s\n", total, ledgerExportOut)
		return nil
	},
}

func init() {
	ledgerExportCmd.Flags().StringVar(&ledgerExportOut, "out", "ledger.xlsx", "output XLSX path")
	ledgerCmd.AddCommand(ledgerStatusCmd)
	ledgerCmd.AddCommand(ledgerExportCmd)
	rootCmd.AddCommand(ledgerCmd)
}

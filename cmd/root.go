package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/keystone-gtm/icp-discovery/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "icp-discovery",
	Short: "Evidence-first ICP account discovery",
	Long:  "Discovers and scores organizations for three ICP segments, deduplicates them against a persistent ledger, and writes per-segment CSV batches.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

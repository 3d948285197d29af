package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/keystone-gtm/icp-discovery/internal/ledger"
	"github.com/keystone-gtm/icp-discovery/internal/model"
	"github.com/keystone-gtm/icp-discovery/internal/pipeline"
	"github.com/keystone-gtm/icp-discovery/pkg/firmographics"
	"github.com/keystone-gtm/icp-discovery/pkg/websearch"
)

var (
	runSegments []string
	runRegion   string
	runTarget   int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a discovery batch for one or more segments",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		segments, err := parseSegments(runSegments)
		if err != nil {
			return err
		}
		if runTarget > 0 {
			cfg.Pipeline.TargetCount = runTarget
		}

		store, err := ledger.Open(ctx, cfg.Ledger)
		if err != nil {
			return err
		}
		defer store.Close()

		search := websearch.NewClient(cfg.Search.Key, cfg.Search.BaseURL,
			websearch.WithRateLimit(cfg.Search.RequestsPerSecond))

		var enrich firmographics.Client
		if cfg.Enrich.Enabled {
			enrich = firmographics.NewClient(cfg.Enrich.Key, cfg.Enrich.BaseURL,
				firmographics.WithRateLimit(cfg.Enrich.RequestsPerSecond))
		}

		p, err := pipeline.New(*cfg, search, enrich, store)
		if err != nil {
			return err
		}

		res, err := p.Run(ctx, segments, runRegion)
		if err != nil {
			return err
		}

		fmt.Printf("run %s complete\n", res.RunID)
		for _, seg := range pipeline.SortSegments(segments) {
			fmt.Printf("  %s: %d accepted\n", seg, res.Accepted[seg])
		}
		fmt.Printf("  output: %s\n", res.RunDir)
		zap.L().Info("run finished", zap.String("run_id", res.RunID))
		return nil
	},
}

func init() {
	runCmd.Flags().StringSliceVar(&runSegments, "segment", []string{"all"}, "segments to run (healthcare, corporate, providers, all)")
	runCmd.Flags().StringVar(&runRegion, "region", "", "region label for output rows")
	runCmd.Flags().IntVar(&runTarget, "target", 0, "override target organization count per segment")
	rootCmd.AddCommand(runCmd)
}

func parseSegments(names []string) ([]model.Segment, error) {
	var segments []model.Segment
	seen := make(map[model.Segment]bool)
	for _, name := range names {
		if name == "all" {
			return model.Segments, nil
		}
		seg, err := model.ParseSegment(name)
		if err != nil {
			return nil, err
		}
		if !seen[seg] {
			seen[seg] = true
			segments = append(segments, seg)
		}
	}
	return segments, nil
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/keystone-gtm/icp-discovery/internal/model"
	"github.com/keystone-gtm/icp-discovery/internal/scoring"
)

var (
	scoreSegment string
	scoreFile    string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a single evidence document from a JSON file",
	Long:  "Reads an evidence JSON object (flag and text fields) from a file, or stdin when the file is \"-\", and prints the tier decision.",
	RunE: func(cmd *cobra.Command, args []string) error {
		seg, err := model.ParseSegment(scoreSegment)
		if err != nil {
			return err
		}

		var data []byte
		if scoreFile == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(scoreFile)
		}
		if err != nil {
			return eris.Wrap(err, "score: read evidence")
		}

		var ev model.Evidence
		if err := json.Unmarshal(data, &ev); err != nil {
			return eris.Wrap(err, "score: parse evidence")
		}

		scorers := scoring.NewScorers(scoring.Config{HealthcareRelaxed: cfg.Scoring.HealthcareRelaxed})
		result, derived := scorers[seg].Score(ev)

		fmt.Printf("segment: %s\n", seg)
		fmt.Printf("score:   %d\n", result.Score)
		fmt.Printf("tier:    %s\n", result.Tier)
		if len(result.Missing) > 0 {
			fmt.Printf("missing: %s\n", strings.Join(result.Missing, ", "))
		}
		if len(derived) > 0 {
			out, _ := json.MarshalIndent(derived, "", "  ")
			fmt.Printf("derived: %s\n", out)
		}
		return nil
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreSegment, "segment", "", "segment to score against (required)")
	scoreCmd.Flags().StringVar(&scoreFile, "file", "-", "evidence JSON file, or - for stdin")
	_ = scoreCmd.MarkFlagRequired("segment")
	rootCmd.AddCommand(scoreCmd)
}

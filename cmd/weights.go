package cmd

import (
	"github.com/huangsam/reposcore/core"
	"github.com/huangsam/reposcore/internal/contract"
	"github.com/huangsam/reposcore/internal/outwriter"
	"github.com/spf13/cobra"
)

// weightsCmd displays the active weights and the formula behind every dimension.
var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Display dimension weights and scoring formulas",
	Long: `Show the weight of every dimension and how its 0-100 score is computed.

The overall score is the weighted sum of the six dimension scores, rounded
and clamped to 0-100. Custom weights from the config file are merged over
the defaults and must sum to 1.0.

No GitHub calls are made - this is purely informational.

Examples:
  # Show default weights
  reposcore weights

  # View with custom weights from config file
  reposcore weights --config .reposcore.yaml`,
	PreRunE: configSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := outwriter.NewOutWriter().WriteWeights(cfg.Weights, core.Formulas, cfg); err != nil {
			contract.LogFatal("Cannot display weights", err)
		}
	},
}

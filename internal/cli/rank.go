package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"carry-trade-analyzer/internal/app"
)

var (
	rankLimit       int
	legacyHigh      []float64
	legacyLow       []float64
	legacyPrincipal float64
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "List currency pairs by interest-rate differential",
	RunE: func(cmd *cobra.Command, args []string) error {
		if rankLimit < 0 {
			return fmt.Errorf("--limit cannot be negative")
		}
		rates, err := app.ParseRateOverrides(rateFlags)
		if err != nil {
			return err
		}
		_, err = getApp().Rank(cmd.Context(), app.RankOptions{Rates: rates, Limit: rankLimit})
		return err
	},
}

var legacyCmd = &cobra.Command{
	Use:   "legacy",
	Short: "Print simple carry return and dispersion for paired high/low rates",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := getApp().Legacy(cmd.Context(), app.LegacyOptions{
			HighRates: legacyHigh,
			LowRates:  legacyLow,
			Principal: legacyPrincipal,
		})
		return err
	},
}

func init() {
	addRateFlag(rankCmd)
	rankCmd.Flags().IntVar(&rankLimit, "limit", 0, "Maximum pairs to list (0 lists all)")

	legacyCmd.Flags().Float64SliceVar(&legacyHigh, "high", []float64{0.04, 0.05, 0.06}, "High interest rates")
	legacyCmd.Flags().Float64SliceVar(&legacyLow, "low", []float64{-0.001, 0.001, 0.002}, "Low interest rates")
	legacyCmd.Flags().Float64Var(&legacyPrincipal, "principal", 0, "Principal amount (defaults to config)")
}

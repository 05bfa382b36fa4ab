package cli

import (
	"github.com/spf13/cobra"

	"carry-trade-analyzer/internal/app"
)

var (
	analyzePrincipal  float64
	analyzeDays       int
	analyzeTopK       int
	analyzeVolatility float64
	analyzeSeed       uint64
	analyzeWorkers    int
	analyzePNGPath    string
	analyzeCSVPath    string
	analyzeYAMLPath   string
	analyzeNoPersist  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Simulate the top ranked carry trades and report return and risk",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := getApp()
		rates, err := app.ParseRateOverrides(rateFlags)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		analysis := &a.Config.Analysis
		if flags.Changed("principal") {
			analysis.Principal = analyzePrincipal
		}
		if flags.Changed("days") {
			analysis.Days = analyzeDays
		}
		if flags.Changed("top") {
			analysis.TopK = analyzeTopK
		}
		if flags.Changed("volatility") {
			analysis.Volatility = analyzeVolatility
		}
		if flags.Changed("seed") {
			analysis.Seed = analyzeSeed
		}
		if flags.Changed("workers") {
			analysis.Workers = analyzeWorkers
		}

		_, err = a.Analyze(cmd.Context(), app.AnalyzeOptions{
			Rates:     rates,
			PNGPath:   analyzePNGPath,
			CSVPath:   analyzeCSVPath,
			YAMLPath:  analyzeYAMLPath,
			NoPersist: analyzeNoPersist,
		})
		return err
	},
}

func init() {
	addRateFlag(analyzeCmd)
	analyzeCmd.Flags().Float64Var(&analyzePrincipal, "principal", 0, "Principal amount (defaults to config)")
	analyzeCmd.Flags().IntVar(&analyzeDays, "days", 0, "Simulation horizon in days (defaults to config)")
	analyzeCmd.Flags().IntVar(&analyzeTopK, "top", 0, "Number of ranked pairs to simulate (defaults to config)")
	analyzeCmd.Flags().Float64Var(&analyzeVolatility, "volatility", 0, "Daily exchange-rate shock standard deviation (defaults to config)")
	analyzeCmd.Flags().Uint64Var(&analyzeSeed, "seed", 0, "Random seed; 0 draws a fresh seed (defaults to config)")
	analyzeCmd.Flags().IntVar(&analyzeWorkers, "workers", 0, "Pairs simulated concurrently (defaults to config)")
	analyzeCmd.Flags().StringVar(&analyzePNGPath, "png", "", "Path to write PNG chart")
	analyzeCmd.Flags().StringVar(&analyzeCSVPath, "csv", "", "Path to write per-day series CSV")
	analyzeCmd.Flags().StringVar(&analyzeYAMLPath, "yaml", "", "Path to write YAML summary")
	analyzeCmd.Flags().BoolVar(&analyzeNoPersist, "no-persist", false, "Skip the database run journal")
}

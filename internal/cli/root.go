package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"carry-trade-analyzer/internal/app"
	"carry-trade-analyzer/internal/config"
	"carry-trade-analyzer/internal/logging"
)

var (
	cfgFile   string
	logLevel  string
	rateFlags []string
	appHandle *app.App
)

var rootCmd = &cobra.Command{
	Use:           "carrytrade",
	Short:         "Rank currency pairs and simulate carry trade returns",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if appHandle != nil {
			return nil
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}

		logger := logging.NewLogger(cfg.Logging)
		appHandle = app.NewApp(cfg, logger)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level defined in config")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(legacyCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// addRateFlag registers --rate on commands that build a rate table.
func addRateFlag(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&rateFlags, "rate", nil, "Override or add a currency rate as CODE=RATE (repeatable)")
}

func getApp() *app.App {
	if appHandle == nil {
		panic("application not initialized; PersistentPreRunE not executed")
	}
	return appHandle
}

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"carry-trade-analyzer/internal/app"
)

var (
	historyLimit int
	historyRunID string
	historyPrune time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Display recent analysis runs from the database journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}
		if historyPrune < 0 {
			return fmt.Errorf("--prune cannot be negative")
		}

		return getApp().History(cmd.Context(), app.HistoryOptions{
			Limit:      historyLimit,
			RunID:      historyRunID,
			PruneAfter: historyPrune,
		})
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of runs to display")
	historyCmd.Flags().StringVar(&historyRunID, "run", "", "Show pair results of one run ID")
	historyCmd.Flags().DurationVar(&historyPrune, "prune", 0, "Delete journal runs older than this age before listing (e.g. 720h)")
}

package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"
)

// History prints recent persisted runs, or the pair results of one run.
func (a *App) History(ctx context.Context, opts HistoryOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show history")
	}
	if closeStore != nil {
		defer closeStore()
	}

	if opts.PruneAfter > 0 {
		cutoff := time.Now().UTC().Add(-opts.PruneAfter)
		if err := store.DeleteRunsBefore(ctx, cutoff); err != nil {
			return err
		}
		a.Logger.Info().Time("cutoff", cutoff).Msg("run journal pruned")
	}

	if opts.RunID != "" {
		results, err := store.ListPairResults(ctx, strings.TrimSpace(opts.RunID))
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Fprintf(a.Out, "no pair results for run %s\n", opts.RunID)
			return nil
		}
		writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(writer, "Rank\tPair\tDiff\tFinal Return\tFinal Risk\tReturn/Risk")
		for _, r := range results {
			fmt.Fprintf(writer, "%d\t%s\t%s\t%s\t%s\t%s\n",
				r.Rank,
				r.Label,
				r.Differential.StringFixed(5),
				r.FinalReturn.StringFixed(2),
				r.FinalRisk.StringFixed(2),
				r.Ratio.StringFixed(4),
			)
		}
		return writer.Flush()
	}

	runs, err := store.ListRecentRuns(ctx, opts.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(a.Out, "no runs found")
		return nil
	}

	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Run ID\tStarted (UTC)\tPrincipal\tDays\tTop K\tVolatility\tSeed")
	for _, run := range runs {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%d\t%d\t%s\t%d\n",
			run.ID,
			run.StartedAt.UTC().Format(time.RFC3339),
			run.Principal.StringFixed(2),
			run.Days,
			run.TopK,
			run.Volatility.String(),
			run.Seed,
		)
	}
	return writer.Flush()
}

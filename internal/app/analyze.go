package app

import (
	"context"
	"fmt"
	"text/tabwriter"

	"carry-trade-analyzer/internal/service"
	"carry-trade-analyzer/internal/storage"
)

// Analyze runs one carry trade analysis, prints the report and writes any
// requested exports.
func (a *App) Analyze(ctx context.Context, opts AnalyzeOptions) (*service.Result, error) {
	if err := a.Config.Validate(); err != nil {
		return nil, err
	}

	table, err := a.RateTable(opts.Rates)
	if err != nil {
		return nil, err
	}

	var runStore storage.RunStore
	if !opts.NoPersist {
		store, closeStore, err := a.openStore(ctx)
		switch {
		case err != nil:
			a.Logger.Warn().Err(err).Msg("run journal unavailable; persistence disabled")
		case store == nil:
			a.Logger.Debug().Msg("database.dsn not configured; run journal disabled")
		default:
			defer closeStore()
			runStore = store
		}
	}

	svc := service.New(a.Config, runStore, a.newNotifier(), a.Logger)
	result, err := svc.Run(ctx, table)
	if err != nil {
		return nil, err
	}

	if err := a.printReport(result); err != nil {
		return nil, err
	}

	if err := a.writeExports(result, opts); err != nil {
		return nil, err
	}
	return result, nil
}

func (a *App) printReport(result *service.Result) error {
	fmt.Fprintf(a.Out, "Run %s  principal %s  days %d  volatility %s  seed %d\n\n",
		result.RunID,
		formatAmount(result.Options.Principal),
		result.Options.Days,
		formatFloat(result.Options.Volatility, 4),
		result.Seed,
	)

	if result.Metrics.Len() == 0 {
		fmt.Fprintln(a.Out, "no currency pairs to simulate (need at least two currencies)")
		return nil
	}

	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Rank\tPair\tHigh%\tLow%\tDiff%\tFinal Return\tFinal Risk\tReturn/Risk")
	for i, m := range result.Metrics.Entries() {
		fmt.Fprintf(writer, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1,
			m.Pair.Label(),
			formatPercent(m.Pair.HighRate),
			formatPercent(m.Pair.LowRate),
			formatPercent(m.Pair.Differential),
			formatAmount(m.FinalReturn),
			formatAmount(m.FinalRisk),
			formatFloat(m.ReturnRiskRatio, 4),
		)
	}
	return writer.Flush()
}

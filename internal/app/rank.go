package app

import (
	"context"
	"fmt"
	"text/tabwriter"

	"carry-trade-analyzer/internal/carry"
)

// Rank prints every currency pair ordered by interest-rate differential.
func (a *App) Rank(ctx context.Context, opts RankOptions) ([]carry.CurrencyPair, error) {
	table, err := a.RateTable(opts.Rates)
	if err != nil {
		return nil, err
	}

	pairs := carry.RankPairs(table)
	if opts.Limit > 0 && len(pairs) > opts.Limit {
		pairs = pairs[:opts.Limit]
	}
	if len(pairs) == 0 {
		fmt.Fprintln(a.Out, "no currency pairs (need at least two currencies)")
		return pairs, nil
	}

	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Rank\tPair\tHigh%\tLow%\tDiff%\tSimple Return\tDispersion")
	for i, p := range pairs {
		fmt.Fprintf(writer, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1,
			p.Label(),
			formatPercent(p.HighRate),
			formatPercent(p.LowRate),
			formatPercent(p.Differential),
			formatAmount(carry.SimpleReturn(p.HighRate, p.LowRate, a.Config.Analysis.Principal)),
			formatFloat(carry.Dispersion(p.HighRate, p.LowRate), 6),
		)
	}
	return pairs, writer.Flush()
}

// Legacy prints the simple return and dispersion of zipped high/low rate lists.
func (a *App) Legacy(ctx context.Context, opts LegacyOptions) ([]carry.Estimate, error) {
	if len(opts.HighRates) == 0 || len(opts.LowRates) == 0 {
		return nil, fmt.Errorf("--high and --low must each list at least one rate")
	}
	principal := opts.Principal
	if principal == 0 {
		principal = a.Config.Analysis.Principal
	}

	estimates := carry.LegacyEstimates(opts.HighRates, opts.LowRates, principal)
	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "#\tHigh%\tLow%\tReturn\tRisk")
	for i, e := range estimates {
		fmt.Fprintf(writer, "%d\t%s\t%s\t%s\t%s\n",
			i+1,
			formatPercent(e.HighRate),
			formatPercent(e.LowRate),
			formatAmount(e.Return),
			formatFloat(e.Risk, 6),
		)
	}
	return estimates, writer.Flush()
}

package carry

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultTopK is the number of ranked pairs simulated when Options.TopK is unset.
	DefaultTopK = 5
	// DefaultVolatility is the daily shock standard deviation used by DefaultOptions.
	DefaultVolatility = 0.01
	// MinFinalRisk floors the ratio denominator. It is an absolute amount in
	// principal units, not a relative threshold.
	MinFinalRisk = 1.0
)

// Options parameterise Analyze.
type Options struct {
	Principal float64
	Days      int
	// TopK <= 0 selects DefaultTopK.
	TopK int
	// Volatility of 0 pins the exchange rate at 1.
	Volatility float64
	// Workers > 1 simulates pairs concurrently. Output is identical either way.
	Workers int
	// Sources defaults to SeededSources(0): without a factory every call
	// draws the same paths. Pass SeededSources with a varying seed, as the
	// service does with a clock-derived one, for independent runs.
	Sources SourceFactory
}

// DefaultOptions returns options with the default top K and volatility.
func DefaultOptions(principal float64, days int) Options {
	return Options{
		Principal:  principal,
		Days:       days,
		TopK:       DefaultTopK,
		Volatility: DefaultVolatility,
		Workers:    1,
	}
}

func (o Options) withDefaults() Options {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.Sources == nil {
		o.Sources = SeededSources(0)
	}
	return o
}

// PairMetrics summarises one simulated pair.
type PairMetrics struct {
	Pair            CurrencyPair
	FinalReturn     float64
	RawFinalRisk    float64
	FinalRisk       float64
	ReturnRiskRatio float64
	Returns         []float64
	Risks           []float64
}

// NewPairMetrics derives the summary of a simulated path.
func NewPairMetrics(pair CurrencyPair, path Path) PairMetrics {
	raw := path.FinalRisk()
	risk := math.Max(raw, MinFinalRisk)
	ret := path.FinalReturn()
	return PairMetrics{
		Pair:            pair,
		FinalReturn:     ret,
		RawFinalRisk:    raw,
		FinalRisk:       risk,
		ReturnRiskRatio: ret / risk,
		Returns:         path.Returns,
		Risks:           path.Risks,
	}
}

// MetricsTable maps pair labels to metrics, iterating in ranked order.
type MetricsTable struct {
	labels  []string
	entries map[string]PairMetrics
}

func newMetricsTable(metrics []PairMetrics) *MetricsTable {
	t := &MetricsTable{
		labels:  make([]string, 0, len(metrics)),
		entries: make(map[string]PairMetrics, len(metrics)),
	}
	for _, m := range metrics {
		label := m.Pair.Label()
		t.labels = append(t.labels, label)
		t.entries[label] = m
	}
	return t
}

// Len reports the number of pairs.
func (t *MetricsTable) Len() int {
	return len(t.labels)
}

// Labels returns pair labels in ranked order.
func (t *MetricsTable) Labels() []string {
	out := make([]string, len(t.labels))
	copy(out, t.labels)
	return out
}

// Get looks up metrics by pair label.
func (t *MetricsTable) Get(label string) (PairMetrics, bool) {
	m, ok := t.entries[label]
	return m, ok
}

// Entries returns all metrics in ranked order.
func (t *MetricsTable) Entries() []PairMetrics {
	out := make([]PairMetrics, 0, len(t.labels))
	for _, label := range t.labels {
		out = append(out, t.entries[label])
	}
	return out
}

// Analyze ranks the table, simulates the top K pairs and summarises each.
// Every pair draws from its own source, so the result does not depend on Workers.
func Analyze(ctx context.Context, table RateTable, opts Options) (*MetricsTable, error) {
	opts = opts.withDefaults()
	if math.IsNaN(opts.Principal) || math.IsInf(opts.Principal, 0) {
		return nil, newError(ErrInvalidArgument, "analyze", "principal %v must be finite", opts.Principal)
	}
	if opts.Days < 0 {
		return nil, newError(ErrInvalidArgument, "analyze", "days %d must not be negative", opts.Days)
	}

	ranked := RankPairs(table)
	if len(ranked) > opts.TopK {
		ranked = ranked[:opts.TopK]
	}

	results := make([]PairMetrics, len(ranked))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, pair := range ranked {
		src := opts.Sources(i, pair)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path, err := Simulate(pair, opts.Principal, opts.Days, opts.Volatility, src)
			if err != nil {
				return err
			}
			results[i] = NewPairMetrics(pair, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return newMetricsTable(results), nil
}

package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"carry-trade-analyzer/internal/alerting"
	"carry-trade-analyzer/internal/carry"
	"carry-trade-analyzer/internal/config"
	"carry-trade-analyzer/internal/storage"
)

// Result is the outcome of one analysis run.
type Result struct {
	RunID     string
	StartedAt time.Time
	Seed      uint64
	Options   carry.Options
	Ranked    []carry.CurrencyPair
	Metrics   *carry.MetricsTable
}

// Service orchestrates ranking, simulation, persistence, and notification.
type Service struct {
	store    storage.RunStore
	notifier alerting.Notifier
	logger   zerolog.Logger

	analysis config.AnalysisConfig
	minRatio decimal.Decimal
	alertsOn bool
	now      func() time.Time
}

// New constructs the analysis service. store and notifier may be nil.
func New(cfg *config.Config, store storage.RunStore, notifier alerting.Notifier, logger zerolog.Logger) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		logger:   logger.With().Str("component", "service").Logger(),
		analysis: cfg.Analysis,
		minRatio: decimal.NewFromFloat(cfg.Alerting.MinRatio),
		alertsOn: cfg.Alerting.Enabled,
		now:      time.Now,
	}
}

// Options derives simulation options from configuration. A zero seed is
// replaced by a time-derived one so unseeded runs draw fresh paths.
func (s *Service) Options() (carry.Options, uint64) {
	seed := s.analysis.Seed
	if seed == 0 {
		seed = uint64(s.now().UnixNano())
	}
	return carry.Options{
		Principal:  s.analysis.Principal,
		Days:       s.analysis.Days,
		TopK:       s.analysis.TopK,
		Volatility: s.analysis.Volatility,
		Workers:    s.analysis.Workers,
		Sources:    carry.SeededSources(seed),
	}, seed
}

// Run analyses the rate table once.
func (s *Service) Run(ctx context.Context, table carry.RateTable) (*Result, error) {
	if s.analysis.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.analysis.Timeout)
		defer cancel()
	}

	opts, seed := s.Options()
	result := &Result{
		RunID:     ulid.Make().String(),
		StartedAt: s.now().UTC(),
		Seed:      seed,
		Options:   opts,
		Ranked:    carry.RankPairs(table),
	}

	logger := s.logger.With().Str("run_id", result.RunID).Logger()
	logger.Info().
		Int("currencies", table.Len()).
		Int("pairs", len(result.Ranked)).
		Int("days", opts.Days).
		Uint64("seed", seed).
		Msg("starting carry trade analysis")

	metrics, err := carry.Analyze(ctx, table, opts)
	if err != nil {
		return nil, fmt.Errorf("analyze carry trades: %w", err)
	}
	result.Metrics = metrics

	for _, m := range metrics.Entries() {
		logger.Debug().
			Str("pair", m.Pair.Label()).
			Float64("differential", m.Pair.Differential).
			Float64("final_return", m.FinalReturn).
			Float64("final_risk", m.FinalRisk).
			Float64("ratio", m.ReturnRiskRatio).
			Msg("pair simulated")
	}

	if s.store != nil {
		if label, ok := firstNonFinite(metrics); !ok {
			logger.Warn().Str("pair", label).Msg("non-finite metrics; run not persisted")
		} else if err := s.store.InsertRun(ctx, toRecord(result)); err != nil {
			logger.Error().Err(err).Msg("failed to persist analysis run")
		}
	}

	if s.alertsOn && s.notifier != nil {
		s.notify(ctx, logger, result)
	}

	logger.Info().Int("simulated", metrics.Len()).Msg("carry trade analysis complete")
	return result, nil
}

func (s *Service) notify(ctx context.Context, logger zerolog.Logger, result *Result) {
	note := alerting.Notification{
		RunID:     result.RunID,
		StartedAt: result.StartedAt,
		Principal: decimal.NewFromFloat(result.Options.Principal),
		Days:      result.Options.Days,
	}
	var belowMin, nonFinite int
	for _, m := range result.Metrics.Entries() {
		if !finiteMetrics(m) {
			nonFinite++
			continue
		}
		ratio := decimal.NewFromFloat(m.ReturnRiskRatio)
		if ratio.LessThan(s.minRatio) {
			belowMin++
			continue
		}
		note.Pairs = append(note.Pairs, alerting.PairSummary{
			Label:        m.Pair.Label(),
			Differential: decimal.NewFromFloat(m.Pair.Differential),
			FinalReturn:  decimal.NewFromFloat(m.FinalReturn),
			FinalRisk:    decimal.NewFromFloat(m.FinalRisk),
			Ratio:        ratio,
		})
	}
	note.AdditionalMsg = omittedNote(belowMin, nonFinite, s.minRatio)
	if len(note.Pairs) == 0 {
		logger.Info().Str("min_ratio", s.minRatio.String()).Msg("no pair meets min ratio; notification skipped")
		return
	}
	if err := s.notifier.Notify(ctx, note); err != nil {
		logger.Error().Err(err).Msg("failed to dispatch run summary")
	}
}

func omittedNote(belowMin, nonFinite int, minRatio decimal.Decimal) string {
	var msg string
	if belowMin > 0 {
		msg += fmt.Sprintf("%d pair(s) below min ratio %s omitted\n", belowMin, minRatio.String())
	}
	if nonFinite > 0 {
		msg += fmt.Sprintf("%d pair(s) with overflowed metrics omitted\n", nonFinite)
	}
	return msg
}

func finiteMetrics(m carry.PairMetrics) bool {
	for _, v := range []float64{m.FinalReturn, m.RawFinalRisk, m.FinalRisk, m.ReturnRiskRatio} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}

// firstNonFinite reports the first pair whose metrics decimal cannot hold.
func firstNonFinite(metrics *carry.MetricsTable) (string, bool) {
	for _, m := range metrics.Entries() {
		if !finiteMetrics(m) {
			return m.Pair.Label(), false
		}
	}
	return "", true
}

func toRecord(result *Result) storage.AnalysisRun {
	run := storage.AnalysisRun{
		ID:         result.RunID,
		StartedAt:  result.StartedAt,
		Principal:  decimal.NewFromFloat(result.Options.Principal),
		Days:       result.Options.Days,
		TopK:       result.Options.TopK,
		Volatility: decimal.NewFromFloat(result.Options.Volatility),
		Seed:       result.Seed,
	}
	for i, m := range result.Metrics.Entries() {
		run.Pairs = append(run.Pairs, storage.PairResult{
			RunID:        result.RunID,
			Rank:         i + 1,
			Label:        m.Pair.Label(),
			High:         m.Pair.High,
			Low:          m.Pair.Low,
			HighRate:     decimal.NewFromFloat(m.Pair.HighRate),
			LowRate:      decimal.NewFromFloat(m.Pair.LowRate),
			Differential: decimal.NewFromFloat(m.Pair.Differential),
			FinalReturn:  decimal.NewFromFloat(m.FinalReturn),
			RawFinalRisk: decimal.NewFromFloat(m.RawFinalRisk),
			FinalRisk:    decimal.NewFromFloat(m.FinalRisk),
			Ratio:        decimal.NewFromFloat(m.ReturnRiskRatio),
		})
	}
	return run
}

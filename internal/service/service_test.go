package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carry-trade-analyzer/internal/alerting"
	"carry-trade-analyzer/internal/carry"
	"carry-trade-analyzer/internal/config"
	"carry-trade-analyzer/internal/storage"
)

type memoryRunStore struct {
	runs []storage.AnalysisRun
	err  error
}

func (m *memoryRunStore) InsertRun(ctx context.Context, run storage.AnalysisRun) error {
	if m.err != nil {
		return m.err
	}
	m.runs = append(m.runs, run)
	return nil
}

func (m *memoryRunStore) ListRecentRuns(ctx context.Context, limit int) ([]storage.AnalysisRun, error) {
	return m.runs, nil
}

func (m *memoryRunStore) ListPairResults(ctx context.Context, runID string) ([]storage.PairResult, error) {
	for _, run := range m.runs {
		if run.ID == runID {
			return run.Pairs, nil
		}
	}
	return nil, nil
}

func (m *memoryRunStore) DeleteRunsBefore(ctx context.Context, olderThan time.Time) error {
	return nil
}

type recordingNotifier struct {
	notes []alerting.Notification
}

func (r *recordingNotifier) Notify(ctx context.Context, note alerting.Notification) error {
	r.notes = append(r.notes, note)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Analysis: config.AnalysisConfig{
			Principal:  100000,
			Days:       30,
			TopK:       2,
			Volatility: 0.01,
			Seed:       7,
			Workers:    2,
		},
		Alerting: config.AlertingConfig{Enabled: true},
	}
}

func testTable(t *testing.T) carry.RateTable {
	t.Helper()
	table, err := carry.NewRateTable(
		carry.Rate{Currency: "AUD", Annual: 0.04},
		carry.Rate{Currency: "JPY", Annual: -0.001},
		carry.Rate{Currency: "MXN", Annual: 0.06},
	)
	require.NoError(t, err)
	return table
}

func TestRunPersistsAndNotifies(t *testing.T) {
	store := &memoryRunStore{}
	notifier := &recordingNotifier{}
	svc := New(testConfig(), store, notifier, zerolog.Nop())

	result, err := svc.Run(context.Background(), testTable(t))
	require.NoError(t, err)

	assert.Len(t, result.RunID, 26)
	assert.Equal(t, uint64(7), result.Seed)
	assert.Len(t, result.Ranked, 3)
	require.Equal(t, 2, result.Metrics.Len())
	assert.Equal(t, []string{"MXN/JPY", "AUD/JPY"}, result.Metrics.Labels())

	require.Len(t, store.runs, 1)
	run := store.runs[0]
	assert.Equal(t, result.RunID, run.ID)
	require.Len(t, run.Pairs, 2)
	assert.Equal(t, 1, run.Pairs[0].Rank)
	assert.Equal(t, "MXN/JPY", run.Pairs[0].Label)
	assert.Equal(t, "0.061", run.Pairs[0].Differential.String())

	require.Len(t, notifier.notes, 1)
	assert.Len(t, notifier.notes[0].Pairs, 2)
}

func TestRunIsReproducibleForSeed(t *testing.T) {
	a, err := New(testConfig(), nil, nil, zerolog.Nop()).Run(context.Background(), testTable(t))
	require.NoError(t, err)
	b, err := New(testConfig(), nil, nil, zerolog.Nop()).Run(context.Background(), testTable(t))
	require.NoError(t, err)
	assert.Equal(t, a.Metrics.Entries(), b.Metrics.Entries())
}

func TestRunSkipsNotificationBelowMinRatio(t *testing.T) {
	cfg := testConfig()
	cfg.Alerting.MinRatio = 1e9
	notifier := &recordingNotifier{}

	_, err := New(cfg, nil, notifier, zerolog.Nop()).Run(context.Background(), testTable(t))
	require.NoError(t, err)
	assert.Empty(t, notifier.notes)
}

func TestRunToleratesStoreFailure(t *testing.T) {
	store := &memoryRunStore{err: errors.New("boom")}
	_, err := New(testConfig(), store, nil, zerolog.Nop()).Run(context.Background(), testTable(t))
	assert.NoError(t, err)
}

func TestRunSurfacesSimulationErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Analysis.Days = -1
	_, err := New(cfg, nil, nil, zerolog.Nop()).Run(context.Background(), testTable(t))
	assert.ErrorIs(t, err, carry.ErrInvalidArgument)
}

func TestOptionsUnseededUsesClock(t *testing.T) {
	cfg := testConfig()
	cfg.Analysis.Seed = 0
	svc := New(cfg, nil, nil, zerolog.Nop())
	svc.now = func() time.Time { return time.Unix(0, 12345) }

	opts, seed := svc.Options()
	assert.Equal(t, uint64(12345), seed)
	assert.Equal(t, 2, opts.TopK)
}

func TestRunNotesPairsBelowMinRatio(t *testing.T) {
	cfg := testConfig()
	cfg.Analysis.Volatility = 0
	cfg.Alerting.MinRatio = 400
	notifier := &recordingNotifier{}

	_, err := New(cfg, nil, notifier, zerolog.Nop()).Run(context.Background(), testTable(t))
	require.NoError(t, err)

	require.Len(t, notifier.notes, 1)
	note := notifier.notes[0]
	require.Len(t, note.Pairs, 1)
	assert.Equal(t, "MXN/JPY", note.Pairs[0].Label)
	assert.Equal(t, "1 pair(s) below min ratio 400 omitted\n", note.AdditionalMsg)
}

func TestRunSkipsPersistingOverflowedMetrics(t *testing.T) {
	cfg := testConfig()
	cfg.Analysis.Principal = 1e308
	cfg.Analysis.Volatility = 0.05
	cfg.Analysis.Days = 120
	store := &memoryRunStore{}
	notifier := &recordingNotifier{}

	result, err := New(cfg, store, notifier, zerolog.Nop()).Run(context.Background(), testTable(t))
	require.NoError(t, err)
	require.Equal(t, 2, result.Metrics.Len())

	assert.Empty(t, store.runs, "decimal 无法表示 +Inf, 不应入库")
	assert.Empty(t, notifier.notes)
}

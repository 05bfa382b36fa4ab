package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"carry-trade-analyzer/internal/carry"
	"carry-trade-analyzer/internal/config"
)

func testApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{
		Analysis: config.AnalysisConfig{
			Principal:  100000,
			Days:       10,
			TopK:       5,
			Volatility: 0,
			Seed:       3,
			Workers:    1,
			Rates: []config.RateEntry{
				{Currency: "AUD", Rate: 0.04},
				{Currency: "JPY", Rate: -0.001},
			},
		},
		Export: config.ExportConfig{ChartWidth: 640, ChartHeight: 360},
	}
	var out bytes.Buffer
	a := NewApp(cfg, zerolog.Nop())
	a.Out = &out
	return a, &out
}

func TestParseRateOverrides(t *testing.T) {
	got, err := ParseRateOverrides([]string{"usd=0.0525", " NZD = 0.05 "})
	require.NoError(t, err)
	assert.Equal(t, []config.RateEntry{{Currency: "usd", Rate: 0.0525}, {Currency: "NZD", Rate: 0.05}}, got)

	for _, bad := range []string{"USD", "=0.1", "USD=abc"} {
		_, err := ParseRateOverrides([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestRateTableMergesOverrides(t *testing.T) {
	a, _ := testApp(t)
	table, err := a.RateTable([]config.RateEntry{{Currency: "aud", Rate: 0.05}, {Currency: "MXN", Rate: 0.06}})
	require.NoError(t, err)

	rates := table.Rates()
	require.Len(t, rates, 3)
	assert.Equal(t, carry.Rate{Currency: "AUD", Annual: 0.05}, rates[0])
	assert.Equal(t, "MXN", rates[2].Currency)
}

func TestAnalyzeReportAndExports(t *testing.T) {
	a, out := testApp(t)
	dir := t.TempDir()
	opts := AnalyzeOptions{
		CSVPath:  filepath.Join(dir, "out", "series.csv"),
		PNGPath:  filepath.Join(dir, "out", "chart.png"),
		YAMLPath: filepath.Join(dir, "summary.yaml"),
	}

	result, err := a.Analyze(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, 1, result.Metrics.Len())

	report := out.String()
	assert.Contains(t, report, "AUD/JPY")
	assert.Contains(t, report, "4.100")
	assert.Contains(t, report, "110.20")

	csvFile, err := os.Open(opts.CSVPath)
	require.NoError(t, err)
	defer csvFile.Close()
	records, err := csv.NewReader(csvFile).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 12)
	assert.Equal(t, []string{"pair", "day", "cumulative_return", "cumulative_risk"}, records[0])
	assert.Equal(t, []string{"AUD/JPY", "0", "0", "0"}, records[1])

	png, err := os.ReadFile(opts.PNGPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	raw, err := os.ReadFile(opts.YAMLPath)
	require.NoError(t, err)
	var doc summaryDoc
	require.NoError(t, yaml.Unmarshal(raw, &doc))
	assert.Equal(t, result.RunID, doc.RunID)
	require.Len(t, doc.Pairs, 1)
	assert.Equal(t, 1.0, doc.Pairs[0].FinalRisk)
}

func TestAnalyzeSingleCurrency(t *testing.T) {
	a, out := testApp(t)
	a.Config.Analysis.Rates = []config.RateEntry{{Currency: "USD", Rate: 0.05}}

	result, err := a.Analyze(context.Background(), AnalyzeOptions{})
	require.NoError(t, err)
	assert.Zero(t, result.Metrics.Len())
	assert.Contains(t, out.String(), "no currency pairs")
}

func TestRankAndLegacy(t *testing.T) {
	a, out := testApp(t)

	pairs, err := a.Rank(context.Background(), RankOptions{Rates: []config.RateEntry{{Currency: "NZD", Rate: 0.05}}})
	require.NoError(t, err)
	require.Len(t, pairs, 3)
	assert.Equal(t, "NZD/JPY", pairs[0].Label())
	assert.Contains(t, out.String(), "5100.00")

	out.Reset()
	estimates, err := a.Legacy(context.Background(), LegacyOptions{
		HighRates: []float64{0.04, 0.05, 0.06},
		LowRates:  []float64{-0.001, 0.001, 0.002},
	})
	require.NoError(t, err)
	require.Len(t, estimates, 3)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[3], "5800.00")
}

func TestHistoryRequiresDatabase(t *testing.T) {
	a, _ := testApp(t)
	assert.Error(t, a.History(context.Background(), HistoryOptions{Limit: 5}))
}

func TestAnalyzeContinuesWhenJournalUnreachable(t *testing.T) {
	a, out := testApp(t)
	a.Config.Database = config.DatabaseConfig{DSN: "postgres://u:p@127.0.0.1:1/db?connect_timeout=1"}

	result, err := a.Analyze(context.Background(), AnalyzeOptions{})
	require.NoError(t, err, "数据库不可用时分析仍应完成")
	require.Equal(t, 1, result.Metrics.Len())
	assert.Contains(t, out.String(), "AUD/JPY")

	assert.Error(t, a.History(context.Background(), HistoryOptions{Limit: 5}))
}

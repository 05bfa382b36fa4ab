package app

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"carry-trade-analyzer/internal/render"
	"carry-trade-analyzer/internal/service"
)

func (a *App) writeExports(result *service.Result, opts AnalyzeOptions) error {
	csvPath := firstNonEmpty(opts.CSVPath, a.Config.Export.CSVPath)
	pngPath := firstNonEmpty(opts.PNGPath, a.Config.Export.PNGPath)
	yamlPath := firstNonEmpty(opts.YAMLPath, a.Config.Export.YAMLPath)

	if csvPath != "" {
		if err := writeSeriesCSV(csvPath, result); err != nil {
			return err
		}
		a.Logger.Info().Str("path", csvPath).Msg("series exported (csv)")
	}

	if pngPath != "" && result.Metrics.Len() > 0 {
		if err := a.writeSeriesPNG(pngPath, result); err != nil {
			return err
		}
		a.Logger.Info().Str("path", pngPath).Msg("chart exported (png)")
	}

	if yamlPath != "" {
		if err := writeSummaryYAML(yamlPath, result); err != nil {
			return err
		}
		a.Logger.Info().Str("path", yamlPath).Msg("summary exported (yaml)")
	}

	return nil
}

func writeSeriesCSV(path string, result *service.Result) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"pair", "day", "cumulative_return", "cumulative_risk"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, m := range result.Metrics.Entries() {
		label := m.Pair.Label()
		for day := range m.Returns {
			record := []string{
				label,
				strconv.Itoa(day),
				strconv.FormatFloat(m.Returns[day], 'f', -1, 64),
				strconv.FormatFloat(m.Risks[day], 'f', -1, 64),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

func (a *App) writeSeriesPNG(path string, result *service.Result) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	series := make([]render.Series, 0, result.Metrics.Len())
	for _, m := range result.Metrics.Entries() {
		series = append(series, render.Series{Label: m.Pair.Label(), Returns: m.Returns, Risks: m.Risks})
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return render.Render(file, series, render.Options{
		Width:  a.Config.Export.ChartWidth,
		Height: a.Config.Export.ChartHeight,
	})
}

type summaryDoc struct {
	RunID      string        `yaml:"run_id"`
	StartedAt  time.Time     `yaml:"started_at"`
	Principal  float64       `yaml:"principal"`
	Days       int           `yaml:"days"`
	TopK       int           `yaml:"top_k"`
	Volatility float64       `yaml:"volatility"`
	Seed       uint64        `yaml:"seed"`
	Pairs      []summaryPair `yaml:"pairs"`
}

type summaryPair struct {
	Pair            string  `yaml:"pair"`
	HighRate        float64 `yaml:"high_rate"`
	LowRate         float64 `yaml:"low_rate"`
	Differential    float64 `yaml:"differential"`
	FinalReturn     float64 `yaml:"final_return"`
	FinalRisk       float64 `yaml:"final_risk"`
	ReturnRiskRatio float64 `yaml:"return_risk_ratio"`
}

func writeSummaryYAML(path string, result *service.Result) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	doc := summaryDoc{
		RunID:      result.RunID,
		StartedAt:  result.StartedAt,
		Principal:  result.Options.Principal,
		Days:       result.Options.Days,
		TopK:       result.Options.TopK,
		Volatility: result.Options.Volatility,
		Seed:       result.Seed,
		Pairs:      make([]summaryPair, 0, result.Metrics.Len()),
	}
	for _, m := range result.Metrics.Entries() {
		doc.Pairs = append(doc.Pairs, summaryPair{
			Pair:            m.Pair.Label(),
			HighRate:        m.Pair.HighRate,
			LowRate:         m.Pair.LowRate,
			Differential:    m.Pair.Differential,
			FinalReturn:     m.FinalReturn,
			FinalRisk:       m.FinalRisk,
			ReturnRiskRatio: m.ReturnRiskRatio,
		})
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := yaml.NewEncoder(file)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

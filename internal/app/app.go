package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"carry-trade-analyzer/internal/alerting"
	"carry-trade-analyzer/internal/carry"
	"carry-trade-analyzer/internal/config"
	"carry-trade-analyzer/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Out    io.Writer
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger(), Out: os.Stdout}
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Enabled && a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Config.Alerting.MaxElapsed, a.Logger)
	}
	return nil
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	store, err := storage.Open(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, nil, err
	}
	return store, store.Close, nil
}

// RateTable builds the rate table from configuration merged with CLI
// overrides. Overrides replace a configured currency in place or append it.
func (a *App) RateTable(overrides []config.RateEntry) (carry.RateTable, error) {
	entries := append([]config.RateEntry(nil), a.Config.ResolveRates()...)
	for _, o := range overrides {
		replaced := false
		for i := range entries {
			if strings.EqualFold(entries[i].Currency, o.Currency) {
				entries[i].Rate = o.Rate
				replaced = true
				break
			}
		}
		if !replaced {
			entries = append(entries, o)
		}
	}

	rates := make([]carry.Rate, 0, len(entries))
	for _, e := range entries {
		rates = append(rates, carry.Rate{Currency: e.Currency, Annual: e.Rate})
	}
	return carry.NewRateTable(rates...)
}

// ParseRateOverrides parses CODE=RATE pairs such as "AUD=0.04".
func ParseRateOverrides(values []string) ([]config.RateEntry, error) {
	out := make([]config.RateEntry, 0, len(values))
	for _, raw := range values {
		code, rateStr, ok := strings.Cut(raw, "=")
		code = strings.TrimSpace(code)
		if !ok || code == "" {
			return nil, fmt.Errorf("invalid rate %q: expected CODE=RATE", raw)
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(rateStr), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid rate %q: %w", raw, err)
		}
		out = append(out, config.RateEntry{Currency: code, Rate: rate})
	}
	return out, nil
}

// AnalyzeOptions hold per-run outputs and rate overrides. Numeric
// parameters are applied to Config.Analysis by the CLI.
type AnalyzeOptions struct {
	Rates     []config.RateEntry
	PNGPath   string
	CSVPath   string
	YAMLPath  string
	NoPersist bool
}

// RankOptions configure the rank command.
type RankOptions struct {
	Rates []config.RateEntry
	Limit int
}

// LegacyOptions configure the legacy simple estimate command.
type LegacyOptions struct {
	HighRates []float64
	LowRates  []float64
	Principal float64
}

// HistoryOptions configure the history command.
type HistoryOptions struct {
	Limit      int
	RunID      string
	PruneAfter time.Duration
}

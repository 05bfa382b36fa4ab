package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// AnalysisRun represents one persisted analysis invocation.
type AnalysisRun struct {
	ID         string
	StartedAt  time.Time
	Principal  decimal.Decimal
	Days       int
	TopK       int
	Volatility decimal.Decimal
	Seed       uint64
	Pairs      []PairResult
	CreatedAt  time.Time
}

// PairResult captures the summary of one simulated pair within a run.
type PairResult struct {
	RunID        string
	Rank         int
	Label        string
	High         string
	Low          string
	HighRate     decimal.Decimal
	LowRate      decimal.Decimal
	Differential decimal.Decimal
	FinalReturn  decimal.Decimal
	RawFinalRisk decimal.Decimal
	FinalRisk    decimal.Decimal
	Ratio        decimal.Decimal
}

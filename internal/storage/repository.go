package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	schemaSQL = `CREATE TABLE IF NOT EXISTS analysis_runs (
        id          TEXT PRIMARY KEY,
        started_at  TIMESTAMPTZ NOT NULL,
        principal   NUMERIC NOT NULL,
        days        INTEGER NOT NULL,
        top_k       INTEGER NOT NULL,
        volatility  NUMERIC NOT NULL,
        seed        NUMERIC NOT NULL,
        created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
    );
    CREATE TABLE IF NOT EXISTS pair_results (
        run_id          TEXT NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
        rank            INTEGER NOT NULL,
        label           TEXT NOT NULL,
        high_currency   TEXT NOT NULL,
        low_currency    TEXT NOT NULL,
        high_rate       NUMERIC NOT NULL,
        low_rate        NUMERIC NOT NULL,
        differential    NUMERIC NOT NULL,
        final_return    NUMERIC NOT NULL,
        raw_final_risk  NUMERIC NOT NULL,
        final_risk      NUMERIC NOT NULL,
        ratio           NUMERIC NOT NULL,
        PRIMARY KEY (run_id, rank)
    );`

	insertRunSQL = `INSERT INTO analysis_runs (
        id,
        started_at,
        principal,
        days,
        top_k,
        volatility,
        seed
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7
    );`

	insertPairResultSQL = `INSERT INTO pair_results (
        run_id,
        rank,
        label,
        high_currency,
        low_currency,
        high_rate,
        low_rate,
        differential,
        final_return,
        raw_final_risk,
        final_risk,
        ratio
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
    );`

	listRecentRunsSQL = `SELECT
        id,
        started_at,
        principal::text,
        days,
        top_k,
        volatility::text,
        seed::text,
        created_at
    FROM analysis_runs
    ORDER BY id DESC
    LIMIT $1;`

	listPairResultsSQL = `SELECT
        run_id,
        rank,
        label,
        high_currency,
        low_currency,
        high_rate::text,
        low_rate::text,
        differential::text,
        final_return::text,
        raw_final_risk::text,
        final_risk::text,
        ratio::text
    FROM pair_results
    WHERE run_id = $1
    ORDER BY rank;`

	deleteRunsBeforeSQL = `DELETE FROM analysis_runs WHERE created_at < $1;`
)

// RunStore defines operations for the analysis run journal.
type RunStore interface {
	InsertRun(ctx context.Context, run AnalysisRun) error
	ListRecentRuns(ctx context.Context, limit int) ([]AnalysisRun, error)
	ListPairResults(ctx context.Context, runID string) ([]PairResult, error)
	DeleteRunsBefore(ctx context.Context, olderThan time.Time) error
}

// Store persists analysis runs in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// EnsureSchema creates the journal tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, schemaSQL); execErr != nil {
		return fmt.Errorf("ensure schema: %w", execErr)
	}
	return nil
}

// InsertRun writes a run and its pair results in one transaction.
func (s *Store) InsertRun(ctx context.Context, run AnalysisRun) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, execErr := tx.Exec(ctx, insertRunSQL,
			run.ID,
			run.StartedAt,
			run.Principal.String(),
			run.Days,
			run.TopK,
			run.Volatility.String(),
			decimal.NewFromUint64(run.Seed).String(),
		); execErr != nil {
			return fmt.Errorf("insert analysis run: %w", execErr)
		}

		batch := &pgx.Batch{}
		for _, pr := range run.Pairs {
			batch.Queue(insertPairResultSQL,
				run.ID,
				pr.Rank,
				pr.Label,
				pr.High,
				pr.Low,
				pr.HighRate.String(),
				pr.LowRate.String(),
				pr.Differential.String(),
				pr.FinalReturn.String(),
				pr.RawFinalRisk.String(),
				pr.FinalRisk.String(),
				pr.Ratio.String(),
			)
		}
		if batch.Len() == 0 {
			return nil
		}
		if batchErr := tx.SendBatch(ctx, batch).Close(); batchErr != nil {
			return fmt.Errorf("insert pair results: %w", batchErr)
		}
		return nil
	})
}

// ListRecentRuns lists the most recent runs, newest first, without pair results.
func (s *Store) ListRecentRuns(ctx context.Context, limit int) ([]AnalysisRun, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentRunsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent runs: %w", queryErr)
	}
	defer rows.Close()

	runs := make([]AnalysisRun, 0, limit)
	for rows.Next() {
		run, scanErr := scanRun(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		runs = append(runs, run)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return runs, nil
}

// ListPairResults lists the pair results of one run in rank order.
func (s *Store) ListPairResults(ctx context.Context, runID string) ([]PairResult, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listPairResultsSQL, runID)
	if queryErr != nil {
		return nil, fmt.Errorf("list pair results: %w", queryErr)
	}
	defer rows.Close()

	results := make([]PairResult, 0)
	for rows.Next() {
		pr, scanErr := scanPairResult(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		results = append(results, pr)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return results, nil
}

// DeleteRunsBefore prunes the journal; pair results cascade.
func (s *Store) DeleteRunsBefore(ctx context.Context, olderThan time.Time) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, deleteRunsBeforeSQL, olderThan); execErr != nil {
		return fmt.Errorf("delete runs before: %w", execErr)
	}
	return nil
}

func scanRun(rows pgx.Rows) (AnalysisRun, error) {
	var (
		run           AnalysisRun
		principalStr  string
		volatilityStr string
		seedStr       string
	)
	if err := rows.Scan(
		&run.ID,
		&run.StartedAt,
		&principalStr,
		&run.Days,
		&run.TopK,
		&volatilityStr,
		&seedStr,
		&run.CreatedAt,
	); err != nil {
		return AnalysisRun{}, err
	}

	var err error
	if run.Principal, err = decimal.NewFromString(principalStr); err != nil {
		return AnalysisRun{}, fmt.Errorf("parse principal: %w", err)
	}
	if run.Volatility, err = decimal.NewFromString(volatilityStr); err != nil {
		return AnalysisRun{}, fmt.Errorf("parse volatility: %w", err)
	}
	seed, err := decimal.NewFromString(seedStr)
	if err != nil {
		return AnalysisRun{}, fmt.Errorf("parse seed: %w", err)
	}
	run.Seed = seed.BigInt().Uint64()
	return run, nil
}

func scanPairResult(rows pgx.Rows) (PairResult, error) {
	var (
		pr   PairResult
		nums [7]string
	)
	if err := rows.Scan(
		&pr.RunID,
		&pr.Rank,
		&pr.Label,
		&pr.High,
		&pr.Low,
		&nums[0],
		&nums[1],
		&nums[2],
		&nums[3],
		&nums[4],
		&nums[5],
		&nums[6],
	); err != nil {
		return PairResult{}, err
	}

	targets := []*decimal.Decimal{
		&pr.HighRate,
		&pr.LowRate,
		&pr.Differential,
		&pr.FinalReturn,
		&pr.RawFinalRisk,
		&pr.FinalRisk,
		&pr.Ratio,
	}
	for i, target := range targets {
		value, err := decimal.NewFromString(nums[i])
		if err != nil {
			return PairResult{}, fmt.Errorf("parse pair result column %d: %w", i, err)
		}
		*target = value
	}
	return pr, nil
}

var _ RunStore = (*Store)(nil)

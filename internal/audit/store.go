// Package audit keeps an append-only history of analysis runs in sqlite and
// derives historical category averages from it.
package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"expense-tracker/internal/analysis"

	_ "modernc.org/sqlite"
)

// DefaultListLimit is used when ListRuns is called without a positive limit
const DefaultListLimit = 20

var ErrRunNotFound = errors.New("run not found")

// Run is one recorded analysis pass
type Run struct {
	ID               string          `json:"id"`
	RunAt            time.Time       `json:"run_at"`
	Source           string          `json:"source"`
	TransactionCount int             `json:"transaction_count"`
	TotalSpend       decimal.Decimal `json:"total_spend"`
	TotalBudget      decimal.Decimal `json:"total_budget"`
	Score            int             `json:"score"`
	Explanation      string          `json:"explanation"`
	AlertCount       int             `json:"alert_count"`

	CategoryTotals analysis.Totals  `json:"category_totals,omitempty"`
	Alerts         []analysis.Alert `json:"alerts,omitempty"`
}

// RunFromReport captures the auditable parts of a report
func RunFromReport(runAt time.Time, source string, report analysis.Report) Run {
	totals := make(analysis.Totals, len(report.CategoryTotals))
	for category, amount := range report.CategoryTotals {
		totals[category] = amount
	}
	return Run{
		RunAt:            runAt,
		Source:           source,
		TransactionCount: report.TransactionCount,
		TotalSpend:       report.TotalSpend,
		TotalBudget:      report.TotalBudget,
		Score:            report.Score.Value,
		Explanation:      report.Score.Explanation,
		AlertCount:       len(report.Alerts),
		CategoryTotals:   totals,
		Alerts:           append([]analysis.Alert(nil), report.Alerts...),
	}
}

// Store is the sqlite-backed audit history
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates the database file if needed, applies migrations and returns
// a ready store.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger.With("system", "audit"),
	}, nil
}

// Close releases the database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun appends a run with its category totals and alerts in a single
// transaction. A run without an ID gets a new UUID; the stored run is
// returned.
func (s *Store) RecordRun(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.RunAt.IsZero() {
		run.RunAt = time.Now()
	}
	run.AlertCount = len(run.Alerts)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, run_at, source, transaction_count, total_spend, total_budget, score, explanation)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.RunAt.UTC().Format(time.RFC3339Nano), run.Source, run.TransactionCount,
		run.TotalSpend.String(), run.TotalBudget.String(), run.Score, run.Explanation)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}

	categories := make([]string, 0, len(run.CategoryTotals))
	for category := range run.CategoryTotals {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_category_totals (run_id, category, amount) VALUES (?, ?, ?)`,
			run.ID, category, run.CategoryTotals[category].String())
		if err != nil {
			return Run{}, fmt.Errorf("insert total for %s: %w", category, err)
		}
	}

	for _, alert := range run.Alerts {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_alerts (run_id, category, budget, actual, variance, severity) VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, alert.Category, alert.Budget.String(), alert.Actual.String(), alert.Variance.String(), alert.Severity.String())
		if err != nil {
			return Run{}, fmt.Errorf("insert alert for %s: %w", alert.Category, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit run: %w", err)
	}

	s.logger.DebugContext(ctx, "Recorded run",
		"id", run.ID,
		"transactions", run.TransactionCount,
		"score", run.Score,
		"alerts", run.AlertCount)

	return run, nil
}

const runColumns = `r.id, r.run_at, r.source, r.transaction_count, r.total_spend, r.total_budget, r.score, r.explanation,
	(SELECT COUNT(*) FROM run_alerts a WHERE a.run_id = r.id)`

// ListRuns returns run summaries, newest first. Category totals and alerts
// are not loaded; use GetRun for those.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs r ORDER BY r.seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun loads a single run with its category totals and alerts
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs r WHERE r.id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, err
	}

	run.CategoryTotals, err = s.categoryTotals(ctx, id)
	if err != nil {
		return Run{}, err
	}
	run.Alerts, err = s.alerts(ctx, id)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

func (s *Store) categoryTotals(ctx context.Context, runID string) (analysis.Totals, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, amount FROM run_category_totals WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("get category totals: %w", err)
	}
	defer rows.Close()

	totals := analysis.Totals{}
	for rows.Next() {
		var category string
		var amount decimal.Decimal
		if err := rows.Scan(&category, &amount); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals[category] = amount
	}
	return totals, rows.Err()
}

func (s *Store) alerts(ctx context.Context, runID string) ([]analysis.Alert, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, budget, actual, variance, severity FROM run_alerts WHERE run_id = ? ORDER BY category`, runID)
	if err != nil {
		return nil, fmt.Errorf("get alerts: %w", err)
	}
	defer rows.Close()

	var alerts []analysis.Alert
	for rows.Next() {
		var alert analysis.Alert
		var severity string
		if err := rows.Scan(&alert.Category, &alert.Budget, &alert.Actual, &alert.Variance, &severity); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alert.Severity = analysis.Severity(severity)
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

// HistoricalAverages averages each category's total over the last lookback
// runs. A category missing from a run counts as zero spend for that run.
// With no runs, or lookback <= 0, the result is empty.
func (s *Store) HistoricalAverages(ctx context.Context, lookback int) (analysis.Averages, error) {
	averages := analysis.Averages{}
	if lookback <= 0 {
		return averages, nil
	}

	var runCount int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM (SELECT id FROM runs ORDER BY seq DESC LIMIT ?)`, lookback).Scan(&runCount)
	if err != nil {
		return nil, fmt.Errorf("count runs: %w", err)
	}
	if runCount == 0 {
		return averages, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT t.category, t.amount
		 FROM run_category_totals t
		 JOIN (SELECT id FROM runs ORDER BY seq DESC LIMIT ?) recent ON recent.id = t.run_id`, lookback)
	if err != nil {
		return nil, fmt.Errorf("get recent totals: %w", err)
	}
	defer rows.Close()

	sums := map[string]decimal.Decimal{}
	for rows.Next() {
		var category string
		var amount decimal.Decimal
		if err := rows.Scan(&category, &amount); err != nil {
			return nil, fmt.Errorf("scan recent total: %w", err)
		}
		sums[category] = sums[category].Add(amount)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent totals: %w", err)
	}

	divisor := decimal.NewFromInt(int64(runCount))
	for category, sum := range sums {
		averages[category] = sum.Div(divisor)
	}

	s.logger.DebugContext(ctx, "Computed historical averages", "runs", runCount, "categories", len(averages))
	return averages, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var runAt string
	err := row.Scan(&run.ID, &runAt, &run.Source, &run.TransactionCount,
		&run.TotalSpend, &run.TotalBudget, &run.Score, &run.Explanation, &run.AlertCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	run.RunAt, err = time.Parse(time.RFC3339Nano, runAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse run time %q: %w", runAt, err)
	}
	return run, nil
}

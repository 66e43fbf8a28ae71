// Package pipeline wires loading, categorization, analysis and auditing
// into the single flow shared by the CLI and the HTTP server.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"expense-tracker/internal/analysis"
	"expense-tracker/internal/audit"
	"expense-tracker/internal/categorizer"
	"expense-tracker/internal/config"
	"expense-tracker/internal/models"
	"expense-tracker/internal/parser"
	"expense-tracker/internal/writer"
)

// HistoryStore records runs and serves baselines derived from past runs
type HistoryStore interface {
	RecordRun(ctx context.Context, run audit.Run) (audit.Run, error)
	HistoricalAverages(ctx context.Context, lookback int) (analysis.Averages, error)
}

// Baseline sources reported in Inputs
const (
	BaselineNone    = "none"
	BaselineFile    = "file"
	BaselineHistory = "history"
)

// Inputs is everything besides transactions that one analysis pass needs
type Inputs struct {
	Budgets            models.Budgets
	UsedDefaultBudgets bool
	Averages           analysis.Averages
	BaselineSource     string
}

// Pipeline runs the report flow for one configuration
type Pipeline struct {
	cfg      *config.Config
	parser   *parser.Parser
	store    HistoryStore
	alertLog *writer.AlertLog
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a pipeline. store may be nil, in which case baselines come
// only from the averages file and runs are not persisted to the database.
func New(cfg *config.Config, store HistoryStore, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	cat := categorizer.New(cfg.Categories.Keywords)
	return &Pipeline{
		cfg:      cfg,
		parser:   parser.New(cat, logger),
		store:    store,
		alertLog: writer.NewAlertLog(cfg.Paths.AlertLog),
		logger:   logger.With("system", "pipeline"),
		now:      time.Now,
	}
}

// LoadTransactions parses and categorizes the configured transactions file
func (p *Pipeline) LoadTransactions() (parser.Result, error) {
	result, err := p.parser.ParseFile(p.cfg.Paths.Transactions)
	if err != nil {
		return parser.Result{}, err
	}
	if result.Dropped > 0 {
		p.logger.Warn("Dropped invalid rows", "file", p.cfg.Paths.Transactions, "dropped", result.Dropped)
	}
	return result, nil
}

// LoadInputs loads the budget table and historical baselines. Neither is
// fatal: budgets fall back to the configured defaults, and baselines fall
// back from the averages file to audit history to none at all.
func (p *Pipeline) LoadInputs(ctx context.Context) Inputs {
	var in Inputs

	budgets, usedDefaults, err := parser.LoadBudgets(p.cfg.Paths.Budgets, p.cfg.BudgetTable())
	if err != nil {
		p.logger.Warn("Using default budgets", "file", p.cfg.Paths.Budgets, "error", err)
	}
	in.Budgets = budgets
	in.UsedDefaultBudgets = usedDefaults

	in.Averages, in.BaselineSource = p.loadAverages(ctx)
	return in
}

func (p *Pipeline) loadAverages(ctx context.Context) (analysis.Averages, string) {
	if p.cfg.Paths.Averages != "" {
		averages, err := parser.LoadAverages(p.cfg.Paths.Averages)
		if err == nil {
			return averages, BaselineFile
		}
		p.logger.Warn("Ignoring averages file", "file", p.cfg.Paths.Averages, "error", err)
	}

	if p.store != nil && p.cfg.Analysis.HistoryLookback > 0 {
		averages, err := p.store.HistoricalAverages(ctx, p.cfg.Analysis.HistoryLookback)
		if err != nil {
			p.logger.Warn("Could not load audit history", "error", err)
		} else if len(averages) > 0 {
			return averages, BaselineHistory
		}
	}

	return analysis.Averages{}, BaselineNone
}

// Analyze runs the engine over a private snapshot of txs
func (p *Pipeline) Analyze(ctx context.Context, txs []models.Transaction) analysis.Report {
	in := p.LoadInputs(ctx)
	threshold := p.cfg.AnomalyThreshold()
	report := analysis.Analyze(analysis.Input{
		Transactions:       models.Snapshot(txs),
		Budgets:            in.Budgets,
		HistoricalAverages: in.Averages,
		AnomalyThreshold:   &threshold,
	})

	p.logger.Debug("Analyzed snapshot",
		"transactions", report.TransactionCount,
		"alerts", len(report.Alerts),
		"anomalies", len(report.Anomalies),
		"baseline", in.BaselineSource,
		"score", report.Score.Value)
	return report
}

// Report loads the transactions file and analyzes it
func (p *Pipeline) Report(ctx context.Context) (analysis.Report, error) {
	result, err := p.LoadTransactions()
	if err != nil {
		return analysis.Report{}, err
	}
	return p.Analyze(ctx, result.Transactions), nil
}

// Record appends the report to the alert log, the text audit log and, when
// a store is configured, the audit database.
func (p *Pipeline) Record(ctx context.Context, report analysis.Report) (audit.Run, error) {
	run := audit.RunFromReport(p.now(), p.cfg.Paths.Transactions, report)

	if p.cfg.Paths.AlertLog != "" {
		if err := p.alertLog.Append(run.RunAt, report.Alerts); err != nil {
			return run, fmt.Errorf("failed to write alert log: %w", err)
		}
	}
	if p.cfg.Paths.AuditLog != "" {
		if err := audit.AppendTextLog(p.cfg.Paths.AuditLog, run); err != nil {
			return run, fmt.Errorf("failed to write audit log: %w", err)
		}
	}
	if p.store != nil {
		saved, err := p.store.RecordRun(ctx, run)
		if err != nil {
			return run, fmt.Errorf("failed to record run: %w", err)
		}
		run = saved
	}

	p.logger.Info("Recorded run", "id", run.ID, "alerts", run.AlertCount, "score", run.Score)
	return run, nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"expense-tracker/internal/audit"
	"expense-tracker/internal/config"
	"expense-tracker/internal/logging"
	"expense-tracker/internal/models"
	"expense-tracker/internal/pipeline"
	"expense-tracker/internal/writer"
)

var (
	configPath       string
	transactionsPath string
	budgetsPath      string
	averagesPath     string
	anomalyThreshold float64
	noColor          bool
	noAudit          bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "expense-tracker",
	Short: "Analyze spending against category budgets",
	Long: `A CLI tool that loads a transactions CSV, categorizes each expense,
compares category totals against budgets and prints an executive summary
with budget alerts, spending anomalies, an efficiency score and the top
cost drivers. Every run is appended to the audit history.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to the YAML config file")
	RootCmd.PersistentFlags().StringVarP(&transactionsPath, "transactions", "t", "", "Transactions CSV (overrides config)")
	RootCmd.PersistentFlags().StringVarP(&budgetsPath, "budgets", "b", "", "Budgets CSV (overrides config)")
	RootCmd.PersistentFlags().StringVar(&averagesPath, "averages", "", "Historical averages CSV (overrides audit history)")
	RootCmd.PersistentFlags().Float64Var(&anomalyThreshold, "threshold", 0, "Anomaly threshold as a fraction, e.g. 0.3 (overrides config)")
	RootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	RootCmd.PersistentFlags().BoolVar(&noAudit, "no-audit", false, "Do not read or write the audit history")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	p := pipeline.New(cfg, historyStore(store), logger)
	result, err := p.LoadTransactions()
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}

	return report(cmd.Context(), cmd.OutOrStdout(), p, result.Transactions)
}

// setup loads .env and the config file, applies flag overrides and builds
// the logger.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, nil, err
	}

	var cfg *config.Config
	if cmd.Flags().Changed("config") {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = config.LoadOrEnv(configPath)
	}

	if transactionsPath != "" {
		cfg.Paths.Transactions = transactionsPath
	}
	if budgetsPath != "" {
		cfg.Paths.Budgets = budgetsPath
	}
	if averagesPath != "" {
		cfg.Paths.Averages = averagesPath
	}
	if cmd.Flags().Changed("threshold") {
		cfg.Analysis.AnomalyThreshold = anomalyThreshold
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	if noColor {
		color.NoColor = true
	}

	return cfg, logging.NewLogger(cfg.Observability.Logging), nil
}

// openStore opens the audit database unless auditing is disabled, in which
// case it returns nil.
func openStore(cfg *config.Config, logger *slog.Logger) (*audit.Store, error) {
	if noAudit {
		return nil, nil
	}
	if cfg.Paths.Database == "" {
		return nil, errors.New("database path is empty: set paths.database or use --no-audit")
	}
	store, err := audit.Open(cfg.Paths.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	return store, nil
}

// historyStore keeps a nil *audit.Store from becoming a non-nil interface
func historyStore(store *audit.Store) pipeline.HistoryStore {
	if store == nil {
		return nil
	}
	return store
}

// report analyzes a snapshot, prints it and records the run
func report(ctx context.Context, out io.Writer, p *pipeline.Pipeline, txs []models.Transaction) error {
	if ctx == nil {
		ctx = context.Background()
	}

	r := p.Analyze(ctx, txs)
	if err := writer.NewRenderer(noColor).Render(out, r); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if noAudit {
		return nil
	}
	if _, err := p.Record(ctx, r); err != nil {
		return err
	}
	return nil
}

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"expense-tracker/internal/editor"
	"expense-tracker/internal/parser"
	"expense-tracker/internal/pipeline"
	"expense-tracker/internal/writer"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Add, edit or delete transactions interactively",
	Long: `Opens a menu to add, edit or delete transactions. Changes are saved
back to the transactions CSV when you continue to analysis or exit.`,
	Args: cobra.NoArgs,
	RunE: runEdit,
}

func init() {
	RootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
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
	if errors.Is(err, parser.ErrFileNotFound) {
		logger.Warn("Starting with no transactions", "file", cfg.Paths.Transactions)
	} else if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}

	session := editor.NewSession(result.Transactions)
	action, err := editor.NewConsole(session, cmd.InOrStdin(), cmd.OutOrStdout()).Run()
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	if session.Dirty() {
		if err := writer.New(logger).WriteTransactions(cfg.Paths.Transactions, session.Snapshot()); err != nil {
			return fmt.Errorf("failed to save transactions: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Changes saved.")
	}

	if action != editor.ActionAnalyze {
		return nil
	}
	return report(cmd.Context(), cmd.OutOrStdout(), p, session.Snapshot())
}

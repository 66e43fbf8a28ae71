package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"expense-tracker/internal/pipeline"
	"expense-tracker/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve reports and audit history over HTTP",
	Long: `Starts a read-only HTTP API:

  GET /health          liveness check
  GET /api/report      report computed from the current files
  GET /api/runs        recent runs (?limit=N)
  GET /api/runs/:id    one run with category totals and alerts`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides config)")
	RootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}

	var runs server.RunReader
	if store != nil {
		defer store.Close()
		runs = store
	}

	p := pipeline.New(cfg, historyStore(store), logger)
	srv := server.New(p, runs, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx, fmt.Sprintf(":%d", cfg.Server.Port))
}

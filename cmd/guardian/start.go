package main

import (
	"os"
	"os/signal"

	"github.com/sandevgo/guardian/pkg/log"
	"github.com/sandevgo/guardian/pkg/srv"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the Guardian services",
	Long:  `Starts the background workers (reindexer, retention) and, when enabled, the Telegram transport. Runs until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// logger setup
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting guardian")

		app := NewApp(ctx)

		srv.StartServices(ctx, app.Services)

		// Wait for shutdown signal
		srv.ShutdownServices(ctx, app.Services)
		logger.Info().Msg("guardian has been shut down gracefully")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}

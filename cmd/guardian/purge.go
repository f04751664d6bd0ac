package main

import (
	"fmt"
	"time"

	"github.com/sandevgo/guardian/pkg/log"
	"github.com/spf13/cobra"
)

var purgeOlderThanDays int

var purgeCmd = &cobra.Command{
	Use:           "purge",
	Short:         "Delete documents older than the retention window",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		app := NewApp(ctx)
		defer app.Close(ctx)

		days := purgeOlderThanDays
		if days <= 0 {
			days = app.Cfg.RetentionDays
		}
		cutoff := time.Now().Add(-time.Duration(days) * 24 * time.Hour)

		ids, err := app.Repo.Purge(ctx, cutoff)
		if err != nil {
			return err
		}
		for _, id := range ids {
			app.Index.Remove(id)
		}

		log.FromCtx(ctx).Info().Int("documents", len(ids)).Int("older_than_days", days).Msg("purge finished")
		fmt.Printf("purged %d documents\n", len(ids))
		return nil
	},
}

func init() {
	purgeCmd.Flags().IntVar(&purgeOlderThanDays, "older-than-days", 0, "override the retention window in days")
	rootCmd.AddCommand(purgeCmd)
}

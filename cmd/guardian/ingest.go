package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sandevgo/guardian/internal/core"
	"github.com/sandevgo/guardian/pkg/log"
	"github.com/spf13/cobra"
)

var ingestSeed bool

var ingestCmd = &cobra.Command{
	Use:           "ingest [feed.json...]",
	Short:         "Load climate facts into the knowledge base",
	Long:          `Reads JSON feed files (arrays of facts) and stores them. A fresher fact for the same category and subject supersedes the stored one. Use --seed to load the built-in knowledge articles.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()
		logger := log.FromCtx(ctx)

		if !ingestSeed && len(args) == 0 {
			return fmt.Errorf("nothing to ingest: pass feed files or --seed")
		}

		app := NewApp(ctx)
		defer app.Close(ctx)

		var total int
		if ingestSeed {
			n, err := app.Ingestor.Seed(ctx)
			if err != nil {
				return err
			}
			total += n
		}

		for _, path := range args {
			facts, err := readFeed(path)
			if err != nil {
				return fmt.Errorf("failed to read feed %s: %w", path, err)
			}

			n, err := app.Ingestor.IngestFacts(ctx, facts)
			if err != nil {
				return err
			}
			logger.Info().Str("feed", path).Int("stored", n).Int("skipped", len(facts)-n).Msg("feed ingested")
			total += n
		}

		fmt.Printf("ingested %d documents\n", total)
		return nil
	},
}

func readFeed(path string) ([]core.Fact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var facts []core.Fact
	if err := json.Unmarshal(data, &facts); err != nil {
		return nil, err
	}
	return facts, nil
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestSeed, "seed", false, "load the built-in knowledge articles")
	rootCmd.AddCommand(ingestCmd)
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sandevgo/guardian/internal/config"
	"github.com/sandevgo/guardian/pkg/env"
	"github.com/sandevgo/guardian/pkg/log"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:           "init",
	Short:         "Create the runtime directory and a starter .env",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()
		logger := log.FromCtx(ctx)

		runtimePath := config.GetRuntimePath()
		if err := os.MkdirAll(runtimePath, 0o755); err != nil {
			return err
		}

		envPath := filepath.Join(runtimePath, ".env")
		if _, err := os.Stat(envPath); err == nil {
			logger.Info().Str("path", envPath).Msg(".env already exists, leaving it alone")
			return nil
		}

		content, err := starterEnv()
		if err != nil {
			return err
		}
		if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
			return err
		}

		logger.Info().Msgf("initialized runtime directory at: %s", runtimePath)
		logger.Info().Msg("Edit the .env with your API key, then run 'guardian ingest --seed'.")
		return nil
	},
}

// starterEnv renders the defaults worth editing. Durations and tuning
// knobs stay commented so the parser defaults keep applying until someone
// deliberately overrides them.
func starterEnv() (string, error) {
	appPart, err := env.MarshalEnv(&config.AppConfig{
		LLMProvider:       "openai",
		EmbeddingProvider: "hashing",
		RetentionDays:     365,
		ReindexInterval:   5,
	})
	if err != nil {
		return "", err
	}

	provPart, err := env.MarshalEnv(&config.ProvidersConfig{
		Model:          "gpt-4o-mini",
		EmbeddingModel: "text-embedding-3-small",
	})
	if err != nil {
		return "", err
	}

	extras := `
# OPENAI_API_KEY=
# EMBEDDING_PROVIDER=openai to use hosted embeddings
# ENABLE_TELEGRAM=true plus TELEGRAM_TOKEN and TELEGRAM_OWNER_ID
# RETRIEVAL_TOP_K=5
# RETRIEVAL_MIN_SIMILARITY=0.15
# CONTEXT_BUDGET_TOKENS=1800
# GENERATION_TIMEOUT=10s
# GENERATION_MAX_RETRIES=2
`
	return fmt.Sprintf("%s\n%s%s", appPart, provPart, extras), nil
}

func init() {
	rootCmd.AddCommand(initCmd)
}

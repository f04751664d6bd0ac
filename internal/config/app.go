package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/guardian/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"GUARDIAN_RUNTIME_PATH" envDefault:".guardian"`

	// Generation and embedding backends
	LLMProvider       string `env:"LLM_PROVIDER" envDefault:"openai"`
	EmbeddingProvider string `env:"EMBEDDING_PROVIDER" envDefault:"hashing"`

	// Transport flags
	EnableTelegram bool `env:"ENABLE_TELEGRAM" envDefault:"false"`

	// Knowledge lifecycle
	RetentionDays   int `env:"KNOWLEDGE_RETENTION_DAYS" envDefault:"365"`
	ReindexInterval int `env:"REINDEX_INTERVAL_MINUTES" envDefault:"5"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return expandRuntimePath(c.RuntimePath)
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(expandRuntimePath(c.RuntimePath), "guardian.db")
}

package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/guardian/pkg/log"
)

type GenerationConfig struct {
	RequestTimeout  time.Duration `env:"GENERATION_TIMEOUT" envDefault:"10s"`
	MaxRetries      int           `env:"GENERATION_MAX_RETRIES" envDefault:"2"`
	BackoffBase     time.Duration `env:"GENERATION_BACKOFF_BASE" envDefault:"1s"`
	BackoffFactor   float64       `env:"GENERATION_BACKOFF_FACTOR" envDefault:"2"`
	MaxOutputTokens int           `env:"GENERATION_MAX_TOKENS" envDefault:"1024"`
	Temperature     float64       `env:"GENERATION_TEMPERATURE" envDefault:"0.3"`
}

func NewGenerationConfig(ctx context.Context) *GenerationConfig {
	c := &GenerationConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Generation config")
	}
	return c
}

package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/guardian/pkg/log"
)

// RetrievalConfig tunes the retriever and the context composer. The
// defaults are starting points, not contracts; the end-to-end tests pin
// behavior, not these numbers.
type RetrievalConfig struct {
	TopK                int     `env:"RETRIEVAL_TOP_K" envDefault:"5"`
	MinSimilarity       float64 `env:"RETRIEVAL_MIN_SIMILARITY" envDefault:"0.15"`
	ContextBudgetTokens int     `env:"CONTEXT_BUDGET_TOKENS" envDefault:"1800"`
}

func NewRetrievalConfig(ctx context.Context) *RetrievalConfig {
	c := &RetrievalConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Retrieval config")
	}
	return c
}

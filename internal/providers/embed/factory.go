package embed

import (
	"context"
	"fmt"

	"github.com/sandevgo/guardian/internal/config"
	"github.com/sandevgo/guardian/internal/core"
	"github.com/sandevgo/guardian/pkg/log"
)

// NewEmbedder creates the configured embedding backend. Mixed-version
// indexes are caught downstream via VersionTag, so switching backends is
// safe: the reindex cycle re-embeds everything.
func NewEmbedder(ctx context.Context, provider string, cfg *config.ProvidersConfig) (core.Embedder, error) {
	log.FromCtx(ctx).Info().
		Str("provider", provider).
		Msg("starting embedder")

	switch provider {
	case "hashing":
		return NewHashing(), nil
	case "openai":
		return NewOpenAI(cfg.EmbeddingBaseURL, cfg.OpenAIAPIKey, cfg.EmbeddingModel), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", provider)
	}
}

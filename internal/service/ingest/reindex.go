package ingest

import (
	"context"
	"time"

	"github.com/sandevgo/guardian/internal/config"
	"github.com/sandevgo/guardian/internal/core"
	"github.com/sandevgo/guardian/internal/index"
	"github.com/sandevgo/guardian/pkg/log"
	"github.com/sandevgo/guardian/pkg/retry"
)

const reindexBatchSize = 30

// Reindexer is the background worker that closes the gaps ingestion is
// allowed to leave open: documents stored without a vector (embedding
// backend was down) and vectors produced under an older embedding-model
// version. It also enforces the retention window.
type Reindexer struct {
	repo     core.DocumentRepository
	embedder core.Embedder
	idx      *index.Index
	retrier  *retry.Retrier

	interval  time.Duration
	retention time.Duration
	batchSize int
}

func NewReindexer(repo core.DocumentRepository, embedder core.Embedder, idx *index.Index, cfg *config.AppConfig) *Reindexer {
	return &Reindexer{
		repo:      repo,
		embedder:  embedder,
		idx:       idx,
		retrier:   retry.NewDefaultRetrier(),
		interval:  time.Duration(cfg.ReindexInterval) * time.Minute,
		retention: time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		batchSize: reindexBatchSize,
	}
}

func (r *Reindexer) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx).With().Str("component", "reindexer").Logger()
	logger.Info().Dur("interval", r.interval).Msg("starting reindexer")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down reindexer")
			return nil
		case <-ticker.C:
			if err := r.runCycle(ctx); err != nil {
				logger.Error().Err(err).Msg("reindex cycle failed")
			}
		}
	}
}

func (r *Reindexer) Shutdown(ctx context.Context) error {
	return nil
}

func (r *Reindexer) runCycle(ctx context.Context) error {
	if err := r.embedPending(ctx); err != nil {
		return err
	}
	return r.purgeExpired(ctx)
}

func (r *Reindexer) embedPending(ctx context.Context) error {
	logger := log.FromCtx(ctx)

	docs, err := r.repo.ListUnembedded(ctx, r.embedder.VersionTag(), r.batchSize)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}

	var done int
	for _, doc := range docs {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var vec []float32
		err := r.retrier.Do(ctx, func() error {
			var embedErr error
			vec, embedErr = r.embedder.EncodePassage(ctx, embeddingText(doc))
			return embedErr
		})
		if err != nil {
			logger.Warn().
				Err(err).
				Str("doc_id", doc.ID).
				Msg("still unable to embed document")
			continue
		}

		if err := r.repo.SaveEmbedding(ctx, doc.ID, vec, r.embedder.VersionTag()); err != nil {
			logger.Error().Err(err).Str("doc_id", doc.ID).Msg("failed to save embedding")
			continue
		}

		if err := r.idx.Upsert(index.Entry{
			ID:          doc.ID,
			Vector:      vec,
			VersionTag:  r.embedder.VersionTag(),
			Category:    doc.Category,
			RetrievedAt: doc.RetrievedAt,
		}); err != nil {
			logger.Error().Err(err).Str("doc_id", doc.ID).Msg("failed to index embedding")
			continue
		}
		done++
	}

	logger.Info().
		Int("embedded", done).
		Int("pending", len(docs)-done).
		Msg("reindex pass finished")
	return nil
}

func (r *Reindexer) purgeExpired(ctx context.Context) error {
	if r.retention <= 0 {
		return nil
	}

	ids, err := r.repo.Purge(ctx, time.Now().Add(-r.retention))
	if err != nil {
		return err
	}
	for _, id := range ids {
		r.idx.Remove(id)
	}

	if len(ids) > 0 {
		log.FromCtx(ctx).Info().Int("documents", len(ids)).Msg("purged expired documents")
	}
	return nil
}

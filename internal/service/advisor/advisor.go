// Package advisor is the question-answering pipeline: retrieve grounding
// documents, compose them into a budgeted context, and orchestrate the
// generation service with retries and a deterministic fallback.
package advisor

import (
	"context"

	"github.com/sandevgo/guardian/internal/config"
	"github.com/sandevgo/guardian/internal/core"
	"github.com/sandevgo/guardian/internal/index"
	"github.com/sandevgo/guardian/pkg/log"
)

type Advisor struct {
	retriever *Retriever
	composer  *Composer
	orch      *Orchestrator
}

func New(repo core.DocumentRepository, embedder core.Embedder, idx *index.Index, provider core.CompletionProvider, retCfg *config.RetrievalConfig, genCfg *config.GenerationConfig) *Advisor {
	return &Advisor{
		retriever: NewRetriever(repo, embedder, idx, retCfg),
		composer:  NewComposer(retCfg),
		orch:      NewOrchestrator(provider, genCfg),
	}
}

// Answer runs the full pipeline for one question. It never fails: every
// internal error has already been downgraded to a weaker but valid answer
// by the time this returns. Degraded marks answers the generation service
// did not produce.
func (a *Advisor) Answer(ctx context.Context, rawQuery string, profile *core.Profile) core.Answer {
	qc := core.QueryContext{RawQuery: rawQuery, Profile: profile}

	retrieved, err := a.retriever.Retrieve(ctx, rawQuery, profile)
	if err != nil {
		// Only context cancellation lands here; answer from the fallback.
		log.FromCtx(ctx).Warn().Err(err).Msg("retrieval aborted")
	}
	qc.Retrieved = retrieved

	composed := a.composer.Compose(qc)
	result := a.orch.Generate(ctx, qc, composed)

	return core.Answer{
		Text:     result.AnswerText,
		Sources:  sourceRefs(composed.Included, result.CitedDocumentIDs),
		Degraded: result.Degraded,
	}
}

// sourceRefs maps cited document ids back to user-facing references,
// preserving citation order and collapsing duplicate titles.
func sourceRefs(included []core.RetrievedDoc, citedIDs []string) []core.SourceRef {
	byID := make(map[string]core.Document, len(included))
	for _, d := range included {
		byID[d.Doc.ID] = d.Doc
	}

	seen := make(map[string]struct{}, len(citedIDs))
	var refs []core.SourceRef
	for _, id := range citedIDs {
		doc, ok := byID[id]
		if !ok {
			continue
		}
		key := doc.Title + "\x00" + doc.Source
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		refs = append(refs, core.SourceRef{Title: doc.Title, Source: doc.Source})
	}
	return refs
}

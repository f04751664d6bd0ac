package advisor

import (
	"context"
	"errors"
	"sort"

	"github.com/sandevgo/guardian/internal/config"
	"github.com/sandevgo/guardian/internal/core"
	"github.com/sandevgo/guardian/internal/index"
	"github.com/sandevgo/guardian/pkg/log"
)

// overfetchFactor widens the index query so that deduplication by supersede
// key and the similarity floor still leave enough candidates for a full
// top-k result.
const overfetchFactor = 3

type Retriever struct {
	repo     core.DocumentRepository
	embedder core.Embedder
	idx      *index.Index
	cfg      *config.RetrievalConfig
}

func NewRetriever(repo core.DocumentRepository, embedder core.Embedder, idx *index.Index, cfg *config.RetrievalConfig) *Retriever {
	return &Retriever{
		repo:     repo,
		embedder: embedder,
		idx:      idx,
		cfg:      cfg,
	}
}

// Retrieve returns the most relevant documents for the query, enriched by
// the profile. A dead embedding backend degrades to zero results rather
// than an error; only context cancellation propagates.
func (r *Retriever) Retrieve(ctx context.Context, rawQuery string, profile *core.Profile) ([]core.RetrievedDoc, error) {
	logger := log.FromCtx(ctx)

	vec, err := r.embedder.EncodeQuery(ctx, queryText(rawQuery, profile))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn().Err(err).Msg("query embedding failed, answering without retrieval")
		return nil, nil
	}

	hits, err := r.idx.Query(vec, overfetchFactor*r.cfg.TopK, "")
	if err != nil {
		logger.Warn().Err(err).Msg("index query failed, answering without retrieval")
		return nil, nil
	}

	docs := r.resolve(ctx, hits)
	docs = dedupeByKey(docs)

	var kept []core.RetrievedDoc
	for _, d := range docs {
		if d.Similarity < r.cfg.MinSimilarity {
			continue
		}
		kept = append(kept, d)
	}

	sortRetrieved(kept)
	if len(kept) > r.cfg.TopK {
		kept = kept[:r.cfg.TopK]
	}
	return kept, nil
}

// queryText is what gets embedded: the raw question plus the profile
// summary, so a Denver homeowner's question lands near Denver documents.
func queryText(rawQuery string, profile *core.Profile) string {
	if profile.Empty() {
		return rawQuery
	}
	return rawQuery + "\n" + profile.Summary()
}

func (r *Retriever) resolve(ctx context.Context, hits []index.Hit) []core.RetrievedDoc {
	logger := log.FromCtx(ctx)

	docs := make([]core.RetrievedDoc, 0, len(hits))
	for _, hit := range hits {
		doc, err := r.repo.GetByID(ctx, hit.ID)
		if err != nil {
			// The index can briefly hold an id the store already purged.
			var nf *core.NotFoundError
			if !errors.As(err, &nf) {
				logger.Warn().Err(err).Str("doc_id", hit.ID).Msg("failed to resolve hit")
			}
			continue
		}
		docs = append(docs, core.RetrievedDoc{Doc: doc, Similarity: hit.Similarity})
	}
	return docs
}

// dedupeByKey collapses documents sharing a supersede key, keeping the
// freshest one. Input order does not matter.
func dedupeByKey(docs []core.RetrievedDoc) []core.RetrievedDoc {
	best := make(map[string]core.RetrievedDoc, len(docs))
	for _, d := range docs {
		cur, ok := best[d.Doc.Key()]
		if !ok || fresher(d.Doc, cur.Doc) {
			best[d.Doc.Key()] = d
		}
	}

	out := make([]core.RetrievedDoc, 0, len(best))
	for _, d := range best {
		out = append(out, d)
	}
	return out
}

func fresher(a, b core.Document) bool {
	if !a.RetrievedAt.Equal(b.RetrievedAt) {
		return a.RetrievedAt.After(b.RetrievedAt)
	}
	return a.ID < b.ID
}

func sortRetrieved(docs []core.RetrievedDoc) {
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Similarity != docs[j].Similarity {
			return docs[i].Similarity > docs[j].Similarity
		}
		return fresher(docs[i].Doc, docs[j].Doc)
	})
}

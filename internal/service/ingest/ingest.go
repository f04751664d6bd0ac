// Package ingest turns raw feed facts into stored, indexed documents. One
// fact in means one document and one vector out; a fresher fact for the
// same (category, subject key) supersedes the older document.
package ingest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sandevgo/guardian/internal/core"
	"github.com/sandevgo/guardian/internal/index"
	"github.com/sandevgo/guardian/pkg/log"
)

type Ingestor struct {
	repo     core.DocumentRepository
	embedder core.Embedder
	idx      *index.Index

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewIngestor(repo core.DocumentRepository, embedder core.Embedder, idx *index.Index) *Ingestor {
	return &Ingestor{
		repo:     repo,
		embedder: embedder,
		idx:      idx,
		locks:    make(map[string]*sync.Mutex),
	}
}

// keyLock serializes writers per supersede key. Concurrent ingests for
// different keys proceed in parallel; two facts for the same key are
// applied one after the other so the freshest one wins deterministically.
func (in *Ingestor) keyLock(key string) *sync.Mutex {
	in.mu.Lock()
	defer in.mu.Unlock()

	l, ok := in.locks[key]
	if !ok {
		l = &sync.Mutex{}
		in.locks[key] = l
	}
	return l
}

// IngestFact validates, stores and indexes a single feed fact. An
// unreachable embedding backend is not an error: the document stays
// stored without a vector and the reindex cycle picks it up later.
func (in *Ingestor) IngestFact(ctx context.Context, fact core.Fact) (core.PutResult, error) {
	doc, err := documentFromFact(fact)
	if err != nil {
		return core.PutResult{}, err
	}

	l := in.keyLock(doc.Key())
	l.Lock()
	defer l.Unlock()

	res, err := in.repo.Put(ctx, doc)
	if err != nil {
		return core.PutResult{}, err
	}
	doc.ID = res.ID

	if res.SupersededID != "" && res.SupersededID != res.ID {
		in.idx.Remove(res.SupersededID)
	}

	if err := in.embedAndIndex(ctx, doc); err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		log.FromCtx(ctx).Warn().
			Err(err).
			Str("doc_id", doc.ID).
			Msg("document stored without vector, reindex will retry")
	}

	return res, nil
}

// IngestFacts applies a batch with per-item isolation: a bad fact is
// logged and skipped, the rest of the batch still lands. Returns how many
// facts were stored.
func (in *Ingestor) IngestFacts(ctx context.Context, facts []core.Fact) (int, error) {
	logger := log.FromCtx(ctx)

	var stored int
	for _, fact := range facts {
		if ctx.Err() != nil {
			return stored, ctx.Err()
		}

		if _, err := in.IngestFact(ctx, fact); err != nil {
			logger.Warn().
				Err(err).
				Str("subject_key", fact.SubjectKey).
				Str("category", fact.Category).
				Msg("skipping fact")
			continue
		}
		stored++
	}
	return stored, nil
}

func (in *Ingestor) embedAndIndex(ctx context.Context, doc core.Document) error {
	vec, err := in.embedder.EncodePassage(ctx, embeddingText(doc))
	if err != nil {
		return err
	}

	if err := in.repo.SaveEmbedding(ctx, doc.ID, vec, in.embedder.VersionTag()); err != nil {
		return err
	}

	return in.idx.Upsert(index.Entry{
		ID:          doc.ID,
		Vector:      vec,
		VersionTag:  in.embedder.VersionTag(),
		Category:    doc.Category,
		RetrievedAt: doc.RetrievedAt,
	})
}

// embeddingText is what gets vectorized for a document. Title carries
// strong lexical signal, so it goes in alongside the body.
func embeddingText(doc core.Document) string {
	if doc.Title == "" {
		return doc.Content
	}
	return doc.Title + "\n" + doc.Content
}

func documentFromFact(fact core.Fact) (core.Document, error) {
	key := fact.SubjectKey
	if key == "" {
		// Feeds that carry no explicit key still need a supersede identity.
		key = slugify(fact.Subject)
		if key == "" {
			key = slugify(fact.Title)
		}
	}
	if key == "" {
		return core.Document{}, &core.ValidationError{Field: "subject_key", Reason: "is empty and not derivable"}
	}
	if fact.Content == "" {
		return core.Document{}, &core.ValidationError{Field: "content", Reason: "is empty"}
	}
	if !core.KnownCategory(fact.Category) {
		return core.Document{}, &core.ValidationError{Field: "category", Reason: "is not recognized"}
	}
	if fact.RetrievedAt.IsZero() {
		return core.Document{}, &core.ValidationError{Field: "retrieved_at", Reason: "is missing"}
	}

	title := fact.Title
	if title == "" {
		title = fact.Subject
	}

	return core.Document{
		ID:          core.DocumentID(fact.Category, key, fact.RetrievedAt),
		Title:       title,
		Content:     fact.Content,
		Source:      fact.Provider,
		Category:    fact.Category,
		SubjectKey:  key,
		Numbers:     fact.Numbers,
		RetrievedAt: fact.RetrievedAt.UTC(),
	}, nil
}

// slugify normalizes free text into a stable key: lowercased, alphanumeric
// runs joined by single dashes.
func slugify(s string) string {
	var b strings.Builder
	dash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// IsValidation reports whether ingestion rejected the payload itself, as
// opposed to failing on storage or embedding.
func IsValidation(err error) bool {
	var vErr *core.ValidationError
	return errors.As(err, &vErr)
}

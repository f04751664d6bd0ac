package ingest

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/guardian/internal/core"
	"github.com/sandevgo/guardian/internal/index"
	"github.com/sandevgo/guardian/internal/providers/embed"
	"github.com/sandevgo/guardian/pkg/retry"
)

func noRetryRetrier() *retry.Retrier {
	return retry.NewRetrier(&retry.Config{
		MaxRetries:    0,
		BackoffFactor: 1,
		InitialDelay:  time.Millisecond,
		MaxDelay:      time.Millisecond,
	})
}

// memRepo is an in-memory DocumentRepository for tests.
type memRepo struct {
	mu      sync.Mutex
	docs    map[string]core.Document
	active  map[string]string
	vectors map[string]core.StoredEmbedding
}

func newMemRepo() *memRepo {
	return &memRepo{
		docs:    make(map[string]core.Document),
		active:  make(map[string]string),
		vectors: make(map[string]core.StoredEmbedding),
	}
}

func (r *memRepo) Put(ctx context.Context, doc core.Document) (core.PutResult, error) {
	if doc.Content == "" {
		return core.PutResult{}, &core.ValidationError{Field: "content", Reason: "is empty"}
	}
	if !core.KnownSource(doc.Source) {
		return core.PutResult{}, &core.ValidationError{Field: "source", Reason: "is not registered"}
	}
	if doc.ID == "" {
		doc.ID = core.DocumentID(doc.Category, doc.SubjectKey, doc.RetrievedAt)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	res := core.PutResult{ID: doc.ID}
	if prev, ok := r.active[doc.Key()]; ok {
		if prev == doc.ID {
			// Identical re-ingest, a no-op like the sqlite repo.
			return res, nil
		}
		res.SupersededID = prev
	}
	r.docs[doc.ID] = doc
	r.active[doc.Key()] = doc.ID
	return res, nil
}

func (r *memRepo) GetByID(ctx context.Context, id string) (core.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[id]
	if !ok {
		return core.Document{}, &core.NotFoundError{ID: id}
	}
	return doc, nil
}

func (r *memRepo) ListActive(ctx context.Context, filter core.ListFilter) ([]core.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var docs []core.Document
	for _, id := range r.active {
		doc := r.docs[id]
		if filter.Category != "" && doc.Category != filter.Category {
			continue
		}
		if filter.MaxAge > 0 && time.Since(doc.RetrievedAt) > filter.MaxAge {
			continue
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].RetrievedAt.Equal(docs[j].RetrievedAt) {
			return docs[i].RetrievedAt.After(docs[j].RetrievedAt)
		}
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

func (r *memRepo) Purge(ctx context.Context, olderThan time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []string
	for id, doc := range r.docs {
		if doc.RetrievedAt.Before(olderThan) {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		doc := r.docs[id]
		if r.active[doc.Key()] == id {
			delete(r.active, doc.Key())
		}
		delete(r.docs, id)
		delete(r.vectors, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *memRepo) SaveEmbedding(ctx context.Context, docID string, vector []float32, versionTag string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc := r.docs[docID]
	r.vectors[docID] = core.StoredEmbedding{
		DocID:       docID,
		Vector:      vector,
		VersionTag:  versionTag,
		Category:    doc.Category,
		RetrievedAt: doc.RetrievedAt,
	}
	return nil
}

func (r *memRepo) ListUnembedded(ctx context.Context, currentTag string, limit int) ([]core.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var docs []core.Document
	for _, id := range r.active {
		emb, ok := r.vectors[id]
		if ok && emb.VersionTag == currentTag {
			continue
		}
		docs = append(docs, r.docs[id])
		if len(docs) == limit {
			break
		}
	}
	return docs, nil
}

func (r *memRepo) LoadEmbeddings(ctx context.Context) ([]core.StoredEmbedding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []core.StoredEmbedding
	for _, id := range r.active {
		if emb, ok := r.vectors[id]; ok {
			out = append(out, emb)
		}
	}
	return out, nil
}

// downEmbedder simulates an unreachable embedding backend.
type downEmbedder struct {
	inner core.Embedder
	down  bool
}

func (e *downEmbedder) EncodeQuery(ctx context.Context, text string) ([]float32, error) {
	if e.down {
		return nil, core.ErrEmbeddingUnavailable
	}
	return e.inner.EncodeQuery(ctx, text)
}

func (e *downEmbedder) EncodePassage(ctx context.Context, text string) ([]float32, error) {
	if e.down {
		return nil, core.ErrEmbeddingUnavailable
	}
	return e.inner.EncodePassage(ctx, text)
}

func (e *downEmbedder) VersionTag() string { return e.inner.VersionTag() }
func (e *downEmbedder) Dims() int          { return e.inner.Dims() }

func testFact(subjectKey string, retrievedAt time.Time) core.Fact {
	return core.Fact{
		Provider:    "Climate Knowledge Base",
		Subject:     "Solar potential",
		SubjectKey:  subjectKey,
		Title:       "Solar potential " + subjectKey,
		Content:     "Rooftop solar output in the region averages 4.5 kWh per kW installed.",
		Category:    core.CategoryRenewablePotential,
		RetrievedAt: retrievedAt,
	}
}

func TestIngestFactStoresAndIndexes(t *testing.T) {
	repo := newMemRepo()
	embedder := embed.NewHashing()
	idx := index.New(embedder.Dims())
	ing := NewIngestor(repo, embedder, idx)

	res, err := ing.IngestFact(context.Background(), testFact("denver", time.Now()))
	require.NoError(t, err)
	require.NotEmpty(t, res.ID)
	assert.Empty(t, res.SupersededID)

	doc, err := repo.GetByID(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, "denver", doc.SubjectKey)

	assert.Equal(t, 1, idx.Len())
	assert.Empty(t, idx.Mismatched(embedder.VersionTag()))
}

func TestIngestSupersedesSameKey(t *testing.T) {
	repo := newMemRepo()
	embedder := embed.NewHashing()
	idx := index.New(embedder.Dims())
	ing := NewIngestor(repo, embedder, idx)
	ctx := context.Background()

	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	fresh := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	first, err := ing.IngestFact(ctx, testFact("denver", old))
	require.NoError(t, err)
	second, err := ing.IngestFact(ctx, testFact("denver", fresh))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.SupersededID)
	assert.Equal(t, 1, idx.Len())

	docs, err := repo.ListActive(ctx, core.ListFilter{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, second.ID, docs[0].ID)
}

func TestIngestRejectsBadFacts(t *testing.T) {
	repo := newMemRepo()
	embedder := embed.NewHashing()
	ing := NewIngestor(repo, embedder, index.New(embedder.Dims()))
	ctx := context.Background()

	bad := testFact("denver", time.Now())
	bad.Category = "astrology"
	_, err := ing.IngestFact(ctx, bad)
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	bad = testFact("", time.Now())
	bad.Subject = ""
	bad.Title = ""
	_, err = ing.IngestFact(ctx, bad)
	assert.True(t, IsValidation(err))

	bad = testFact("denver", time.Now())
	bad.Content = ""
	_, err = ing.IngestFact(ctx, bad)
	assert.True(t, IsValidation(err))
}

func TestIngestDerivesSubjectKey(t *testing.T) {
	repo := newMemRepo()
	embedder := embed.NewHashing()
	ing := NewIngestor(repo, embedder, index.New(embedder.Dims()))

	fact := testFact("", time.Now())
	fact.Subject = "Solar Potential: Denver, CO"

	res, err := ing.IngestFact(context.Background(), fact)
	require.NoError(t, err)

	doc, err := repo.GetByID(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, "solar-potential-denver-co", doc.SubjectKey)
}

func TestIngestFactsIsolatesBadItems(t *testing.T) {
	repo := newMemRepo()
	embedder := embed.NewHashing()
	ing := NewIngestor(repo, embedder, index.New(embedder.Dims()))

	bad := testFact("boulder", time.Now())
	bad.Category = "astrology"

	stored, err := ing.IngestFacts(context.Background(), []core.Fact{
		testFact("denver", time.Now()),
		bad,
		testFact("tucson", time.Now()),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, stored)
}

func TestIngestSurvivesEmbedderOutage(t *testing.T) {
	repo := newMemRepo()
	embedder := &downEmbedder{inner: embed.NewHashing(), down: true}
	idx := index.New(embedder.Dims())
	ing := NewIngestor(repo, embedder, idx)
	ctx := context.Background()

	res, err := ing.IngestFact(ctx, testFact("denver", time.Now()))
	require.NoError(t, err)

	// Stored but not indexed.
	_, err = repo.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())

	pending, err := repo.ListUnembedded(ctx, embedder.VersionTag(), 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestReindexerRecoversPendingDocuments(t *testing.T) {
	repo := newMemRepo()
	embedder := &downEmbedder{inner: embed.NewHashing(), down: true}
	idx := index.New(embedder.Dims())
	ing := NewIngestor(repo, embedder, idx)
	ctx := context.Background()

	_, err := ing.IngestFact(ctx, testFact("denver", time.Now()))
	require.NoError(t, err)
	require.Equal(t, 0, idx.Len())

	embedder.down = false
	r := &Reindexer{
		repo:      repo,
		embedder:  embedder,
		idx:       idx,
		retrier:   noRetryRetrier(),
		batchSize: reindexBatchSize,
	}
	require.NoError(t, r.runCycle(ctx))

	assert.Equal(t, 1, idx.Len())
	pending, err := repo.ListUnembedded(ctx, embedder.VersionTag(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestReindexerPurgesExpired(t *testing.T) {
	repo := newMemRepo()
	embedder := embed.NewHashing()
	idx := index.New(embedder.Dims())
	ing := NewIngestor(repo, embedder, idx)
	ctx := context.Background()

	_, err := ing.IngestFact(ctx, testFact("denver", time.Now().Add(-48*time.Hour)))
	require.NoError(t, err)
	fresh, err := ing.IngestFact(ctx, testFact("tucson", time.Now()))
	require.NoError(t, err)

	r := &Reindexer{
		repo:      repo,
		embedder:  embedder,
		idx:       idx,
		retrier:   noRetryRetrier(),
		retention: 24 * time.Hour,
		batchSize: reindexBatchSize,
	}
	require.NoError(t, r.runCycle(ctx))

	assert.Equal(t, 1, idx.Len())
	docs, err := repo.ListActive(ctx, core.ListFilter{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, fresh.ID, docs[0].ID)
}

func TestSeedIsIdempotent(t *testing.T) {
	repo := newMemRepo()
	embedder := embed.NewHashing()
	idx := index.New(embedder.Dims())
	ing := NewIngestor(repo, embedder, idx)
	ctx := context.Background()

	n, err := ing.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	_, err = ing.Seed(ctx)
	require.NoError(t, err)

	docs, err := repo.ListActive(ctx, core.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, docs, 6)
	assert.Equal(t, 6, idx.Len())
}

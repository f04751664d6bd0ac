package advisor

import (
	"context"
	"sync"
	"time"

	"github.com/sandevgo/guardian/internal/config"
	"github.com/sandevgo/guardian/internal/core"
	"github.com/sandevgo/guardian/internal/index"
)

// fakeRepo is a map-backed DocumentRepository for pipeline tests.
type fakeRepo struct {
	mu   sync.Mutex
	docs map[string]core.Document
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{docs: make(map[string]core.Document)}
}

func (r *fakeRepo) Put(ctx context.Context, doc core.Document) (core.PutResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = doc
	return core.PutResult{ID: doc.ID}, nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (core.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return core.Document{}, &core.NotFoundError{ID: id}
	}
	return doc, nil
}

func (r *fakeRepo) ListActive(ctx context.Context, filter core.ListFilter) ([]core.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var docs []core.Document
	for _, d := range r.docs {
		docs = append(docs, d)
	}
	return docs, nil
}

func (r *fakeRepo) Purge(ctx context.Context, olderThan time.Time) ([]string, error) {
	return nil, nil
}

func (r *fakeRepo) SaveEmbedding(ctx context.Context, docID string, vector []float32, versionTag string) error {
	return nil
}

func (r *fakeRepo) ListUnembedded(ctx context.Context, currentTag string, limit int) ([]core.Document, error) {
	return nil, nil
}

func (r *fakeRepo) LoadEmbeddings(ctx context.Context) ([]core.StoredEmbedding, error) {
	return nil, nil
}

// vecEmbedder maps exact texts to fixed vectors, so tests control
// similarity precisely. Unknown text gets the zero vector.
type vecEmbedder struct {
	dims    int
	vectors map[string][]float32
	err     error
}

func (e *vecEmbedder) EncodeQuery(ctx context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return make([]float32, e.dims), nil
}

func (e *vecEmbedder) EncodePassage(ctx context.Context, text string) ([]float32, error) {
	return e.EncodeQuery(ctx, text)
}

func (e *vecEmbedder) VersionTag() string { return "test-v1" }
func (e *vecEmbedder) Dims() int          { return e.dims }

// scriptedProvider runs a per-call script and counts attempts.
type scriptedProvider struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	script  func(call int, req core.CompletionRequest) (string, error)
}

func (p *scriptedProvider) Complete(ctx context.Context, req core.CompletionRequest) (string, error) {
	p.mu.Lock()
	call := p.calls
	p.calls++
	p.prompts = append(p.prompts, req.Prompt)
	p.mu.Unlock()
	return p.script(call, req)
}

func (p *scriptedProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *scriptedProvider) lastPrompt() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.prompts) == 0 {
		return ""
	}
	return p.prompts[len(p.prompts)-1]
}

func testRetrievalConfig() *config.RetrievalConfig {
	return &config.RetrievalConfig{
		TopK:                5,
		MinSimilarity:       0.15,
		ContextBudgetTokens: 1800,
	}
}

func testGenerationConfig() *config.GenerationConfig {
	return &config.GenerationConfig{
		RequestTimeout:  time.Second,
		MaxRetries:      2,
		BackoffBase:     time.Second,
		BackoffFactor:   2,
		MaxOutputTokens: 256,
		Temperature:     0.3,
	}
}

// instantOrchestrator swaps real waiting for recorded waits.
func instantOrchestrator(provider core.CompletionProvider, cfg *config.GenerationConfig) (*Orchestrator, *[]time.Duration) {
	o := NewOrchestrator(provider, cfg)
	waits := &[]time.Duration{}
	o.sleep = func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return ctx.Err()
	}
	o.jitter = func(max time.Duration) time.Duration { return 0 }
	return o, waits
}

func storeAndIndex(repo *fakeRepo, idx *index.Index, doc core.Document, vec []float32) {
	repo.docs[doc.ID] = doc
	_ = idx.Upsert(index.Entry{
		ID:          doc.ID,
		Vector:      vec,
		VersionTag:  "test-v1",
		Category:    doc.Category,
		RetrievedAt: doc.RetrievedAt,
	})
}

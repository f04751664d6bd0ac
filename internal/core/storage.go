package core

import (
	"context"
	"time"
)

// PutResult reports what a Put did: the stored document id and, when the
// insert superseded an older row for the same key, that row's id so the
// caller can evict its vector.
type PutResult struct {
	ID           string
	SupersededID string
}

// ListFilter narrows ListActive. Zero values mean "no filter".
type ListFilter struct {
	Category string
	MaxAge   time.Duration
}

// StoredEmbedding is a persisted vector with the model version that
// produced it, used to rebuild the in-memory index at startup.
type StoredEmbedding struct {
	DocID       string
	Vector      []float32
	VersionTag  string
	Category    string
	RetrievedAt time.Time
}

type DocumentRepository interface {
	// Put inserts the document, superseding any active row with the same
	// (category, subject key). Fails with *ValidationError on empty content
	// or an unregistered source.
	Put(ctx context.Context, doc Document) (PutResult, error)

	// GetByID returns the document or a *NotFoundError.
	GetByID(ctx context.Context, id string) (Document, error)

	// ListActive returns the current non-superseded documents matching the
	// filter. Order is unspecified but stable within one call.
	ListActive(ctx context.Context, filter ListFilter) ([]Document, error)

	// Purge deletes documents retrieved before the cutoff and returns the
	// ids it removed, superseded rows included.
	Purge(ctx context.Context, olderThan time.Time) ([]string, error)

	SaveEmbedding(ctx context.Context, docID string, vector []float32, versionTag string) error

	// ListUnembedded returns active documents whose vector is missing or
	// was produced by a different model version than currentTag.
	ListUnembedded(ctx context.Context, currentTag string, limit int) ([]Document, error)

	// LoadEmbeddings streams back every active document's stored vector.
	LoadEmbeddings(ctx context.Context) ([]StoredEmbedding, error)
}

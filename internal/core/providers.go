package core

import "context"

// Embedder maps text to a fixed-length vector. Same text and same
// VersionTag imply the same vector; a VersionTag change invalidates every
// stored vector, which the reindex cycle picks up.
type Embedder interface {
	EncodeQuery(ctx context.Context, text string) ([]float32, error)
	EncodePassage(ctx context.Context, text string) ([]float32, error)
	VersionTag() string
	Dims() int
}

// CompletionProvider is the generation-service boundary. Implementations
// return a *GenerationError with the retryable flag set appropriately.
// They never retry themselves; that is the orchestrator's job.
type CompletionProvider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

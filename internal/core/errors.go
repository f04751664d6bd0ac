package core

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmbeddingUnavailable signals that the embedding backend cannot be
// reached. Recoverable: the document stays stored, its vector is produced
// on a later reindex cycle and retrieval continues with current vectors.
var ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

// ValidationError rejects a malformed ingestion payload. Ingestion logs it
// and continues with the next item.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid document: %s %s", e.Field, e.Reason)
}

// NotFoundError reports a missing document id. Surfaced to the direct
// caller only, never to the end user.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document %q not found", e.ID)
}

// GenerationError classifies a failed generation-service call. Retryable
// covers timeouts, 5xx and rate limiting; everything else (auth, config,
// malformed request) is fatal and goes straight to the degraded path.
type GenerationError struct {
	Status    int
	Message   string
	Retryable bool
}

func (e *GenerationError) Error() string {
	kind := "fatal"
	if e.Retryable {
		kind = "transient"
	}
	if e.Status != 0 {
		return fmt.Sprintf("generation %s error: http %d: %s", kind, e.Status, e.Message)
	}
	return fmt.Sprintf("generation %s error: %s", kind, e.Message)
}

func NewTransientGenerationError(status int, msg string) *GenerationError {
	return &GenerationError{Status: status, Message: msg, Retryable: true}
}

func NewFatalGenerationError(status int, msg string) *GenerationError {
	return &GenerationError{Status: status, Message: msg, Retryable: false}
}

// IsRetryable reports whether err is worth another attempt. Unclassified
// errors (network failures, timeouts) count as retryable. Cancellation is
// not: the caller has given up, so another attempt cannot help. Deadline
// expiry stays retryable because a per-attempt timeout produces it too.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Retryable
	}
	return true
}

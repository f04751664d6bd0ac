package advisor

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/sandevgo/guardian/internal/config"
	"github.com/sandevgo/guardian/internal/core"
	"github.com/sandevgo/guardian/pkg/log"
)

// genState tracks one generation request through its lifecycle. The
// terminal states are succeeded and degraded; nothing else ever reaches
// the caller.
type genState int

const (
	stateRequesting genState = iota
	stateRetrying
	stateSucceeded
	stateDegraded
)

func (s genState) String() string {
	switch s {
	case stateRequesting:
		return "requesting"
	case stateRetrying:
		return "retrying"
	case stateSucceeded:
		return "succeeded"
	case stateDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// Orchestrator drives the generation service with per-attempt timeouts,
// bounded retries and a deterministic fallback. It always produces a
// result; failures downgrade, they do not propagate.
type Orchestrator struct {
	provider core.CompletionProvider
	cfg      *config.GenerationConfig

	// sleep and jitter are swappable so tests run without real time.
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func(max time.Duration) time.Duration
}

func NewOrchestrator(provider core.CompletionProvider, cfg *config.GenerationConfig) *Orchestrator {
	return &Orchestrator{
		provider: provider,
		cfg:      cfg,
		sleep:    sleepCtx,
		jitter: func(max time.Duration) time.Duration {
			if max <= 0 {
				return 0
			}
			return time.Duration(rand.Int63n(int64(max)))
		},
	}
}

// Generate runs the retry state machine: up to 1+MaxRetries attempts, each
// under its own timeout, exponential backoff between transient failures.
// Fatal errors and exhausted retries land on the fallback answer with
// Degraded set.
func (o *Orchestrator) Generate(ctx context.Context, qc core.QueryContext, composed Composed) core.GenerationResult {
	logger := log.FromCtx(ctx)
	prompt := buildPrompt(qc, composed)

	st := stateRequesting
	var answer string

	for attempt := 0; st == stateRequesting || st == stateRetrying; attempt++ {
		text, err := o.attempt(ctx, prompt)
		switch {
		case err == nil && strings.TrimSpace(text) != "":
			answer = text
			st = stateSucceeded

		case err != nil && !core.IsRetryable(err):
			logger.Warn().Err(err).Msg("generation failed fatally, degrading")
			st = stateDegraded

		default:
			// Transient: a retryable error or an empty completion.
			if err == nil {
				logger.Warn().Int("attempt", attempt).Msg("empty completion, treating as transient")
			} else {
				logger.Warn().Err(err).Int("attempt", attempt).Msg("generation attempt failed")
			}

			if attempt >= o.cfg.MaxRetries {
				st = stateDegraded
				break
			}

			wait := o.backoff(attempt)
			if !deadlineAllows(ctx, wait) {
				logger.Warn().Msg("caller deadline too close to retry, degrading")
				st = stateDegraded
				break
			}
			if err := o.sleep(ctx, wait); err != nil {
				st = stateDegraded
				break
			}
			st = stateRetrying
		}
	}

	if st == stateDegraded {
		answer = fallbackAnswer(qc, composed)
	}

	logger.Debug().Stringer("state", st).Msg("generation finished")

	return core.GenerationResult{
		AnswerText:       answer,
		CitedDocumentIDs: citedIDs(composed),
		Degraded:         st == stateDegraded,
	}
}

func (o *Orchestrator) attempt(ctx context.Context, prompt string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, o.cfg.RequestTimeout)
	defer cancel()

	return o.provider.Complete(attemptCtx, core.CompletionRequest{
		Prompt:          prompt,
		MaxOutputTokens: o.cfg.MaxOutputTokens,
		Temperature:     o.cfg.Temperature,
	})
}

// backoff is base * factor^attempt plus jitter up to one base interval.
func (o *Orchestrator) backoff(attempt int) time.Duration {
	d := time.Duration(float64(o.cfg.BackoffBase) * math.Pow(o.cfg.BackoffFactor, float64(attempt)))
	return d + o.jitter(o.cfg.BackoffBase)
}

// deadlineAllows reports whether the caller's deadline leaves room to wait
// out the backoff and still make another attempt. Without a deadline the
// answer is always yes.
func deadlineAllows(ctx context.Context, wait time.Duration) bool {
	deadline, ok := ctx.Deadline()
	if !ok {
		return true
	}
	return time.Until(deadline) > wait
}

func citedIDs(composed Composed) []string {
	if len(composed.Included) == 0 {
		return nil
	}
	ids := make([]string, len(composed.Included))
	for i, d := range composed.Included {
		ids[i] = d.Doc.ID
	}
	return ids
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

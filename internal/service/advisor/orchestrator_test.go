package advisor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/guardian/internal/core"
)

func solarQC() (core.QueryContext, Composed) {
	qc := core.QueryContext{
		RawQuery: "should i get solar panels",
		Retrieved: []core.RetrievedDoc{
			retrieved("a", "Solar Basics", "Solar panels convert sunlight into electricity.", 0.9),
		},
	}
	return qc, NewComposer(testRetrievalConfig()).Compose(qc)
}

func TestGenerateSuccessFirstAttempt(t *testing.T) {
	provider := &scriptedProvider{script: func(call int, req core.CompletionRequest) (string, error) {
		return "Install rooftop solar.", nil
	}}
	o, waits := instantOrchestrator(provider, testGenerationConfig())

	qc, composed := solarQC()
	res := o.Generate(context.Background(), qc, composed)

	assert.False(t, res.Degraded)
	assert.Equal(t, "Install rooftop solar.", res.AnswerText)
	assert.Equal(t, []string{"a"}, res.CitedDocumentIDs)
	assert.Equal(t, 1, provider.callCount())
	assert.Empty(t, *waits)
}

func TestGenerateRetriesTransientThenSucceeds(t *testing.T) {
	provider := &scriptedProvider{script: func(call int, req core.CompletionRequest) (string, error) {
		if call == 0 {
			return "", core.NewTransientGenerationError(503, "overloaded")
		}
		return "Install rooftop solar.", nil
	}}
	o, waits := instantOrchestrator(provider, testGenerationConfig())

	qc, composed := solarQC()
	res := o.Generate(context.Background(), qc, composed)

	assert.False(t, res.Degraded)
	assert.Equal(t, 2, provider.callCount())
	require.Len(t, *waits, 1)
	assert.Equal(t, time.Second, (*waits)[0])
}

func TestGenerateExhaustsRetriesAndDegrades(t *testing.T) {
	provider := &scriptedProvider{script: func(call int, req core.CompletionRequest) (string, error) {
		return "", core.NewTransientGenerationError(0, "timeout")
	}}
	o, waits := instantOrchestrator(provider, testGenerationConfig())

	qc, composed := solarQC()
	res := o.Generate(context.Background(), qc, composed)

	assert.True(t, res.Degraded)
	assert.NotEmpty(t, res.AnswerText)
	// MaxRetries 2 means exactly 3 attempts.
	assert.Equal(t, 3, provider.callCount())
	// Exponential backoff between attempts: 1s then 2s.
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *waits)
	// The fallback still cites the composed documents.
	assert.Equal(t, []string{"a"}, res.CitedDocumentIDs)
}

func TestGenerateFatalErrorDegradesImmediately(t *testing.T) {
	provider := &scriptedProvider{script: func(call int, req core.CompletionRequest) (string, error) {
		return "", core.NewFatalGenerationError(401, "bad api key")
	}}
	o, waits := instantOrchestrator(provider, testGenerationConfig())

	qc, composed := solarQC()
	res := o.Generate(context.Background(), qc, composed)

	assert.True(t, res.Degraded)
	assert.Equal(t, 1, provider.callCount())
	assert.Empty(t, *waits)
}

func TestGenerateEmptyCompletionIsTransient(t *testing.T) {
	provider := &scriptedProvider{script: func(call int, req core.CompletionRequest) (string, error) {
		if call == 0 {
			return "   ", nil
		}
		return "Install rooftop solar.", nil
	}}
	o, _ := instantOrchestrator(provider, testGenerationConfig())

	qc, composed := solarQC()
	res := o.Generate(context.Background(), qc, composed)

	assert.False(t, res.Degraded)
	assert.Equal(t, 2, provider.callCount())
}

func TestGenerateRespectsCallerDeadline(t *testing.T) {
	provider := &scriptedProvider{script: func(call int, req core.CompletionRequest) (string, error) {
		return "", core.NewTransientGenerationError(503, "overloaded")
	}}
	o, waits := instantOrchestrator(provider, testGenerationConfig())

	// Deadline far smaller than the 1s backoff: no retry is worth waiting
	// for, degrade straight away after the first failure.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	qc, composed := solarQC()
	res := o.Generate(ctx, qc, composed)

	assert.True(t, res.Degraded)
	assert.Equal(t, 1, provider.callCount())
	assert.Empty(t, *waits)
}

func TestGenerateCancelledCallerDegradesWithoutRetry(t *testing.T) {
	provider := &scriptedProvider{script: func(call int, req core.CompletionRequest) (string, error) {
		return "", context.Canceled
	}}
	o, waits := instantOrchestrator(provider, testGenerationConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	qc, composed := solarQC()
	res := o.Generate(ctx, qc, composed)

	// Cancellation is terminal: one attempt, no backoff, fallback answer.
	assert.True(t, res.Degraded)
	assert.Equal(t, 1, provider.callCount())
	assert.Empty(t, *waits)
	assert.NotEmpty(t, res.AnswerText)
}

func TestFallbackAnswerIsDeterministic(t *testing.T) {
	qc, composed := solarQC()

	first := fallbackAnswer(qc, composed)
	second := fallbackAnswer(qc, composed)

	assert.Equal(t, first, second)
	assert.Contains(t, first, "Energy recommendations")
	assert.Contains(t, first, "Solar panels convert sunlight")
}

func TestFallbackPicksTopicByKeywords(t *testing.T) {
	cases := map[string]string{
		"how should i commute to work": "transportation",
		"what should i eat":            "food",
		"how do i save water":          "Water conservation",
		"where do i recycle this":      "Waste reduction",
		"give me an action plan":       "action plan",
	}
	for query, want := range cases {
		text := fallbackAnswer(core.QueryContext{RawQuery: query}, Composed{})
		assert.Containsf(t, text, want, "query %q", query)
	}
}

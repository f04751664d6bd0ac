package advisor

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/guardian/internal/core"
	"github.com/sandevgo/guardian/internal/providers/embed"
)

func retrieved(id, title, content string, sim float64) core.RetrievedDoc {
	return core.RetrievedDoc{
		Doc: core.Document{
			ID:          id,
			Title:       title,
			Source:      "Climate Knowledge Base",
			Category:    core.CategoryEnergy,
			SubjectKey:  id,
			Content:     content,
			RetrievedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		Similarity: sim,
	}
}

func TestComposeEmptyRetrievalYieldsMarker(t *testing.T) {
	c := NewComposer(testRetrievalConfig())
	out := c.Compose(core.QueryContext{RawQuery: "anything"})

	assert.Contains(t, out.Block, noGroundingMarker)
	assert.Empty(t, out.Included)
}

func TestComposeIncludesAllWithinBudget(t *testing.T) {
	c := NewComposer(testRetrievalConfig())
	qc := core.QueryContext{
		RawQuery: "solar",
		Retrieved: []core.RetrievedDoc{
			retrieved("a", "Solar Basics", "Solar panels convert sunlight into electricity.", 0.9),
			retrieved("b", "Wind Basics", "Wind turbines convert moving air into electricity.", 0.5),
		},
	}

	out := c.Compose(qc)
	require.Len(t, out.Included, 2)
	assert.Contains(t, out.Block, "Solar Basics")
	assert.Contains(t, out.Block, "Wind Basics")
	assert.NotContains(t, out.Block, noGroundingMarker)
}

func TestComposeDropsLowestSimilarityFirst(t *testing.T) {
	docs := []core.RetrievedDoc{
		retrieved("a", "Most Relevant", strings.Repeat("solar output data point. ", 20), 0.9),
		retrieved("b", "Middling", strings.Repeat("wind output data point. ", 20), 0.5),
		retrieved("c", "Least Relevant", strings.Repeat("tidal output data point. ", 20), 0.2),
	}

	// Measure the full block, then set the budget just under it so exactly
	// one document has to go.
	cfg := testRetrievalConfig()
	full := NewComposer(cfg).Compose(core.QueryContext{Retrieved: docs})
	require.Len(t, full.Included, 3)

	cfg.ContextBudgetTokens = embed.CountTokens(full.Block) - 1
	out := NewComposer(cfg).Compose(core.QueryContext{Retrieved: docs})

	require.Len(t, out.Included, 2)
	assert.Equal(t, "a", out.Included[0].Doc.ID)
	assert.Equal(t, "b", out.Included[1].Doc.ID)
	assert.NotContains(t, out.Block, "Least Relevant")
}

func TestComposeNeverTruncatesMidDocument(t *testing.T) {
	big := retrieved("a", "Huge", strings.Repeat("long climate fact. ", 500), 0.9)

	cfg := testRetrievalConfig()
	cfg.ContextBudgetTokens = 50
	out := NewComposer(cfg).Compose(core.QueryContext{Retrieved: []core.RetrievedDoc{big}})

	// The oversized document is dropped whole, not clipped.
	assert.Empty(t, out.Included)
	assert.Contains(t, out.Block, noGroundingMarker)
	assert.NotContains(t, out.Block, "long climate fact")
}

func TestComposeCarriesProfile(t *testing.T) {
	c := NewComposer(testRetrievalConfig())
	qc := core.QueryContext{
		RawQuery: "solar",
		Profile:  &core.Profile{Location: "Denver", BudgetBand: "medium"},
		Retrieved: []core.RetrievedDoc{
			retrieved("a", "Solar Basics", "Solar panels convert sunlight into electricity.", 0.9),
		},
	}

	out := c.Compose(qc)
	assert.Contains(t, out.Block, "Denver")
	assert.Contains(t, out.Block, "budget: medium")
}

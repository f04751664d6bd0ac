package advisor

import (
	"fmt"
	"strings"

	"github.com/sandevgo/guardian/internal/config"
	"github.com/sandevgo/guardian/internal/core"
	"github.com/sandevgo/guardian/internal/providers/embed"
)

// noGroundingMarker is what the prompt carries when nothing relevant (or
// nothing that fits the budget) was retrieved. The generation service is
// told explicitly instead of being handed an empty string.
const noGroundingMarker = "No grounded climate facts are available for this question. Say so and give only general, widely accepted guidance."

// Composed is the assembled context block plus the documents that actually
// made it in. Cited sources come from Included, never from the raw
// retrieval set.
type Composed struct {
	Block    string
	Included []core.RetrievedDoc
}

type Composer struct {
	cfg *config.RetrievalConfig
}

func NewComposer(cfg *config.RetrievalConfig) *Composer {
	return &Composer{cfg: cfg}
}

// Compose fits the retrieved documents into the token budget. Documents
// are whole or absent: when over budget the lowest-similarity one is
// dropped and the block rebuilt, never clipped mid-document.
func (c *Composer) Compose(qc core.QueryContext) Composed {
	docs := make([]core.RetrievedDoc, len(qc.Retrieved))
	copy(docs, qc.Retrieved)
	sortRetrieved(docs)

	for len(docs) > 0 {
		block := renderBlock(qc.Profile, docs)
		if embed.CountTokens(block) <= c.cfg.ContextBudgetTokens {
			return Composed{Block: block, Included: docs}
		}
		docs = docs[:len(docs)-1]
	}

	return Composed{Block: renderBlock(qc.Profile, nil)}
}

func renderBlock(profile *core.Profile, docs []core.RetrievedDoc) string {
	var b strings.Builder

	if !profile.Empty() {
		b.WriteString("User profile: ")
		b.WriteString(profile.Summary())
		b.WriteString("\n\n")
	}

	if len(docs) == 0 {
		b.WriteString(noGroundingMarker)
		return b.String()
	}

	b.WriteString("Grounding facts:\n\n")
	for i, d := range docs {
		fmt.Fprintf(&b, "[%d] %s (%s, relevance %.2f)\n%s\n\n",
			i+1, d.Doc.Title, d.Doc.Source, d.Similarity, d.Doc.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}

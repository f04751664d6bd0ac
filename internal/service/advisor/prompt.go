package advisor

import (
	"strings"

	"github.com/sandevgo/guardian/internal/core"
)

const systemInstructions = `You are Climate Guardian, a climate action advisor. Answer the user's question with specific, actionable recommendations.

Rules:
- Ground every claim in the facts provided below. Do not invent numbers.
- When the facts do not cover the question, say so plainly before giving general guidance.
- Tailor advice to the user profile when one is given.
- Be concrete: name actions, rough costs, and expected impact.
- Keep the answer under 400 words.`

// buildPrompt assembles the full generation request from the composed
// context and the question.
func buildPrompt(qc core.QueryContext, composed Composed) string {
	var b strings.Builder
	b.WriteString(systemInstructions)
	b.WriteString("\n\n")
	b.WriteString(composed.Block)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(qc.RawQuery)
	return b.String()
}

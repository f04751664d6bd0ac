package embed

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
)

func getTokenizer() *tiktoken.Tiktoken {
	tkOnce.Do(func() {
		var err error
		tk, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			panic("failed to load tiktoken: " + err.Error())
		}
	})
	return tk
}

// CountTokens measures text with the same encoding the hosted models use,
// which keeps prompt budgets honest.
func CountTokens(text string) int {
	return len(getTokenizer().Encode(text, nil, nil))
}

// truncateTokens caps text at maxTokens. Vectors are 1:1 with documents,
// so oversized content is clipped to the model window rather than chunked.
func truncateTokens(text string, maxTokens int) string {
	enc := getTokenizer()
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return enc.Decode(tokens[:maxTokens])
}

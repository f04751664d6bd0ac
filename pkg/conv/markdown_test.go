package conv

import (
	"testing"
)

func TestMarkdownToTelegramHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "plain text",
			input:    "Install rooftop solar",
			expected: "Install rooftop solar\n",
		},
		{
			name:     "bold",
			input:    "**Sources:**",
			expected: "<strong>Sources:</strong>\n",
		},
		{
			name:     "italic",
			input:    "_offline guidance_",
			expected: "<em>offline guidance</em>\n",
		},
		{
			name:     "strikethrough",
			input:    "~~coal~~",
			expected: "<del>coal</del>\n",
		},
		{
			name:     "inline code",
			input:    "`guardian ask`",
			expected: "<code>guardian ask</code>\n",
		},
		{
			name:     "code block",
			input:    "```\nguardian ingest --seed\n```",
			expected: "<pre><code>guardian ingest --seed\n</code></pre>\n",
		},
		{
			name:     "blockquote",
			input:    "> cited fact",
			expected: "<blockquote>\ncited fact\n</blockquote>\n",
		},
		{
			name:     "link keeps href only",
			input:    "[IPCC](https://www.ipcc.ch)",
			expected: "<a href=\"https://www.ipcc.ch\">IPCC</a>\n",
		},
		{
			name:     "headers are stripped to text",
			input:    "# Energy",
			expected: "Energy\n",
		},
		{
			name:     "script tags sanitized away",
			input:    "<script>alert('xss')</script>",
			expected: "\n",
		},
		{
			name:     "mixed inline formatting",
			input:    "**Bold** and *italic* with `code`",
			expected: "<strong>Bold</strong> and <em>italic</em> with <code>code</code>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MarkdownToTelegramHTML([]byte(tt.input))
			if got != tt.expected {
				t.Errorf("MarkdownToTelegramHTML(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

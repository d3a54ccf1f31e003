package utils

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"
)

// CleanMarkdown strips an outer wrapping code fence from a narrative so it
// renders as plain Markdown. LLMs regularly fence whole reports in
// ```markdown blocks.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)

	for _, label := range []string{"```markdown", "```md", "```"} {
		if strings.HasPrefix(cleaned, label) && strings.HasSuffix(cleaned, "```") {
			cleaned = strings.TrimPrefix(cleaned, label)
			cleaned = strings.TrimSuffix(cleaned, "```")
			return strings.TrimSpace(cleaned)
		}
	}
	return cleaned
}

// ValidateMarkdown reports whether the narrative parses as Markdown.
// Goldmark is very permissive, so this only screens out pathological input.
func ValidateMarkdown(input string) bool {
	parser := goldmark.DefaultParser()
	reader := text.NewReader([]byte(input))
	return parser.Parse(reader) != nil
}

package extract

import (
	"regexp"
	"strings"
)

// Section boundary markers. Text following any of these belongs to another
// report section and must not bleed into action or factor descriptions.
var boundaryMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\*\*\d+\.\s*STRATEGIC\s+ALTERNATIVES?\*\*`),
	regexp.MustCompile(`(?i)\*\*\d+\.\s*ALTERNATIVES?\s+STRATÉGIQUES?\*\*`),
	regexp.MustCompile(`(?i)\*\*\d+\.\s*CHARTS?\*\*`),
	regexp.MustCompile(`(?i)\*\*\d+\.\s*GRAPH\w*\*\*`),
	regexp.MustCompile(`(?i)STRATEGIC\s+ALTERNATIVES?:`),
	regexp.MustCompile(`(?i)ALTERNATIVES?\s+STRATÉGIQUES?:`),
	regexp.MustCompile(`(?i)CHARTS?:`),
	regexp.MustCompile(`(?i)GRAPH\w*:`),
	regexp.MustCompile(`(?i)\*?\*?Alternative\s+\d+:`),
	regexp.MustCompile(`(?i)Impact\s+tréso:`),
}

var (
	boldHeaderRe    = regexp.MustCompile(`\*\*\d*\.?\s*[A-ZÀ-Ü][A-ZÀ-Ü\s]+\*\*`)
	boldRe          = regexp.MustCompile(`\*\*`)
	numberPrefixRe  = regexp.MustCompile(`^\d+\.\s*`)
	bulletPrefixRe  = regexp.MustCompile(`^[-•*]\s*`)
	multiSpaceRe    = regexp.MustCompile(`\s+`)
	spacesTabsRe    = regexp.MustCompile(`[ \t]+`)
	excessNewlineRe = regexp.MustCompile(`\n{3,}`)
)

// truncateAtBoundary cuts text at the earliest section boundary marker.
func truncateAtBoundary(text string) string {
	earliest := len(text)
	for _, re := range boundaryMarkers {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] < earliest {
			earliest = loc[0]
		}
	}
	return text[:earliest]
}

// cleanActionText strips markdown artifacts, numbered/bullet prefixes and
// anything past a section boundary from one action line.
func cleanActionText(text string) string {
	if text == "" {
		return ""
	}
	text = truncateAtBoundary(text)
	text = boldHeaderRe.ReplaceAllString(text, "")
	text = boldRe.ReplaceAllString(text, "")
	text = numberPrefixRe.ReplaceAllString(strings.TrimSpace(text), "")
	text = bulletPrefixRe.ReplaceAllString(text, "")
	text = multiSpaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(text), ".*"))
}

// normalizeBlock tidies a multi-line description: spaces and tabs collapse,
// paragraph structure survives.
func normalizeBlock(text string) string {
	text = spacesTabsRe.ReplaceAllString(text, " ")
	text = excessNewlineRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// normalizedKey builds the dedup key for extracted items: lowercase, no
// punctuation, first 50 chars.
func normalizedKey(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}
	key := multiSpaceRe.ReplaceAllString(strings.TrimSpace(b.String()), " ")
	if len(key) > 50 {
		key = key[:50]
	}
	return key
}

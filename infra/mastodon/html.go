package mastodon

import (
	"html"
	"regexp"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// stripHTML removes HTML tags and decodes entities.
// Good enough for terminal display; not a security boundary.
var (
	htmlTagRe   = regexp.MustCompile(`<[^>]*>`)
	lineBreakRe = regexp.MustCompile(`(?i)</p>|<br\s*/?>`)
)

func stripHTML(s string) string {
	// Paragraph ends and breaks become newlines
	s = lineBreakRe.ReplaceAllString(s, "\n")
	s = htmlTagRe.ReplaceAllString(s, "")
	return strings.TrimSpace(sanitizeForTerminal(html.UnescapeString(s)))
}

// sanitizeForTerminal drops escape sequences and control characters from
// remote text. Newlines and tabs survive.
func sanitizeForTerminal(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0):
			return -1
		default:
			return r
		}
	}, s)
}

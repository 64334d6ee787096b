package usecase

import (
	"html"
	"regexp"
	"strings"
)

var (
	blockTagPattern   = regexp.MustCompile(`(?i)<(br|/p|/div|/li|/h[1-6]|/tr)\s*/?>`)
	htmlTagPattern    = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`[ \t]+`)
	blankLinePattern  = regexp.MustCompile(`\n{3,}`)
)

// stripRichText converts a rich-text description into plain text suitable
// for full-text indexing. Block-level closers become newlines so words
// from adjacent elements do not run together.
func stripRichText(s string) string {
	if s == "" {
		return ""
	}

	text := blockTagPattern.ReplaceAllString(s, "\n")
	text = htmlTagPattern.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)
	text = whitespacePattern.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = blankLinePattern.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

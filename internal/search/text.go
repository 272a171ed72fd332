package search

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

const maxExcerptLength = 300

var spacePattern = regexp.MustCompile(`\s+`)

// plainText strips markup from an API snippet, decodes HTML entities and
// collapses whitespace. Wikipedia search snippets wrap matches in <span> tags.
func plainText(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(spacePattern.ReplaceAllString(b.String(), " "))
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			b.WriteByte(' ')
		}
	}
}

// excerpt shortens text to its leading sentences, at most maxExcerptLength runes.
func excerpt(text string) string {
	text = plainText(text)
	r := []rune(text)
	if len(r) <= maxExcerptLength {
		return text
	}
	cut := string(r[:maxExcerptLength])
	if i := strings.LastIndex(cut, ". "); i > 0 {
		return cut[:i+1]
	}
	return strings.TrimSpace(cut) + "..."
}

package verify

import (
	"regexp"
	"strings"
	"unicode"
)

var nonWord = regexp.MustCompile(`\W+`)

// splitSentences splits text on runs of '.', '!' and '?' and drops blank fragments.
// A '.' between two digits is a decimal point, not a boundary. Returned sentences are trimmed.
func splitSentences(text string) []string {
	runes := []rune(text)
	var sentences []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if !isTerminal(r) {
			current.WriteRune(r)
			continue
		}
		if r == '.' && i > 0 && i+1 < len(runes) && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]) {
			current.WriteRune(r)
			continue
		}
		for i+1 < len(runes) && isTerminal(runes[i+1]) {
			i++
		}
		flush()
	}
	flush()

	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// tokenize lowercases s and splits it on runs of non-word characters.
func tokenize(s string) []string {
	parts := nonWord.Split(strings.ToLower(s), -1)
	tokens := parts[:0]
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// sharedCount counts tokens of a (with multiplicity) that also appear in b.
func sharedCount(a, b []string) int {
	set := make(map[string]struct{}, len(b))
	for _, t := range b {
		set[t] = struct{}{}
	}
	n := 0
	for _, t := range a {
		if _, ok := set[t]; ok {
			n++
		}
	}
	return n
}

// overlapRatio is sharedCount(a, b) over the longer of the two token lists.
func overlapRatio(a, b []string) float64 {
	longest := max(len(a), len(b))
	if longest == 0 {
		return 0
	}
	return float64(sharedCount(a, b)) / float64(longest)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

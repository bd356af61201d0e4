// Package normalize performs pure text cleanup ahead of intent and item matching.
package normalize

import (
	"sort"
	"strings"
)

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "some": true, "any": true,
	"please": true, "me": true, "my": true, "i": true, "you": true,
	"your": true, "to": true, "for": true, "is": true, "are": true,
	"it": true, "that": true, "this": true, "just": true, "would": true,
	"like": true, "can": true, "could": true, "do": true, "have": true,
	"got": true, "there": true, "us": true, "we": true, "our": true,
	"at": true, "on": true, "in": true, "one": true, "kindly": true,
}

// fillerPrefixes are stripped from the start of a line, longest first.
var fillerPrefixes = sortedByLength([]string{
	"could you", "can you", "would you", "will you",
	"could i", "can i", "may i", "might i",
	"i want to", "i wanna", "i would like to", "i would like", "id like to", "id like",
	"i'd like to", "i'd like", "i need to", "i need", "i want",
	"let me", "lets", "let's", "please", "hey", "ok so", "so",
	"i wish to", "i am looking to", "im looking to", "i'm looking to",
	"i am looking for", "im looking for", "i'm looking for",
	"do you have", "have you got", "got any",
})

func sortedByLength(in []string) []string {
	out := append([]string(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}

// Normalize lowercases, strips every character outside [a-z0-9\s] and
// collapses whitespace.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '\r', r == '\v', r == '\f':
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Sanitize normalizes text and drops stopword tokens.
func Sanitize(text string) string {
	words := strings.Fields(Normalize(text))
	kept := words[:0]
	for _, w := range words {
		if !stopwords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// Preprocess collapses whitespace, strips the longest known filler prefix and
// sanitizes the remainder.
func Preprocess(text string) string {
	collapsed := strings.ToLower(strings.Join(strings.Fields(text), " "))
	for _, prefix := range fillerPrefixes {
		if collapsed == prefix {
			collapsed = ""
			break
		}
		if strings.HasPrefix(collapsed, prefix+" ") {
			collapsed = collapsed[len(prefix)+1:]
			break
		}
	}
	return Sanitize(collapsed)
}

// Tokens splits already-normalized text into words.
func Tokens(normalized string) []string {
	return strings.Fields(normalized)
}

// IsStopword reports whether a normalized token is a stopword.
func IsStopword(token string) bool {
	return stopwords[token]
}

// Singular strips one trailing "s" from tokens longer than three letters.
func Singular(token string) string {
	if len(token) > 3 && strings.HasSuffix(token, "s") && !strings.HasSuffix(token, "ss") {
		return token[:len(token)-1]
	}
	return token
}

// IsNumeric reports whether s is a non-empty digit string.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

package faq

import (
	"strings"
	"unicode"
)

// canonicalQuery folds case, punctuation and spacing so that trivially
// different phrasings of a question share one trending counter.
func canonicalQuery(q string) string {
	lowered := strings.ToLower(strings.TrimSpace(q))
	var builder strings.Builder
	builder.Grow(len(lowered))
	lastSpace := true
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
			lastSpace = false
			continue
		}
		// whitespace and punctuation both collapse to one separator
		if !lastSpace {
			builder.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(builder.String())
}

// titleCase upper-cases the first letter of every run of letters and
// lower-cases the rest, e.g. "photo tips" -> "Photo Tips".
func titleCase(s string) string {
	var builder strings.Builder
	builder.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				builder.WriteRune(unicode.ToLower(r))
			} else {
				builder.WriteRune(unicode.ToTitle(r))
			}
			prevLetter = true
			continue
		}
		builder.WriteRune(r)
		prevLetter = false
	}
	return builder.String()
}

// wordSet splits lower-cased text on whitespace; punctuation stays attached.
func wordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

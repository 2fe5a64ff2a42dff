package faq

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	questionTokenBonus = 0.5
	answerTokenBonus   = 0.3
)

// LexicalScore rates an entry against a query without embeddings:
// the share of common words over the larger word set, plus a bonus when any
// question word occurs in the query text and a smaller one for answer words.
// Occurrence is whole-word: "a" does not occur in "unrelated".
func LexicalScore(query string, entry Entry) float64 {
	q := strings.ToLower(query)
	queryWords := wordSet(strings.Fields(q))
	questionTokens := strings.Fields(strings.ToLower(entry.Question))
	questionWords := wordSet(questionTokens)

	var score float64
	common := 0
	for w := range queryWords {
		if _, ok := questionWords[w]; ok {
			common++
		}
	}
	if common > 0 {
		score += float64(common) / float64(max(len(queryWords), len(questionWords)))
	}
	if anyContained(q, questionTokens) {
		score += questionTokenBonus
	}
	if anyContained(q, strings.Fields(strings.ToLower(entry.Answer))) {
		score += answerTokenBonus
	}
	return score
}

// MatchLexical picks the entry with the strictly highest lexical score; the
// first entry wins ties. Scores at or below threshold are Uncertain.
func MatchLexical(query string, entries []Entry, threshold float64) Selection {
	best := Match{Index: -1}
	for i, entry := range entries {
		if score := LexicalScore(query, entry); score > best.Score {
			best = Match{Index: i, Score: score}
		}
	}
	if best.Index < 0 || best.Score <= threshold || entries[best.Index].Answer == "" {
		sel := Selection{State: StateUncertain, Answer: UncertainAnswer, Match: best}
		if best.Index >= 0 {
			sel.Entry = entries[best.Index]
		}
		return sel
	}
	return Selection{State: StateConfident, Answer: entries[best.Index].Answer, Match: best, Entry: entries[best.Index]}
}

func anyContained(text string, tokens []string) bool {
	for _, tok := range tokens {
		if containsWord(text, tok) {
			return true
		}
	}
	return false
}

// containsWord reports whether word occurs in text without being glued to
// neighbouring letters or digits. Punctuation on either side is a boundary.
func containsWord(text, word string) bool {
	if word == "" {
		return false
	}
	first, _ := utf8.DecodeRuneInString(word)
	last, _ := utf8.DecodeLastRuneInString(word)
	needBefore, needAfter := isWordRune(first), isWordRune(last)
	for start := 0; start <= len(text)-len(word); {
		i := strings.Index(text[start:], word)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(word)
		okBefore := !needBefore || i == 0
		if !okBefore {
			r, _ := utf8.DecodeLastRuneInString(text[:i])
			okBefore = !isWordRune(r)
		}
		okAfter := !needAfter || end == len(text)
		if !okAfter {
			r, _ := utf8.DecodeRuneInString(text[end:])
			okAfter = !isWordRune(r)
		}
		if okBefore && okAfter {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		start = i + size
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

package faq

// State is the outcome of answer selection.
type State string

const (
	// StateConfident means the best match cleared the threshold.
	StateConfident State = "confident"
	// StateUncertain means the caller gets UncertainAnswer.
	StateUncertain State = "uncertain"
)

// Selection is the selector output: always carries a usable answer.
type Selection struct {
	State  State
	Answer string
	Match  Match
	Entry  Entry
}

// Select turns the ranker's best match into an answer. The result is
// Confident iff the score reaches threshold and the matched entry has a
// non-empty answer; otherwise it is Uncertain.
func Select(match Match, found bool, entries []Entry, threshold float64) Selection {
	if !found || match.Index < 0 || match.Index >= len(entries) {
		return Selection{State: StateUncertain, Answer: UncertainAnswer, Match: match}
	}
	entry := entries[match.Index]
	if match.Score < threshold || entry.Answer == "" {
		return Selection{State: StateUncertain, Answer: UncertainAnswer, Match: match, Entry: entry}
	}
	return Selection{State: StateConfident, Answer: entry.Answer, Match: match, Entry: entry}
}

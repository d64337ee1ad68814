package tokenizer

import (
	"regexp"
	"strings"
)

// Only ASCII letter runs survive; digits and non-Latin scripts are dropped.
var letterRun = regexp.MustCompile(`[a-z]+`)

// Tokenizer maps text to lower-cased ASCII word tokens with stop-words removed.
type Tokenizer struct {
	stop map[string]struct{}
}

// New builds a Tokenizer filtering the given stop-words.
func New(stopWords []string) *Tokenizer {
	stop := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		stop[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return &Tokenizer{stop: stop}
}

// Tokenize returns tokens in text order. Duplicates are kept.
func (t *Tokenizer) Tokenize(text string) []string {
	runs := letterRun.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(runs))
	for _, tok := range runs {
		if t.IsStopWord(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// IsStopWord reports whether token is filtered.
func (t *Tokenizer) IsStopWord(token string) bool {
	_, ok := t.stop[token]
	return ok
}

// Counts returns the token multiset.
func Counts(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	return counts
}

// Overlap is the sum over query tokens of their count in candidate. A query
// token that repeats is counted each time, so "security security" against a
// sentence holding "security" twice scores 4.
func Overlap(queryTokens []string, candidate map[string]int) int {
	score := 0
	for _, q := range queryTokens {
		score += candidate[q]
	}
	return score
}

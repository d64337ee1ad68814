package segmenter

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Segmenter splits prose into sentences at terminal punctuation followed by
// whitespace. Abbreviations, decimals and quotes are not special-cased, so
// "e.g. this" splits after "e.g." and "3.5 GHz" does not split at all.
type Segmenter struct {
	minLength int
}

// New returns a Segmenter dropping spans shorter than minLength runes.
func New(minLength int) *Segmenter {
	if minLength < 0 {
		minLength = 0
	}
	return &Segmenter{minLength: minLength}
}

// MinLength reports the rune threshold below which spans are discarded.
func (s *Segmenter) MinLength() int { return s.minLength }

// Segment returns trimmed sentences in text order.
func (s *Segmenter) Segment(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
		default:
			continue
		}
		next, size := utf8.DecodeRuneInString(text[i+1:])
		if size == 0 || !unicode.IsSpace(next) {
			continue
		}
		out = s.keep(out, text[start:i+1])
		start = i + 1
	}
	return s.keep(out, text[start:])
}

func (s *Segmenter) keep(out []string, span string) []string {
	span = strings.TrimSpace(span)
	if span == "" || utf8.RuneCountInString(span) < s.minLength {
		return out
	}
	return append(out, span)
}

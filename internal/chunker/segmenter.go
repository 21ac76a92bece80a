// Package chunker splits documents into bounded-size chunks for retrieval
// indexing.
package chunker

import (
	"regexp"
	"strings"
)

// Segmenter splits text into trimmed sentences in original order.
type Segmenter interface {
	Segment(text string) []string
}

// RegexSegmenter detects sentence boundaries on terminal punctuation.
// Question and exclamation openers (¿ ¡) stay attached to the sentence that
// follows them. A run of terminators (ellipses, "!!") belongs entirely to
// the sentence it closes.
type RegexSegmenter struct {
	splitter *regexp.Regexp
}

func NewRegexSegmenter() *RegexSegmenter {
	return &RegexSegmenter{
		splitter: regexp.MustCompile(`[^.!?]+[.!?]+`),
	}
}

// Segment returns the trimmed sentences of text. Trailing text without a
// terminator becomes a final sentence; whitespace-only input yields nil.
func (s *RegexSegmenter) Segment(text string) []string {
	matches := s.splitter.FindAllStringIndex(text, -1)

	var sentences []string
	last := 0
	for _, m := range matches {
		sent := strings.TrimSpace(text[m[0]:m[1]])
		if sent != "" {
			sentences = append(sentences, sent)
		}
		last = m[1]
	}
	if rest := strings.TrimSpace(text[last:]); rest != "" {
		sentences = append(sentences, rest)
	}

	return sentences
}

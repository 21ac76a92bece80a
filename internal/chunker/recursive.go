package chunker

import (
	"strings"
	"unicode"

	"github.com/platwave/unogpt/internal/domain"
)

// RecursiveConfig controls fixed-size character splitting.
type RecursiveConfig struct {
	MaxChars int
	MinChars int
	Overlap  int
}

// DefaultRecursiveConfig provides sane defaults for fixed-size splitting.
func DefaultRecursiveConfig() RecursiveConfig {
	return RecursiveConfig{
		MaxChars: 1000,
		MinChars: 200,
		Overlap:  100,
	}
}

// RecursiveChunker splits document content into fixed-size windows with
// configured overlap, cutting at whitespace when one falls within
// [MinChars, MaxChars]. Independent of sentence boundaries; a drop-in
// replacement for the sentence chunker on categorized document trees.
type RecursiveChunker struct {
	cfg RecursiveConfig
}

func NewRecursiveChunker(cfg RecursiveConfig) *RecursiveChunker {
	if cfg.MaxChars <= 0 {
		cfg = DefaultRecursiveConfig()
	}
	return &RecursiveChunker{cfg: cfg}
}

// Chunk splits each document independently, preserving metadata lineage the
// same way the sentence chunker does.
func (c *RecursiveChunker) Chunk(docs []domain.Document) []domain.Chunk {
	var chunks []domain.Chunk
	for _, doc := range docs {
		for _, content := range splitText(doc.Content, c.cfg) {
			chunks = append(chunks, domain.Chunk{Content: content, Metadata: doc.Metadata})
		}
	}
	return chunks
}

func splitText(text string, cfg RecursiveConfig) []string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil
	}
	runes := []rune(clean)
	if len(runes) <= cfg.MaxChars {
		return []string{clean}
	}

	chunks := make([]string, 0, 8)
	start := 0
	for start < len(runes) {
		end := start + cfg.MaxChars
		if end > len(runes) {
			end = len(runes)
		}

		if end < len(runes) {
			cut := end
			minCut := start + cfg.MinChars
			if minCut > end {
				minCut = start
			}
			for i := end; i > minCut; i-- {
				if unicode.IsSpace(runes[i-1]) {
					cut = i
					break
				}
			}
			end = cut
		}

		if end <= start {
			break
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(runes) {
			break
		}

		nextStart := end
		if cfg.Overlap > 0 && end-start > cfg.Overlap {
			nextStart = end - cfg.Overlap
		}
		if nextStart <= start {
			nextStart = end
		}
		start = nextStart
	}

	return chunks
}

package chunker

import (
	"strings"

	"github.com/platwave/unogpt/internal/domain"
)

// DefaultMaxChars bounds the accumulated sentence length of one chunk.
const DefaultMaxChars = 1000

// SentenceChunker greedily packs whole sentences into chunks of at most
// MaxChars characters. Sentences are never split: one sentence longer than
// MaxChars becomes its own oversized chunk.
type SentenceChunker struct {
	maxChars  int
	segmenter Segmenter
}

func NewSentenceChunker(maxChars int, segmenter Segmenter) *SentenceChunker {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if segmenter == nil {
		segmenter = NewRegexSegmenter()
	}
	return &SentenceChunker{maxChars: maxChars, segmenter: segmenter}
}

// Chunk splits each document independently; chunk boundaries never cross
// document boundaries and every chunk inherits its parent's metadata.
func (c *SentenceChunker) Chunk(docs []domain.Document) []domain.Chunk {
	var chunks []domain.Chunk
	for _, doc := range docs {
		chunks = append(chunks, c.chunkDocument(doc)...)
	}
	return chunks
}

func (c *SentenceChunker) chunkDocument(doc domain.Document) []domain.Chunk {
	sentences := c.segmenter.Segment(doc.Content)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []domain.Chunk
	var buffer []string
	running := 0

	flush := func() {
		content := strings.TrimSpace(strings.Join(buffer, " "))
		if content != "" {
			chunks = append(chunks, domain.Chunk{Content: content, Metadata: doc.Metadata})
		}
		buffer = buffer[:0]
		running = 0
	}

	for _, sentence := range sentences {
		length := len(sentence)
		if running+length > c.maxChars && len(buffer) > 0 {
			flush()
		}
		buffer = append(buffer, sentence)
		running += length
	}
	flush()

	return chunks
}

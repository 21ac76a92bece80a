package bot

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/platwave/unogpt/internal/domain"
)

// DefaultEngine answers without retrieval or history: the bare question goes
// straight to the generation collaborator.
type DefaultEngine struct {
	generator Generator
	persona   string
}

func NewDefaultEngine(generator Generator, opts ...DefaultOption) *DefaultEngine {
	e := &DefaultEngine{generator: generator, persona: defaultPersona}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DefaultOption configures a DefaultEngine.
type DefaultOption func(*DefaultEngine)

// WithDefaultPersona overrides the persona preamble.
func WithDefaultPersona(persona string) DefaultOption {
	return func(e *DefaultEngine) { e.persona = persona }
}

// Answer sends the question directly to the generator. Generation failures
// resolve to the fixed error message, never to an error.
func (e *DefaultEngine) Answer(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", domain.ErrEmptyQuestion
	}

	prompt := fmt.Sprintf("%s Answer the question concisely and clearly.\n\nQuestion: %s\nAnswer:", e.persona, question)

	answer, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		log.Printf("bot: default generation failed: %v", err)
		return MsgGenerationError, nil
	}
	return answer, nil
}

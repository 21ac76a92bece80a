// Package bot implements the conversational answering engine: follow-up
// rewriting, topic-change detection, retrieval-augmented generation and
// repetition filtering over an externally held turn history.
package bot

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/platwave/unogpt/internal/domain"
)

// Fixed user-visible messages. Every failure mode behind the answering
// boundary resolves to one of these instead of an error.
const (
	MsgNoInformation   = "No se encontró información relevante."
	MsgGenerationError = "Error al generar la respuesta."
	MsgNothingNew      = "Ya se ha proporcionado toda la información disponible."
)

const defaultPersona = "You are an AFP Uno expert."

// topicMarker is appended to the rendered history when the current question
// differs from the previous one.
const topicMarker = "[Nuevo tema]"

// DefaultFollowups are the generic follow-up phrases recognized after
// normalization. A question matching one of these carries no informational
// content of its own and is rewritten against the previous turn.
var DefaultFollowups = []string{
	"dime mas",
	"cuentame mas",
	"continua",
	"sigue",
	"mas detalles",
	"mas informacion",
	"tell me more",
	"continue",
	"more details",
}

// Generator produces a completion for a composed prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ContextRetriever resolves a question into a joined context string.
type ContextRetriever interface {
	Retrieve(ctx context.Context, question string) (string, error)
}

// Reply is the well-formed result of one answering call.
type Reply struct {
	Answer  string
	Context string
}

// Engine answers questions against retrieved context and a prior-turn
// history. It holds no conversation state itself; callers pass the history
// on every call.
type Engine struct {
	retriever ContextRetriever
	generator Generator
	persona   string
	followups map[string]struct{}
}

// Option configures an Engine.
type Option func(*Engine)

// WithPersona overrides the persona preamble of the composed prompt.
func WithPersona(persona string) Option {
	return func(e *Engine) { e.persona = persona }
}

// WithFollowupPhrases replaces the recognized generic follow-up phrases.
func WithFollowupPhrases(phrases []string) Option {
	return func(e *Engine) {
		e.followups = make(map[string]struct{}, len(phrases))
		for _, p := range phrases {
			e.followups[stripPunct(Normalize(p))] = struct{}{}
		}
	}
}

func NewEngine(retriever ContextRetriever, generator Generator, opts ...Option) *Engine {
	e := &Engine{
		retriever: retriever,
		generator: generator,
		persona:   defaultPersona,
	}
	WithFollowupPhrases(DefaultFollowups)(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Answer runs one answering call: rewrite generic follow-ups, detect topic
// changes, retrieve context, generate and filter repetitions. Every failure
// past the retrieval step resolves to a fixed message inside the Reply. The
// only returned errors are an empty question and a missing collection, which
// is a configuration problem rather than "no relevant documents".
func (e *Engine) Answer(ctx context.Context, question string, history []domain.Turn) (Reply, error) {
	if strings.TrimSpace(question) == "" {
		return Reply{}, domain.ErrEmptyQuestion
	}

	effective := question
	if prev, ok := lastTurn(history); ok {
		norm := stripPunct(Normalize(question))
		if e.isFollowup(norm) || norm == stripPunct(Normalize(prev.Question)) {
			effective = rewriteFollowup(prev.Question)
		}
	}

	docs, err := e.retriever.Retrieve(ctx, effective)
	if err != nil {
		return Reply{}, err
	}
	if strings.TrimSpace(docs) == "" {
		return Reply{Answer: MsgNoInformation, Context: ""}, nil
	}

	prompt := e.composePrompt(effective, docs, history)

	answer, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		log.Printf("bot: generation failed: %v", err)
		return Reply{Answer: MsgGenerationError, Context: docs}, nil
	}

	answer = filterRepetitions(answer, history)
	return Reply{Answer: answer, Context: docs}, nil
}

func (e *Engine) isFollowup(normalized string) bool {
	_, ok := e.followups[normalized]
	return ok
}

// rewriteFollowup turns a content-free follow-up into an explicit expansion
// request over the previous question.
func rewriteFollowup(previous string) string {
	return fmt.Sprintf(
		"Amplía la información sobre: %q. No repitas lo ya explicado y profundiza en subtemas relacionados.",
		previous,
	)
}

func (e *Engine) composePrompt(question, docs string, history []domain.Turn) string {
	var b strings.Builder
	b.WriteString(e.persona)
	b.WriteString(" Based on the following information, answer the question concisely and clearly.\n\n")
	b.WriteString("Information:\n")
	b.WriteString(docs)
	b.WriteString("\n")

	if len(history) > 0 {
		b.WriteString("\nConversation so far:\n")
		b.WriteString(renderHistory(question, history))
		b.WriteString("\n")
	}

	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\nAnswer:")
	return b.String()
}

// renderHistory renders prior turns as alternating user/bot lines and marks
// a topic change when the current question differs from the previous one.
func renderHistory(question string, history []domain.Turn) string {
	lines := make([]string, 0, len(history)*2+1)
	for _, turn := range history {
		lines = append(lines, "Usuario: "+turn.Question)
		lines = append(lines, "Bot: "+turn.Answer)
	}
	if prev, ok := lastTurn(history); ok {
		if stripPunct(Normalize(question)) != stripPunct(Normalize(prev.Question)) {
			lines = append(lines, topicMarker)
		}
	}
	return strings.Join(lines, "\n")
}

// filterRepetitions removes any prior answer repeated verbatim inside the
// new one. An answer emptied by the filter means the model had nothing new
// to add.
func filterRepetitions(answer string, history []domain.Turn) string {
	for _, turn := range history {
		if turn.Answer == "" {
			continue
		}
		answer = strings.ReplaceAll(answer, turn.Answer, "")
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return MsgNothingNew
	}
	return answer
}

func lastTurn(history []domain.Turn) (domain.Turn, bool) {
	if len(history) == 0 {
		return domain.Turn{}, false
	}
	return history[len(history)-1], true
}

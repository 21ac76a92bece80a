package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/platwave/unogpt/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRetriever struct {
	docs      string
	err       error
	questions []string
}

func (f *fakeRetriever) Retrieve(ctx context.Context, question string) (string, error) {
	f.questions = append(f.questions, question)
	return f.docs, f.err
}

type fakeGenerator struct {
	answer  string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func TestEngine_AnswerHappyPath(t *testing.T) {
	retriever := &fakeRetriever{docs: "Las AFP administran fondos de pensiones."}
	generator := &fakeGenerator{answer: "Una AFP administra tus ahorros previsionales."}
	e := NewEngine(retriever, generator)

	reply, err := e.Answer(context.Background(), "¿Qué es una AFP?", nil)
	require.NoError(t, err)

	assert.Equal(t, "Una AFP administra tus ahorros previsionales.", reply.Answer)
	assert.Equal(t, retriever.docs, reply.Context)

	require.Len(t, generator.prompts, 1)
	prompt := generator.prompts[0]
	assert.Contains(t, prompt, defaultPersona)
	assert.Contains(t, prompt, retriever.docs)
	assert.Contains(t, prompt, "¿Qué es una AFP?")
}

func TestEngine_AnswerEmptyQuestion(t *testing.T) {
	e := NewEngine(&fakeRetriever{}, &fakeGenerator{})

	_, err := e.Answer(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, domain.ErrEmptyQuestion)
}

func TestEngine_AnswerNoContextSkipsGeneration(t *testing.T) {
	retriever := &fakeRetriever{docs: ""}
	generator := &fakeGenerator{answer: "no debería llamarse"}
	e := NewEngine(retriever, generator)

	reply, err := e.Answer(context.Background(), "¿Qué es una AFP?", nil)
	require.NoError(t, err)

	assert.Equal(t, MsgNoInformation, reply.Answer)
	assert.Empty(t, reply.Context)
	assert.Empty(t, generator.prompts)
}

func TestEngine_AnswerGenerationFailure(t *testing.T) {
	retriever := &fakeRetriever{docs: "contexto"}
	generator := &fakeGenerator{err: errors.New("timeout")}
	e := NewEngine(retriever, generator)

	reply, err := e.Answer(context.Background(), "¿Qué es una AFP?", nil)
	require.NoError(t, err)

	assert.Equal(t, MsgGenerationError, reply.Answer)
	assert.Equal(t, "contexto", reply.Context)
}

func TestEngine_AnswerMissingCollection(t *testing.T) {
	retriever := &fakeRetriever{err: domain.ErrCollectionNotFound}
	e := NewEngine(retriever, &fakeGenerator{})

	_, err := e.Answer(context.Background(), "¿Qué es una AFP?", nil)
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)
}

func TestEngine_AnswerGenericFollowupRewrites(t *testing.T) {
	retriever := &fakeRetriever{docs: "contexto"}
	generator := &fakeGenerator{answer: "más detalle"}
	e := NewEngine(retriever, generator)

	history := []domain.Turn{{Question: "¿Qué es una AFP?", Answer: "Administra fondos."}}

	_, err := e.Answer(context.Background(), "cuéntame más", history)
	require.NoError(t, err)

	require.Len(t, retriever.questions, 1)
	rewritten := retriever.questions[0]
	assert.Contains(t, rewritten, "¿Qué es una AFP?")
	assert.Contains(t, rewritten, "No repitas")
	assert.NotEqual(t, "cuéntame más", rewritten)
}

func TestEngine_AnswerRepeatedQuestionRewrites(t *testing.T) {
	retriever := &fakeRetriever{docs: "contexto"}
	e := NewEngine(retriever, &fakeGenerator{answer: "respuesta"})

	history := []domain.Turn{{Question: "¿Qué es una AFP?", Answer: "Administra fondos."}}

	// Same question again, differing only in case and diacritics.
	_, err := e.Answer(context.Background(), "¿que es una afp?", history)
	require.NoError(t, err)

	require.Len(t, retriever.questions, 1)
	assert.Contains(t, retriever.questions[0], "Amplía la información")
}

func TestEngine_AnswerFollowupWithoutHistoryIsLiteral(t *testing.T) {
	retriever := &fakeRetriever{docs: "contexto"}
	e := NewEngine(retriever, &fakeGenerator{answer: "respuesta"})

	_, err := e.Answer(context.Background(), "cuéntame más", nil)
	require.NoError(t, err)

	require.Len(t, retriever.questions, 1)
	assert.Equal(t, "cuéntame más", retriever.questions[0])
}

func TestEngine_AnswerTopicChangeMarksHistory(t *testing.T) {
	retriever := &fakeRetriever{docs: "contexto"}
	generator := &fakeGenerator{answer: "respuesta"}
	e := NewEngine(retriever, generator)

	history := []domain.Turn{{Question: "¿Qué es una AFP?", Answer: "Administra fondos."}}

	_, err := e.Answer(context.Background(), "¿Cómo cambio de fondo?", history)
	require.NoError(t, err)

	require.Len(t, generator.prompts, 1)
	prompt := generator.prompts[0]
	assert.Contains(t, prompt, "Usuario: ¿Qué es una AFP?")
	assert.Contains(t, prompt, "Bot: Administra fondos.")
	assert.Contains(t, prompt, topicMarker)
}

func TestRenderHistory_SameQuestionHasNoMarker(t *testing.T) {
	history := []domain.Turn{{Question: "¿Qué es una AFP?", Answer: "Administra fondos."}}

	rendered := renderHistory("¿que es una AFP?", history)
	assert.Contains(t, rendered, "Usuario: ¿Qué es una AFP?")
	assert.Contains(t, rendered, "Bot: Administra fondos.")
	assert.NotContains(t, rendered, topicMarker)
}

func TestEngine_AnswerFiltersRepeatedPriorAnswers(t *testing.T) {
	prior := "Las AFP administran fondos de pensiones."
	retriever := &fakeRetriever{docs: "contexto"}
	generator := &fakeGenerator{answer: prior + " Además ofrecen APV."}
	e := NewEngine(retriever, generator)

	history := []domain.Turn{{Question: "¿Qué es una AFP?", Answer: prior}}

	reply, err := e.Answer(context.Background(), "¿Qué más hacen?", history)
	require.NoError(t, err)

	assert.NotContains(t, reply.Answer, prior)
	assert.Contains(t, reply.Answer, "Además ofrecen APV.")
}

func TestEngine_AnswerAllRepeatedYieldsFixedMessage(t *testing.T) {
	prior := "Las AFP administran fondos de pensiones."
	retriever := &fakeRetriever{docs: "contexto"}
	generator := &fakeGenerator{answer: prior}
	e := NewEngine(retriever, generator)

	history := []domain.Turn{{Question: "¿Qué es una AFP?", Answer: prior}}

	reply, err := e.Answer(context.Background(), "¿Qué más hacen?", history)
	require.NoError(t, err)

	assert.Equal(t, MsgNothingNew, reply.Answer)
}

func TestEngine_WithFollowupPhrases(t *testing.T) {
	retriever := &fakeRetriever{docs: "contexto"}
	e := NewEngine(retriever, &fakeGenerator{answer: "ok"}, WithFollowupPhrases([]string{"profundiza"}))

	history := []domain.Turn{{Question: "¿Qué es una AFP?", Answer: "Administra fondos."}}

	_, err := e.Answer(context.Background(), "Profundiza", history)
	require.NoError(t, err)
	require.Len(t, retriever.questions, 1)
	assert.Contains(t, retriever.questions[0], "Amplía la información")

	// The defaults are replaced, not extended.
	retriever.questions = nil
	_, err = e.Answer(context.Background(), "cuéntame más", history)
	require.NoError(t, err)
	require.Len(t, retriever.questions, 1)
	assert.Equal(t, "cuéntame más", retriever.questions[0])
}

func TestFilterRepetitions(t *testing.T) {
	history := []domain.Turn{
		{Question: "q1", Answer: "primera respuesta"},
		{Question: "q2", Answer: "segunda respuesta"},
	}

	got := filterRepetitions("primera respuesta y algo nuevo segunda respuesta", history)
	assert.Equal(t, "y algo nuevo", got)

	got = filterRepetitions("primera respuesta segunda respuesta", history)
	assert.Equal(t, MsgNothingNew, got)

	got = filterRepetitions("todo nuevo", nil)
	assert.Equal(t, "todo nuevo", got)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"¿Cómo estás?", "¿como estas?"},
		{"  PENSIÓN  ", "pension"},
		{"ñandú", "nandu"},
		{"ya normalizado", "ya normalizado"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), tt.in)
	}
}

func TestStripPunct(t *testing.T) {
	assert.Equal(t, "cuentame mas", stripPunct("¿cuentame mas?"))
	assert.Equal(t, "continua", stripPunct("  ¡continua!  "))
}

func TestDefaultEngine_Answer(t *testing.T) {
	generator := &fakeGenerator{answer: "respuesta directa"}
	e := NewDefaultEngine(generator)

	answer, err := e.Answer(context.Background(), "¿Qué es una AFP?")
	require.NoError(t, err)
	assert.Equal(t, "respuesta directa", answer)

	require.Len(t, generator.prompts, 1)
	assert.True(t, strings.Contains(generator.prompts[0], "¿Qué es una AFP?"))
	assert.NotContains(t, generator.prompts[0], "Information:")
}

func TestDefaultEngine_AnswerGenerationFailure(t *testing.T) {
	e := NewDefaultEngine(&fakeGenerator{err: errors.New("timeout")})

	answer, err := e.Answer(context.Background(), "¿Qué es una AFP?")
	require.NoError(t, err)
	assert.Equal(t, MsgGenerationError, answer)
}

func TestDefaultEngine_AnswerEmptyQuestion(t *testing.T) {
	e := NewDefaultEngine(&fakeGenerator{})

	_, err := e.Answer(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrEmptyQuestion)
}

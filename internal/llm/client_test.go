package llm

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	embedReq      openai.EmbeddingRequest
	embedResp     openai.EmbeddingResponse
	embedErr      error
	chatReq       openai.ChatCompletionRequest
	chatResp      openai.ChatCompletionResponse
	chatErr       error
	embedCalls    int
	chatCalls     int
}

func (f *fakeAPI) CreateEmbeddings(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error) {
	f.embedCalls++
	f.embedReq = req.(openai.EmbeddingRequest)
	return f.embedResp, f.embedErr
}

func (f *fakeAPI) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.chatCalls++
	f.chatReq = req
	return f.chatResp, f.chatErr
}

func newTestClient(api API) *Client {
	c := NewClientWithConfig(Config{APIKey: "test"})
	c.api = api
	return c
}

func TestEmbedMany_Success(t *testing.T) {
	api := &fakeAPI{
		embedResp: openai.EmbeddingResponse{
			Data: []openai.Embedding{
				{Index: 1, Embedding: []float32{0.3, 0.4}},
				{Index: 0, Embedding: []float32{0.1, 0.2}},
			},
		},
	}
	client := newTestClient(api)

	vectors, err := client.EmbedMany(context.Background(), []string{"uno", "dos"})

	require.NoError(t, err)
	require.Len(t, vectors, 2)
	// Results are reordered by index, parallel to the input.
	assert.Equal(t, []float32{0.1, 0.2}, vectors[0])
	assert.Equal(t, []float32{0.3, 0.4}, vectors[1])
	assert.Equal(t, 1, api.embedCalls)
	assert.Equal(t, openai.EmbeddingModel(DefaultEmbeddingModel), api.embedReq.Model)
}

func TestEmbedMany_CountMismatch(t *testing.T) {
	api := &fakeAPI{
		embedResp: openai.EmbeddingResponse{
			Data: []openai.Embedding{{Index: 0, Embedding: []float32{0.1}}},
		},
	}
	client := newTestClient(api)

	_, err := client.EmbedMany(context.Background(), []string{"uno", "dos"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "mismatch")
}

func TestEmbedMany_EmptyInput(t *testing.T) {
	client := newTestClient(&fakeAPI{})

	_, err := client.EmbedMany(context.Background(), nil)

	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestEmbedOne_Success(t *testing.T) {
	api := &fakeAPI{
		embedResp: openai.EmbeddingResponse{
			Data: []openai.Embedding{{Index: 0, Embedding: []float32{0.5}}},
		},
	}
	client := newTestClient(api)

	vec, err := client.EmbedOne(context.Background(), "pregunta")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.5}, vec)
}

func TestEmbedOne_EmptyText(t *testing.T) {
	client := newTestClient(&fakeAPI{})

	_, err := client.EmbedOne(context.Background(), "   ")

	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestEmbedOne_APIError(t *testing.T) {
	api := &fakeAPI{embedErr: errors.New("rate limit exceeded")}
	client := newTestClient(api)

	_, err := client.EmbedOne(context.Background(), "pregunta")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create embeddings")
}

func TestGenerate_Success(t *testing.T) {
	api := &fakeAPI{
		chatResp: openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "  La respuesta.  "}},
			},
		},
	}
	client := newTestClient(api)

	answer, err := client.Generate(context.Background(), "una pregunta")

	require.NoError(t, err)
	assert.Equal(t, "La respuesta.", answer)
	assert.Equal(t, DefaultCompletionModel, api.chatReq.Model)
	assert.Equal(t, DefaultMaxTokens, api.chatReq.MaxTokens)
	require.Len(t, api.chatReq.Messages, 1)
	assert.Equal(t, "una pregunta", api.chatReq.Messages[0].Content)
}

func TestGenerate_NoChoices(t *testing.T) {
	client := newTestClient(&fakeAPI{})

	_, err := client.Generate(context.Background(), "pregunta")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no completion choices")
}

func TestGenerate_APIError(t *testing.T) {
	api := &fakeAPI{chatErr: errors.New("model overloaded")}
	client := newTestClient(api)

	_, err := client.Generate(context.Background(), "pregunta")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create completion")
}

func TestNewClientWithConfig_Defaults(t *testing.T) {
	client := NewClientWithConfig(Config{APIKey: "test"})

	assert.Equal(t, DefaultEmbeddingModel, client.embeddingModel)
	assert.Equal(t, DefaultCompletionModel, client.completionModel)
	assert.Equal(t, DefaultMaxTokens, client.maxTokens)
}

func TestNewClientFromEnv_MissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewClientFromEnv()

	assert.ErrorIs(t, err, ErrNoAPIKey)
}

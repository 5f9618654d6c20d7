package embedding

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIProvider asks text-embedding-3-small for vectors truncated to the
// index dimension.
type OpenAIProvider struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int64
}

func NewOpenAIProvider(apiKey, baseURL string, dimensions int) (EmbeddingProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required for openai embeddings")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}

	client := openai.NewClient(opts...)
	return &OpenAIProvider{
		client:     &client,
		model:      openai.EmbeddingModelTextEmbedding3Small,
		dimensions: int64(dimensions),
	}, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	resp, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
		Model:      p.model,
		Dimensions: openai.Int(p.dimensions),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding request failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("empty embeddings from openai")
	}

	raw := resp.Data[0].Embedding
	values := make([]float32, len(raw))
	for i, v := range raw {
		values[i] = float32(v)
	}
	return NewResponse(normalizeVector(values)), nil
}

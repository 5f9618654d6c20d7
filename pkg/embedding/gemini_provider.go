package embedding

import (
	"context"
	"net/http"
	"time"
)

const (
	geminiModel    = "text-embedding-004"
	geminiEndpoint = "https://generativelanguage.googleapis.com/v1/models/" + geminiModel + ":embedContent"
)

// GeminiProvider uses the Generative Language embedContent API. taskType is
// forwarded so documents and queries can be embedded asymmetrically.
type GeminiProvider struct {
	ApiKey   string
	endpoint string
	client   *http.Client
}

func NewGeminiProvider(apiKey string) EmbeddingProvider {
	return &GeminiProvider{
		ApiKey:   apiKey,
		endpoint: geminiEndpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *GeminiProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	payload := EmbeddingRequest{
		Model:    geminiModel,
		Content:  EmbeddingRequestContent{Parts: []EmbeddingRequestContentPart{{Text: text}}},
		TaskType: taskType,
	}
	var out EmbeddingResponse
	if err := PostJSON(ctx, p.client, "gemini", p.endpoint, map[string]string{"x-goog-api-key": p.ApiKey}, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

package jina

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"jobmatch-be/pkg/embedding"
)

const (
	defaultEndpoint = "https://api.jina.ai/v1/embeddings"
	defaultModel    = "jina-embeddings-v2-base-en"
)

// Provider talks to the Jina embeddings API. The v2 base model emits 768
// dimensions, matching the index columns.
type Provider struct {
	apiKey   string
	endpoint string
	model    string
	client   *http.Client
}

type request struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type response struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Detail string `json:"detail,omitempty"`
}

func NewProvider(apiKey string) *Provider {
	return &Provider{
		apiKey:   apiKey,
		endpoint: defaultEndpoint,
		model:    defaultModel,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *Provider) Generate(ctx context.Context, text string, _ string) (*embedding.EmbeddingResponse, error) {
	var out response
	headers := map[string]string{"Authorization": "Bearer " + p.apiKey}
	if err := embedding.PostJSON(ctx, p.client, "jina", p.endpoint, headers, request{Model: p.model, Input: []string{text}}, &out); err != nil {
		return nil, err
	}
	if out.Detail != "" {
		return nil, fmt.Errorf("jina: %s", out.Detail)
	}
	if len(out.Data) == 0 {
		return nil, errors.New("jina: empty embedding list")
	}
	return embedding.NewResponse(out.Data[0].Embedding), nil
}


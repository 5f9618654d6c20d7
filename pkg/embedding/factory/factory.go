package factory

import (
	"fmt"
	"strings"

	"jobmatch-be/pkg/embedding"
	"jobmatch-be/pkg/embedding/jina"
)

type Options struct {
	Provider       string
	GeminiApiKey   string
	OllamaBaseURL  string
	OllamaModel    string
	JinaApiKey     string
	OpenAIApiKey   string
	OpenAIBaseURL  string
	Dimensions     int
	RequestsPerSec float64
	Burst          int
}

// NewEmbeddingProvider builds the configured provider wrapped in the rate limiter.
func NewEmbeddingProvider(opts Options) (embedding.EmbeddingProvider, error) {
	var (
		provider embedding.EmbeddingProvider
		err      error
	)

	switch strings.ToLower(opts.Provider) {
	case "gemini", "":
		provider = embedding.NewGeminiProvider(opts.GeminiApiKey)
	case "ollama":
		provider = embedding.NewOllamaProvider(opts.OllamaBaseURL, opts.OllamaModel)
	case "jina":
		provider = jina.NewProvider(opts.JinaApiKey)
	case "openai":
		provider, err = embedding.NewOpenAIProvider(opts.OpenAIApiKey, opts.OpenAIBaseURL, opts.Dimensions)
		if err != nil {
			return nil, err
		}
	case "hash":
		provider = embedding.NewHashProvider(opts.Dimensions)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", opts.Provider)
	}

	return embedding.NewRateLimitedProvider(provider, embedding.RateLimitConfig{
		RequestsPerSecond: opts.RequestsPerSec,
		BurstSize:         opts.Burst,
	}), nil
}

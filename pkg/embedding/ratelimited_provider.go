package embedding

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitConfig holds the token bucket settings for outbound embedding calls.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

// RateLimitedProvider throttles a provider so a full worker batch cannot
// exceed the upstream quota.
type RateLimitedProvider struct {
	next    EmbeddingProvider
	limiter *rate.Limiter
}

func NewRateLimitedProvider(next EmbeddingProvider, cfg RateLimitConfig) EmbeddingProvider {
	if cfg.RequestsPerSecond <= 0 {
		return next
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = 1
	}
	return &RateLimitedProvider{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
	}
}

func (p *RateLimitedProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return p.next.Generate(ctx, text, taskType)
}

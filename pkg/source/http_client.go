package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"jobmatch-be/internal/entity"

	"github.com/google/uuid"
)

// HTTPClient reads documents from the internal endpoints of the owning services,
// authenticating with a service token.
type HTTPClient struct {
	baseURL      string
	serviceToken string
	client       *http.Client
}

func newHTTPClient(baseURL, serviceToken string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		serviceToken: serviceToken,
		client:       &http.Client{Timeout: timeout},
	}
}

func getJSON[T any](ctx context.Context, c *HTTPClient, path string) (*T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.serviceToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.serviceToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request %s returned status %d: %s", path, resp.StatusCode, string(body))
	}

	var env envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if env.Data == nil {
		return nil, ErrNotFound
	}
	return env.Data, nil
}

type HTTPJobSource struct {
	http *HTTPClient
}

func NewHTTPJobSource(baseURL, serviceToken string, timeout time.Duration) *HTTPJobSource {
	return &HTTPJobSource{http: newHTTPClient(baseURL, serviceToken, timeout)}
}

func (s *HTTPJobSource) GetJob(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	payload, err := getJSON[jobPayload](ctx, s.http, "/api/v1/internal/jobs/"+id.String())
	if err != nil {
		return nil, err
	}
	return payload.toEntity(), nil
}

type HTTPProfileSource struct {
	http *HTTPClient
}

func NewHTTPProfileSource(baseURL, serviceToken string, timeout time.Duration) *HTTPProfileSource {
	return &HTTPProfileSource{http: newHTTPClient(baseURL, serviceToken, timeout)}
}

func (s *HTTPProfileSource) GetCandidate(ctx context.Context, id uuid.UUID) (*entity.CandidateProfile, error) {
	payload, err := getJSON[candidatePayload](ctx, s.http, "/api/v1/internal/candidates/"+id.String())
	if err != nil {
		return nil, err
	}
	return payload.toEntity(), nil
}

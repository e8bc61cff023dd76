// Package rerank implements the HTTP client for the optional remote
// reranking service.
package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/andraa0104/isystem-1-sub006/internal/domain/coding"
)

// Client posts low-confidence suggestions to a remote reranking endpoint.
// The timeout bounds the whole call; callers treat every error as "keep the
// local suggestion".
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewClient creates a reranker client. The timeout defaults to 2 seconds
// when not positive.
func NewClient(endpoint, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Client{
		endpoint:   endpoint,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Rerank implements coding.Reranker.
func (c *Client) Rerank(ctx context.Context, req coding.RerankRequest) (*coding.RerankResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rerank request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build rerank request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("rerank call failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("rerank endpoint returned status %d", resp.StatusCode)
	}

	var result coding.RerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode rerank response: %w", err)
	}
	return &result, nil
}

// Package evalclient provides the client for the remote demographic
// evaluation provider: one scoring request per demographic profile,
// returning a rating distribution and free-text feedback.
package evalclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/synthpanel/synthpanel/domain"
)

// Evaluator scores a product image against one demographic profile.
type Evaluator interface {
	Evaluate(ctx context.Context, imageBase64 string, profile domain.DemographicProfile) (*domain.EvaluationResult, error)
}

// Client is the HTTP evaluation provider client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new evaluation provider client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Ensure Client implements the Evaluator interface.
var _ Evaluator = (*Client)(nil)

// evaluationRequest is the provider's request payload.
type evaluationRequest struct {
	Image   string                    `json:"image"`
	Profile domain.DemographicProfile `json:"demographic_profile"`
}

// Evaluate sends one scoring request. A non-2xx response or transport
// failure is reported as an upstream error; callers treat it as a
// single dropped profile, never a batch failure.
func (c *Client) Evaluate(ctx context.Context, imageBase64 string, profile domain.DemographicProfile) (*domain.EvaluationResult, error) {
	body, err := json.Marshal(evaluationRequest{Image: imageBase64, Profile: profile})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: evaluator returned [%d]: %s", domain.ErrUpstream, resp.StatusCode, string(respBody))
	}

	var result domain.EvaluationResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &result, nil
}

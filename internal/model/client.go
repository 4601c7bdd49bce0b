// Package model provides the HTTP client for the external scoring service.
package model

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fraudlens/fraudlens/internal/domain"
)

// ErrUnavailable indicates the model service could not produce a usable
// score. Callers fall back to the local heuristic when they see it.
var ErrUnavailable = errors.New("model service unavailable")

// Client calls the external scoring service. It implements domain.Scorer.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a model client with a bounded request timeout. The
// fallback path depends on failure being detected promptly, so the timeout
// is never unlimited.
func NewClient(cfg domain.ScorerConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	baseURL := cfg.ModelURL
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// predictResponse is the model service response body.
type predictResponse struct {
	FraudScore  *float64          `json:"fraudScore"`
	RiskFactors map[string]string `json:"riskFactors"`
}

// Score sends the request to POST {base}/predict and returns the model's
// score and risk factors. Every failure mode (transport error, non-2xx
// status, malformed body, out-of-range score) is wrapped in ErrUnavailable.
func (c *Client) Score(ctx context.Context, req *domain.TransactionRequest) (int, map[string]string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: marshal request: %v", ErrUnavailable, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var pr predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return 0, nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	if pr.FraudScore == nil {
		return 0, nil, fmt.Errorf("%w: response missing fraudScore", ErrUnavailable)
	}

	score := int(*pr.FraudScore)
	if score < 0 || score > 100 {
		return 0, nil, fmt.Errorf("%w: fraudScore %d out of range", ErrUnavailable, score)
	}

	// riskFactors is optional in the model response
	factors := pr.RiskFactors
	if factors == nil {
		factors = map[string]string{}
	}

	return score, factors, nil
}

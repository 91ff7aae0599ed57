package refresh

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Renewed is the outcome of a successful exchange. RefreshToken is
// non-empty only when the backend rotated it.
type Renewed struct {
	AccessToken  string
	RefreshToken string
}

// Exchanger performs the network half of a renewal: one refresh token in,
// one renewed credential out.
type Exchanger interface {
	Exchange(ctx context.Context, refreshToken string) (Renewed, error)
}

// HTTPExchangerConfig configures the HTTP exchanger.
type HTTPExchangerConfig struct {
	// Endpoint is the absolute URL of the refresh endpoint. Required.
	Endpoint string

	// Timeout is the request timeout when no HTTPClient is supplied.
	// Default: 10 seconds. A timed-out exchange counts as a failed one.
	Timeout time.Duration

	// HTTPClient is the client to use. If nil, a default client with
	// Timeout is used.
	HTTPClient *http.Client
}

// HTTPExchanger exchanges a refresh token for a renewed access token over
// HTTP: POST {"refresh_token": ...} -> {"access_token": ..., "refresh_token"?: ...}.
type HTTPExchanger struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPExchanger creates an HTTP exchanger.
func NewHTTPExchanger(config HTTPExchangerConfig) *HTTPExchanger {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}
	return &HTTPExchanger{endpoint: config.Endpoint, httpClient: httpClient}
}

type exchangeRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type exchangeResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Exchange performs the renewal call.
func (e *HTTPExchanger) Exchange(ctx context.Context, refreshToken string) (Renewed, error) {
	body, err := json.Marshal(exchangeRequest{RefreshToken: refreshToken})
	if err != nil {
		return Renewed{}, fmt.Errorf("refresh: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return Renewed{}, fmt.Errorf("refresh: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return Renewed{}, fmt.Errorf("refresh: exchange: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return Renewed{}, fmt.Errorf("refresh: exchange: status %d", resp.StatusCode)
	}

	var out exchangeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Renewed{}, fmt.Errorf("refresh: decode response: %w", err)
	}
	if out.AccessToken == "" {
		return Renewed{}, ErrEmptyAccessToken
	}

	return Renewed{AccessToken: out.AccessToken, RefreshToken: out.RefreshToken}, nil
}

// Ensure HTTPExchanger implements Exchanger
var _ Exchanger = (*HTTPExchanger)(nil)

package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"
)

const (
	// Spotify allows 100 ids per batch audio-features call; this service
	// never requests more than featureBatchLimit at once.
	featureBatchLimit = 100

	defaultRequestsPerSecond = 10
)

// Client issues authenticated GET requests against the Spotify Web API and
// normalises failures into typed errors. It holds no per-user state; the
// caller supplies the bearer token on every call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client (primarily for testing).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL overrides the API base URL (primarily for testing).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewClient creates a Spotify API client.
func NewClient(options ...ClientOption) *Client {
	c := &Client{
		baseURL:    BaseURL,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), 1),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Get performs a single authenticated GET and decodes the JSON body into
// result. Non-2xx statuses become *APIError; failures before a status was
// received wrap TransportErr. Nothing is retried.
func (c *Client) Get(ctx context.Context, accessToken, endpoint string, params url.Values, result any) error {
	apiURL := c.baseURL + endpoint
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", TransportErr, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", TransportErr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiErrorFromResponse(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// ProfileWithToken retrieves the profile the given access token belongs to.
// Used during login, before a credential record exists for the account.
func (c *Client) ProfileWithToken(ctx context.Context, accessToken string) (*UserProfile, error) {
	var profile UserProfile
	if err := c.Get(ctx, accessToken, "/me", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func apiErrorFromResponse(resp *http.Response) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Message = envelope.Error.Message
	}
	return apiErr
}

package veo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Static errors for Veo client operations.
var (
	// ErrAPIKeyNotSet is returned when no API key is provided and the
	// VEO_API_KEY environment variable is not set.
	ErrAPIKeyNotSet = errors.New("veo: API key is required")
	// ErrPromptRequired is returned when the generation input has no prompt.
	ErrPromptRequired = errors.New("veo: prompt is required")
	// ErrRequestFailed is returned when the request fails with a non-2xx
	// status code. The wrapped message carries the provider's error body.
	ErrRequestFailed = errors.New("veo: request failed")
)

// defaultTimeout bounds the generation call. There is no retry: a timeout
// fails the owning job only.
const defaultTimeout = 120 * time.Second

// Client defines the interface for the Veo video generation API.
type Client interface {
	// GenerateVideo requests a video for the given input and returns the raw
	// response body. Interpreting the body is the resolver's concern, since
	// the provider answers in several schema versions.
	GenerateVideo(ctx context.Context, input GenerateInput) ([]byte, error)
}

// HTTPClient is the HTTP implementation of the Veo Client interface.
type HTTPClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// ClientOption is a function that configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithAPIKey sets the API key for authentication.
func WithAPIKey(key string) ClientOption {
	return func(hc *HTTPClient) {
		hc.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(hc *HTTPClient) {
		hc.httpClient = c
	}
}

// WithBaseURL sets a custom base URL for the Veo API.
func WithBaseURL(url string) ClientOption {
	return func(hc *HTTPClient) {
		hc.baseURL = url
	}
}

// NewClient creates a new Veo HTTP client.
// The API key can be set via the WithAPIKey option. If not provided,
// it is read from the environment variable VEO_API_KEY.
func NewClient(opts ...ClientOption) (*HTTPClient, error) {
	c := &HTTPClient{
		baseURL:    "https://generativelanguage.googleapis.com/v1beta",
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	// If API key was not set via option, try environment variable
	if c.apiKey == "" {
		c.apiKey = os.Getenv("VEO_API_KEY")
	}

	if c.apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}

	return c, nil
}

// GenerateVideo requests a video from the model selected by input.Quality
// and returns the raw response body.
func (c *HTTPClient) GenerateVideo(ctx context.Context, input GenerateInput) ([]byte, error) {
	if input.Prompt == "" {
		return nil, ErrPromptRequired
	}

	reqBody := generateRequest{
		Prompt:        input.Prompt,
		AspectRatio:   input.AspectRatio,
		Resolution:    input.Resolution,
		GenerateAudio: input.GenerateAudio,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("veo: marshal request: %w", err)
	}

	model := ModelForQuality(input.Quality)
	url := fmt.Sprintf("%s/models/%s:generateVideo", c.baseURL, model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("veo: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("veo: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("veo: read response: %w", err)
	}

	// Surface the provider's error body verbatim so the job captures the
	// most specific detail available.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w with status %d: %s", ErrRequestFailed, resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)

// Package notify delivers job outcomes to a callback endpoint.
// Delivery is best-effort: a failed callback is logged and otherwise
// ignored, and never reopens or fails the job it reports on.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lromero/videogen-api/internal/job"
)

// defaultTimeout bounds a single callback delivery.
const defaultTimeout = 10 * time.Second

// Payload is the JSON body posted to the callback endpoint.
type Payload struct {
	// JobID identifies the finished job.
	JobID string `json:"jobId"`
	// Status is the terminal job status.
	Status job.Status `json:"status"`
	// Result is set when the job produced an artifact.
	Result *job.Result `json:"result,omitempty"`
	// Error is set when the job failed.
	Error string `json:"error,omitempty"`
}

// Notifier posts job outcomes to a callback URL.
type Notifier struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// Option is a function that configures a Notifier.
type Option func(*Notifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(n *Notifier) {
		n.httpClient = c
	}
}

// New creates a new Notifier.
func New(logger *slog.Logger, opts ...Option) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	n := &Notifier{
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify posts the payload to callbackURL. An empty callbackURL is a no-op.
// Errors are logged at warn level and swallowed.
func (n *Notifier) Notify(ctx context.Context, callbackURL string, payload Payload) {
	if callbackURL == "" {
		return
	}

	if err := n.deliver(ctx, callbackURL, payload); err != nil {
		n.logger.Warn("callback delivery failed",
			slog.String("job_id", payload.JobID),
			slog.String("callback_url", callbackURL),
			slog.String("error", err.Error()),
		)
		return
	}

	n.logger.Info("callback delivered",
		slog.String("job_id", payload.JobID),
		slog.String("callback_url", callbackURL),
	)
}

// deliver performs a single POST to the callback endpoint.
func (n *Notifier) deliver(ctx context.Context, callbackURL string, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, callbackURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post callback: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("callback returned status %d", resp.StatusCode)
	}
	return nil
}

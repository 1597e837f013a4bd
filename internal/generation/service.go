// Package generation provides the orchestrator for video generation jobs.
// The Service admits jobs synchronously and drives each one through the
// provider call, response resolution, artifact storage, and completion
// notification in a background goroutine that owns the job record.
package generation

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lromero/videogen-api/internal/job"
	"github.com/lromero/videogen-api/internal/job/id"
	"github.com/lromero/videogen-api/internal/notify"
	"github.com/lromero/videogen-api/internal/preflight"
	"github.com/lromero/videogen-api/internal/storage"
	"github.com/lromero/videogen-api/internal/veo"
)

// ErrPromptRequired is returned at admission when the prompt is empty.
// The job is never created in that case.
var ErrPromptRequired = errors.New("generation: prompt is required")

// Progress checkpoints. Coarse UI hints, not a fine-grained percentage.
const (
	progressStarted   = 5
	progressCalling   = 10
	progressResolving = 40
	progressDone      = 100
)

// downloadTimeout bounds the asset download, matching the provider call bound.
const downloadTimeout = 120 * time.Second

// GenerateInput contains the parameters for admitting a generation job.
type GenerateInput struct {
	Prompt        string
	AspectRatio   string
	Resolution    string
	GenerateAudio bool
	Quality       job.Quality
	PreflightID   string
	CallbackURL   string
}

// Service orchestrates the generation job lifecycle.
// A nil provider client puts the service in simulation mode: jobs complete
// with a placeholder artifact and never touch the network.
type Service struct {
	store          job.Store
	client         veo.Client
	artifacts      storage.Storage
	notifier       *notify.Notifier
	logger         *slog.Logger
	callbackURL    string
	downloadClient *http.Client
}

// Option is a function that configures a Service.
type Option func(*Service)

// WithClient sets the provider client. Leaving it unset enables
// simulation mode.
func WithClient(c veo.Client) Option {
	return func(s *Service) {
		s.client = c
	}
}

// WithDefaultCallbackURL sets the globally configured callback target,
// used when a job carries no per-request override.
func WithDefaultCallbackURL(url string) Option {
	return func(s *Service) {
		s.callbackURL = url
	}
}

// WithDownloadClient sets a custom HTTP client for asset downloads.
func WithDownloadClient(c *http.Client) Option {
	return func(s *Service) {
		s.downloadClient = c
	}
}

// NewService creates a new generation Service.
func NewService(store job.Store, artifacts storage.Storage, notifier *notify.Notifier, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:          store,
		artifacts:      artifacts,
		notifier:       notifier,
		logger:         logger,
		downloadClient: &http.Client{Timeout: downloadTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Simulated reports whether the service runs without a provider client.
func (s *Service) Simulated() bool {
	return s.client == nil
}

// Preflight runs the heuristic advisor on the prompt and stores the
// resulting advisory for later reference from a generation request.
func (s *Service) Preflight(ctx context.Context, prompt, aspectRatio, resolution string, quality job.Quality) (*job.Advisory, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrPromptRequired
	}

	a := preflight.Advise(prompt, aspectRatio, resolution, quality)
	advisory := &job.Advisory{
		ID:                   id.GenerateAdvisory(),
		Summary:              a.Summary,
		Frames:               a.Frames,
		Warnings:             a.Warnings,
		SuggestedPrompt:      a.SuggestedPrompt,
		EstimatedTimeSeconds: a.EstimatedTimeSeconds,
		Approved:             a.Approved,
		CreatedAt:            time.Now(),
	}

	if err := s.store.SaveAdvisory(ctx, advisory); err != nil {
		return nil, fmt.Errorf("save advisory: %w", err)
	}

	s.logger.Info("preflight advisory stored",
		slog.String("preflight_id", advisory.ID),
		slog.Bool("approved", advisory.Approved),
		slog.Int("warnings", len(advisory.Warnings)),
	)
	return advisory, nil
}

// CreateJob validates and admits a generation job. It returns the queued
// job immediately and never waits on the provider; callers are expected to
// hand the job ID to Process on a detached goroutine.
func (s *Service) CreateJob(ctx context.Context, input GenerateInput) (*job.Job, error) {
	if strings.TrimSpace(input.Prompt) == "" {
		return nil, ErrPromptRequired
	}

	if input.AspectRatio == "" {
		input.AspectRatio = "16:9"
	}
	if input.Resolution == "" {
		input.Resolution = "720p"
	}
	if input.Quality == "" {
		input.Quality = job.QualityStandard
	}

	j := job.New(job.Params{
		Prompt:        input.Prompt,
		AspectRatio:   input.AspectRatio,
		Resolution:    input.Resolution,
		GenerateAudio: input.GenerateAudio,
		Quality:       input.Quality,
	})
	j.PreflightID = input.PreflightID
	j.CallbackURL = input.CallbackURL

	if err := s.store.Save(ctx, j); err != nil {
		return nil, fmt.Errorf("save job: %w", err)
	}

	s.logger.Info("job admitted",
		slog.String("job_id", j.ID),
		slog.String("quality", string(j.Params.Quality)),
		slog.String("resolution", j.Params.Resolution),
	)
	return j, nil
}

// GetJob retrieves a job by ID.
func (s *Service) GetJob(ctx context.Context, jobID string) (*job.Job, error) {
	return s.store.FindByID(ctx, jobID)
}

// Process runs the background pipeline for an admitted job until it reaches
// a terminal state. The calling goroutine is the sole writer of the job
// record; callers must pass a context detached from the request.
func (s *Service) Process(ctx context.Context, jobID string) error {
	j, err := s.store.FindByID(ctx, jobID)
	if err != nil {
		return err
	}

	if err := j.Start(); err != nil {
		return fmt.Errorf("start job %s: %w", jobID, err)
	}
	j.UpdateProgress(progressStarted)
	s.save(ctx, j)

	if s.client == nil {
		return s.simulate(ctx, j)
	}

	j.UpdateProgress(progressCalling)
	s.save(ctx, j)

	body, err := s.client.GenerateVideo(ctx, veo.GenerateInput{
		Prompt:        j.Params.Prompt,
		AspectRatio:   j.Params.AspectRatio,
		Resolution:    j.Params.Resolution,
		GenerateAudio: j.Params.GenerateAudio,
		Quality:       string(j.Params.Quality),
	})
	if err != nil {
		return s.fail(ctx, j, err.Error())
	}

	j.UpdateProgress(progressResolving)
	s.save(ctx, j)

	resolved := veo.Resolve(body)
	switch resolved.Kind {
	case veo.KindRemoteURL:
		data, err := s.download(ctx, resolved.URL)
		if err != nil {
			return s.fail(ctx, j, fmt.Sprintf("download video: %v", err))
		}
		url, err := s.artifacts.Put(ctx, j.ID+".mp4", "video/mp4", bytes.NewReader(data))
		if err != nil {
			return s.fail(ctx, j, fmt.Sprintf("store video: %v", err))
		}
		return s.complete(ctx, j, job.Result{URL: url, ProviderVideoURL: resolved.URL})

	case veo.KindInlineVideo:
		data, err := base64.StdEncoding.DecodeString(resolved.VideoBase64)
		if err != nil {
			return s.fail(ctx, j, fmt.Sprintf("decode inline video: %v", err))
		}
		url, err := s.artifacts.Put(ctx, j.ID+".mp4", "video/mp4", bytes.NewReader(data))
		if err != nil {
			return s.fail(ctx, j, fmt.Sprintf("store video: %v", err))
		}
		return s.complete(ctx, j, job.Result{URL: url})

	default:
		return s.failUnrecognized(ctx, j, body)
	}
}

// simulate completes the job with a placeholder artifact. This is the
// deliberate no-credential demo mode, not an error path.
func (s *Service) simulate(ctx context.Context, j *job.Job) error {
	placeholder := fmt.Sprintf("simulated video for job %s\nprompt: %s\n", j.ID, j.Params.Prompt)
	url, err := s.artifacts.Put(ctx, j.ID+".txt", "text/plain", strings.NewReader(placeholder))
	if err != nil {
		return s.fail(ctx, j, fmt.Sprintf("store placeholder: %v", err))
	}

	s.logger.Info("simulation mode: provider call skipped",
		slog.String("job_id", j.ID),
	)
	return s.complete(ctx, j, job.Result{
		URL:  url,
		Info: "simulated result: no provider credential configured",
	})
}

// download fetches the generated asset from the provider's URL.
func (s *Service) download(ctx context.Context, videoURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, videoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.downloadClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// complete marks the job done and delivers the outcome.
func (s *Service) complete(ctx context.Context, j *job.Job, result job.Result) error {
	if err := j.Complete(result); err != nil {
		return fmt.Errorf("complete job %s: %w", j.ID, err)
	}
	j.UpdateProgress(progressDone)
	s.save(ctx, j)

	s.logger.Info("job done",
		slog.String("job_id", j.ID),
		slog.String("url", result.URL),
	)
	s.deliver(ctx, j)
	return nil
}

// fail marks the job failed with the given detail and delivers the outcome.
func (s *Service) fail(ctx context.Context, j *job.Job, detail string) error {
	if err := j.Fail(detail); err != nil {
		return fmt.Errorf("fail job %s: %w", j.ID, err)
	}
	j.UpdateProgress(progressDone)
	s.save(ctx, j)

	s.logger.Error("job failed",
		slog.String("job_id", j.ID),
		slog.String("error", detail),
	)
	s.deliver(ctx, j)
	return nil
}

// failUnrecognized persists the raw provider response as a debug artifact
// and marks the job failed. The provider call itself succeeded, but an
// unparseable reply is reported as a failure so callers never mistake it
// for a video.
func (s *Service) failUnrecognized(ctx context.Context, j *job.Job, body []byte) error {
	debugURL, err := s.artifacts.Put(ctx, j.ID+"-response.json", "application/json", bytes.NewReader(body))
	if err != nil {
		s.logger.Error("failed to store debug artifact",
			slog.String("job_id", j.ID),
			slog.String("error", err.Error()),
		)
		debugURL = ""
	}

	if err := j.FailWithDebug("provider response shape not recognized", debugURL); err != nil {
		return fmt.Errorf("fail job %s: %w", j.ID, err)
	}
	j.UpdateProgress(progressDone)
	s.save(ctx, j)

	s.logger.Error("job failed: unrecognized provider response",
		slog.String("job_id", j.ID),
		slog.String("debug_url", debugURL),
	)
	s.deliver(ctx, j)
	return nil
}

// deliver sends the terminal outcome to the callback target, if any.
// The per-request callback overrides the globally configured default.
func (s *Service) deliver(ctx context.Context, j *job.Job) {
	if s.notifier == nil {
		return
	}

	callbackURL := j.CallbackURL
	if callbackURL == "" {
		callbackURL = s.callbackURL
	}

	payload := notify.Payload{
		JobID:  j.ID,
		Status: j.GetStatus(),
		Error:  j.Error,
	}
	if j.Result != nil {
		r := *j.Result
		payload.Result = &r
	}
	s.notifier.Notify(ctx, callbackURL, payload)
}

// save persists the job's current state. The in-memory store cannot fail,
// but a future backend could; log rather than disturb the pipeline.
func (s *Service) save(ctx context.Context, j *job.Job) {
	if err := s.store.Save(ctx, j); err != nil {
		s.logger.Error("failed to save job",
			slog.String("job_id", j.ID),
			slog.String("error", err.Error()),
		)
	}
}

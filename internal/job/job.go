// Package job provides the Job aggregate for video generation requests.
// It includes the Job entity with one-directional state transitions, the
// preflight Advisory record, and the in-memory store shared by both.
package job

import (
	"errors"
	"sync"
	"time"

	"github.com/lromero/videogen-api/internal/job/id"
)

// Quality selects the provider model variant for the job.
type Quality string

const (
	// QualityFast uses the faster, cheaper model variant.
	QualityFast Quality = "fast"
	// QualityStandard uses the default model variant.
	QualityStandard Quality = "standard"
)

// Status represents the current state of a Job.
type Status string

const (
	// StatusQueued indicates the job has been admitted but not yet picked up.
	StatusQueued Status = "queued"
	// StatusProcessing indicates the background pipeline is running.
	StatusProcessing Status = "processing"
	// StatusDone indicates the job finished with a stored artifact.
	StatusDone Status = "done"
	// StatusFailed indicates the job reached a terminal error.
	StatusFailed Status = "failed"
)

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("invalid state transition")

// validTransitions defines which state transitions are allowed.
// Transitions are one-directional: a job never re-enters queued or processing.
var validTransitions = map[Status][]Status{
	StatusQueued:     {StatusProcessing},
	StatusProcessing: {StatusDone, StatusFailed},
	StatusDone:       {},
	StatusFailed:     {},
}

// canTransition checks if a transition from one status to another is valid.
func canTransition(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Result holds the outcome of a completed job.
// Exactly one of the URL, Info, or Debug shapes is populated: URL (with the
// optional provider URL) for a resolved video, Info for a simulated run, and
// Debug for the artifact kept when the provider response shape was not
// recognized.
type Result struct {
	// URL is the publicly reachable URL of the stored video.
	URL string `json:"url,omitempty"`
	// ProviderVideoURL is the original URL returned by the provider.
	ProviderVideoURL string `json:"providerVideoUrl,omitempty"`
	// Info marks a simulated result produced without a provider call.
	Info string `json:"info,omitempty"`
	// Debug is the URL of the raw provider response kept for inspection.
	Debug string `json:"debug,omitempty"`
}

// Params holds the immutable generation parameters captured at admission.
type Params struct {
	// Prompt is the text prompt for the video.
	Prompt string `json:"prompt"`
	// AspectRatio is the requested aspect ratio, e.g. "16:9".
	AspectRatio string `json:"aspectRatio"`
	// Resolution is the requested resolution, e.g. "720p".
	Resolution string `json:"resolution"`
	// GenerateAudio requests an audio track in the output.
	GenerateAudio bool `json:"generateAudio"`
	// Quality selects the model variant.
	Quality Quality `json:"quality"`
}

// Job represents a video generation job aggregate.
type Job struct {
	mu sync.RWMutex

	// ID is the unique identifier for this job. Never reused.
	ID string
	// Status is the current job state.
	Status Status
	// Params are the generation parameters captured at creation.
	Params Params
	// PreflightID optionally references a prior advisory record.
	PreflightID string
	// CallbackURL optionally overrides the globally configured callback target.
	CallbackURL string
	// Progress is a coarse completion hint (0-100), monotonically non-decreasing.
	Progress int
	// Result is populated when the job reaches a terminal state with an artifact.
	Result *Result
	// Error contains the error detail if the job failed.
	Error string
	// CreatedAt is when the job was admitted.
	CreatedAt time.Time
	// UpdatedAt is when the job was last updated.
	UpdatedAt time.Time
}

// New creates a new Job with a generated ID and initial queued status.
func New(params Params) *Job {
	now := time.Now()
	return &Job{
		ID:        id.Generate(),
		Status:    StatusQueued,
		Params:    params,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewWithID creates a new Job with the specified ID and initial queued status.
// Useful for testing or when the ID needs to be externally generated.
func NewWithID(jobID string, params Params) *Job {
	now := time.Now()
	return &Job{
		ID:        jobID,
		Status:    StatusQueued,
		Params:    params,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TransitionTo attempts to change the job status to the specified state.
// Returns ErrInvalidTransition if the transition is not allowed.
func (j *Job) TransitionTo(status Status) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !canTransition(j.Status, status) {
		return ErrInvalidTransition
	}

	j.Status = status
	j.UpdatedAt = time.Now()
	return nil
}

// Start transitions the job from queued to processing.
func (j *Job) Start() error {
	return j.TransitionTo(StatusProcessing)
}

// Complete transitions the job to done with the given result.
// Returns ErrInvalidTransition if the transition is not allowed.
func (j *Job) Complete(result Result) error {
	j.mu.Lock()
	j.Result = &result
	j.mu.Unlock()
	return j.TransitionTo(StatusDone)
}

// Fail transitions the job to failed with an error message.
// Returns ErrInvalidTransition if the transition is not allowed.
func (j *Job) Fail(errMsg string) error {
	j.mu.Lock()
	j.Error = errMsg
	j.mu.Unlock()
	return j.TransitionTo(StatusFailed)
}

// FailWithDebug transitions the job to failed while keeping a pointer to the
// stored raw provider response. Used when the response shape was not
// recognized: the HTTP call succeeded, but the job is still reported failed
// so callers never mistake an unparseable reply for a video.
func (j *Job) FailWithDebug(errMsg, debugURL string) error {
	j.mu.Lock()
	j.Error = errMsg
	j.Result = &Result{Debug: debugURL}
	j.mu.Unlock()
	return j.TransitionTo(StatusFailed)
}

// GetStatus returns the current job status (thread-safe).
func (j *Job) GetStatus() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

// UpdateProgress raises the progress hint. Values below the current progress
// or outside 0-100 are ignored so progress never decreases.
func (j *Job) UpdateProgress(progress int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if progress > 100 {
		progress = 100
	}
	if progress <= j.Progress {
		return
	}
	j.Progress = progress
	j.UpdatedAt = time.Now()
}

// IsTerminal returns true if the job is in a terminal state.
func (j *Job) IsTerminal() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status == StatusDone || j.Status == StatusFailed
}

// Clone creates a deep copy of the job for safe reads.
func (j *Job) Clone() *Job {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var result *Result
	if j.Result != nil {
		r := *j.Result
		result = &r
	}

	return &Job{
		ID:          j.ID,
		Status:      j.Status,
		Params:      j.Params,
		PreflightID: j.PreflightID,
		CallbackURL: j.CallbackURL,
		Progress:    j.Progress,
		Result:      result,
		Error:       j.Error,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

// Advisory is the stored result of a preflight check. It shares the store
// with jobs for later reference via Job.PreflightID but never transitions
// state.
type Advisory struct {
	// ID is the unique identifier for this advisory.
	ID string `json:"preflightId"`
	// Summary is the prompt truncated for display.
	Summary string `json:"summary"`
	// Frames are short excerpts suggesting a storyboard.
	Frames []string `json:"frames"`
	// Warnings lists matched sensitive terms, one message per match.
	Warnings []string `json:"warnings"`
	// SuggestedPrompt is the normalized prompt.
	SuggestedPrompt string `json:"suggested_prompt"`
	// EstimatedTimeSeconds is a rough generation time estimate.
	EstimatedTimeSeconds int `json:"estimated_time_seconds"`
	// Approved is true when no warnings were raised.
	Approved bool `json:"approved"`
	// CreatedAt is when the advisory was produced.
	CreatedAt time.Time `json:"-"`
}

// Package server provides the HTTP surface for the video generation API.
// It includes handlers, middleware, routes, and DTOs separated from domain
// types.
package server

import (
	"time"

	"github.com/lromero/videogen-api/internal/job"
)

// PreflightRequest is the HTTP request body for a preflight check.
type PreflightRequest struct {
	// Prompt is the text prompt to check.
	Prompt string `json:"prompt" validate:"required"`
	// AspectRatio is the requested aspect ratio, e.g. "16:9".
	AspectRatio string `json:"aspectRatio"`
	// Resolution is the requested resolution, e.g. "720p".
	Resolution string `json:"resolution"`
	// Quality selects the model variant.
	Quality string `json:"quality" validate:"omitempty,oneof=fast standard"`
}

// PreflightResponse is the HTTP response for a preflight check.
type PreflightResponse struct {
	PreflightID          string   `json:"preflightId"`
	Summary              string   `json:"summary"`
	Frames               []string `json:"frames"`
	Warnings             []string `json:"warnings"`
	SuggestedPrompt      string   `json:"suggested_prompt"`
	EstimatedTimeSeconds int      `json:"estimated_time_seconds"`
	Approved             bool     `json:"approved"`
}

// GenerateRequest is the HTTP request body for admitting a generation job.
type GenerateRequest struct {
	// Prompt is the text prompt for the video.
	Prompt string `json:"prompt" validate:"required"`
	// AspectRatio is the requested aspect ratio.
	AspectRatio string `json:"aspectRatio"`
	// Resolution is the requested resolution.
	Resolution string `json:"resolution"`
	// GenerateAudio requests an audio track in the output.
	GenerateAudio bool `json:"generateAudio"`
	// Quality selects the model variant.
	Quality string `json:"quality" validate:"omitempty,oneof=fast standard"`
	// PreflightID optionally references a prior advisory.
	PreflightID string `json:"preflightId"`
	// CallbackURL optionally overrides the configured callback target.
	CallbackURL string `json:"callbackUrl" validate:"omitempty,url"`
}

// GenerateResponse is the HTTP response after admitting a job.
type GenerateResponse struct {
	// JobID is the unique identifier for the admitted job.
	JobID string `json:"jobId"`
	// Status is the initial job status, always "queued".
	Status string `json:"status"`
}

// JobResponse is the full job record returned by the status endpoint.
type JobResponse struct {
	JobID         string      `json:"jobId"`
	Status        string      `json:"status"`
	Progress      int         `json:"progress"`
	Prompt        string      `json:"prompt"`
	AspectRatio   string      `json:"aspectRatio"`
	Resolution    string      `json:"resolution"`
	GenerateAudio bool        `json:"generateAudio"`
	Quality       string      `json:"quality"`
	PreflightID   string      `json:"preflightId,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	Result        *job.Result `json:"result,omitempty"`
	Error         string      `json:"error,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// OK is true when the service is up.
	OK bool `json:"ok"`
	// Now is the server's current time.
	Now time.Time `json:"now"`
	// Env describes the active environment.
	Env HealthEnv `json:"env"`
}

// HealthEnv describes the environment reported by the health endpoint.
type HealthEnv struct {
	// StorageProvider is the active storage backend.
	StorageProvider string `json:"storageProvider"`
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/lromero/videogen-api/internal/generation"
	"github.com/lromero/videogen-api/internal/job"
	"github.com/lromero/videogen-api/internal/storage"
)

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	service            *generation.Service
	files              *storage.LocalStorage // nil when the S3 backend is active
	storageProvider    string
	validator          *validator.Validate
	logger             *slog.Logger
	enableAsyncProcess bool
}

// HandlerOption is a function that configures a Handlers instance.
type HandlerOption func(*Handlers)

// WithAsyncProcessing enables or disables background processing.
// When disabled, Generate only admits the job and returns without starting
// the pipeline; tests drive Process directly.
func WithAsyncProcessing(enabled bool) HandlerOption {
	return func(h *Handlers) {
		h.enableAsyncProcess = enabled
	}
}

// WithFileStore sets the local storage used by the /files route.
// Leaving it unset (S3 mode) makes the route answer 404.
func WithFileStore(files *storage.LocalStorage) HandlerOption {
	return func(h *Handlers) {
		h.files = files
	}
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *generation.Service, storageProvider string, logger *slog.Logger, opts ...HandlerOption) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handlers{
		service:            service,
		storageProvider:    storageProvider,
		validator:          validator.New(),
		logger:             logger,
		enableAsyncProcess: true, // Default to enabled
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Health handles GET /api/health requests. No auth.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		OK:  true,
		Now: time.Now().UTC(),
		Env: HealthEnv{StorageProvider: h.storageProvider},
	})
}

// Preflight handles POST /api/preflight requests.
func (h *Handlers) Preflight(w http.ResponseWriter, r *http.Request) {
	var req PreflightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	advisory, err := h.service.Preflight(r.Context(), req.Prompt, req.AspectRatio, req.Resolution, job.Quality(req.Quality))
	if err != nil {
		if errors.Is(err, generation.ErrPromptRequired) {
			writeError(w, http.StatusBadRequest, "prompt is required", "MISSING_PROMPT")
			return
		}
		h.logger.Error("preflight failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "preflight failed", "PREFLIGHT_FAILED")
		return
	}

	writeJSON(w, http.StatusOK, PreflightResponse{
		PreflightID:          advisory.ID,
		Summary:              advisory.Summary,
		Frames:               advisory.Frames,
		Warnings:             advisory.Warnings,
		SuggestedPrompt:      advisory.SuggestedPrompt,
		EstimatedTimeSeconds: advisory.EstimatedTimeSeconds,
		Approved:             advisory.Approved,
	})
}

// Generate handles POST /api/generate requests.
// Admission is synchronous; the pipeline runs on a detached goroutine so
// the response never waits on the provider.
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	created, err := h.service.CreateJob(r.Context(), generation.GenerateInput{
		Prompt:        req.Prompt,
		AspectRatio:   req.AspectRatio,
		Resolution:    req.Resolution,
		GenerateAudio: req.GenerateAudio,
		Quality:       job.Quality(req.Quality),
		PreflightID:   req.PreflightID,
		CallbackURL:   req.CallbackURL,
	})
	if err != nil {
		if errors.Is(err, generation.ErrPromptRequired) {
			writeError(w, http.StatusBadRequest, "prompt is required", "MISSING_PROMPT")
			return
		}
		h.logger.Error("failed to admit job",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to admit job", "JOB_CREATION_FAILED")
		return
	}

	// Use context.WithoutCancel so the pipeline survives the request ending.
	if h.enableAsyncProcess {
		go func(ctx context.Context, jobID string) {
			if processErr := h.service.Process(ctx, jobID); processErr != nil {
				h.logger.Error("background processing failed",
					slog.String("job_id", jobID),
					slog.String("error", processErr.Error()),
				)
			}
		}(context.WithoutCancel(r.Context()), created.ID)
	}

	writeJSON(w, http.StatusAccepted, GenerateResponse{
		JobID:  created.ID,
		Status: string(created.Status),
	})
}

// JobStatus handles GET /api/job-status/{id} requests.
func (h *Handlers) JobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "job ID is required", "MISSING_JOB_ID")
		return
	}

	found, err := h.service.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "job not found", "JOB_NOT_FOUND")
			return
		}
		h.logger.Error("failed to get job",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get job", "JOB_FETCH_FAILED")
		return
	}

	writeJSON(w, http.StatusOK, JobResponse{
		JobID:         found.ID,
		Status:        string(found.Status),
		Progress:      found.Progress,
		Prompt:        found.Params.Prompt,
		AspectRatio:   found.Params.AspectRatio,
		Resolution:    found.Params.Resolution,
		GenerateAudio: found.Params.GenerateAudio,
		Quality:       string(found.Params.Quality),
		PreflightID:   found.PreflightID,
		CreatedAt:     found.CreatedAt,
		Result:        found.Result,
		Error:         found.Error,
	})
}

// File handles GET /files/{filename} requests.
// Only the local backend has a read path through this service; in S3 mode
// retrieval goes through the artifact's public URL and this route answers
// 404.
func (h *Handlers) File(w http.ResponseWriter, r *http.Request) {
	if h.files == nil {
		writeError(w, http.StatusNotFound, "file serving requires local storage", "FILES_NOT_AVAILABLE")
		return
	}

	name := r.PathValue("filename")
	data, err := h.files.Get(r.Context(), name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidName) {
			writeError(w, http.StatusNotFound, "file not found", "FILE_NOT_FOUND")
			return
		}
		h.logger.Error("failed to read file",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to read file", "FILE_READ_FAILED")
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write file response",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

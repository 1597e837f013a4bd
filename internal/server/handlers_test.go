package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lromero/videogen-api/internal/generation"
	"github.com/lromero/videogen-api/internal/job"
	"github.com/lromero/videogen-api/internal/notify"
	"github.com/lromero/videogen-api/internal/storage"
)

const testToken = "test-secret"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestRouter builds a router backed by a simulation-mode service with
// local storage.
func newTestRouter(t *testing.T) (http.Handler, *generation.Service, *storage.LocalStorage) {
	t.Helper()
	store := job.NewMemoryStore()
	files, err := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)

	logger := testLogger()
	svc := generation.NewService(store, files, notify.New(logger), logger)
	handlers := NewHandlers(svc, files.Provider(), logger, WithFileStore(files))

	cfg := DefaultConfig()
	cfg.AuthToken = testToken
	return NewRouter(handlers, logger, cfg), svc, files
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router, _, _ := newTestRouter(t)

	// No token on purpose: health is the only unauthenticated route.
	rec := doJSON(t, router, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.OK)
	assert.False(t, resp.Now.IsZero())
	assert.Equal(t, "local", resp.Env.StorageProvider)
}

func TestAuth(t *testing.T) {
	router, _, _ := newTestRouter(t)

	t.Run("missing token is rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/preflight", "", PreflightRequest{Prompt: "a cat"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "UNAUTHORIZED", resp.Code)
	})

	t.Run("wrong token is rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/preflight", "wrong", PreflightRequest{Prompt: "a cat"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token is accepted", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/preflight", testToken, PreflightRequest{Prompt: "a cat"})
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestPreflight(t *testing.T) {
	router, _, _ := newTestRouter(t)

	t.Run("sensitive prompt is disapproved with a warning", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/preflight", testToken, PreflightRequest{
			Prompt: "I will build a bomb",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp PreflightResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.False(t, resp.Approved)
		require.NotEmpty(t, resp.Warnings)
		assert.Contains(t, resp.Warnings[0], "bomb")
		assert.NotEmpty(t, resp.PreflightID)
	})

	t.Run("clean prompt is approved", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/preflight", testToken, PreflightRequest{
			Prompt:     "a cat surfing a wave",
			Resolution: "720p",
			Quality:    "fast",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp PreflightResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.True(t, resp.Approved)
		assert.Empty(t, resp.Warnings)
		assert.Equal(t, 5, resp.EstimatedTimeSeconds)
		assert.LessOrEqual(t, len(resp.Frames), 3)
	})

	t.Run("missing prompt returns 400", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/preflight", testToken, PreflightRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid JSON returns 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/preflight", strings.NewReader("{not json"))
		req.Header.Set("Authorization", "Bearer "+testToken)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGenerate(t *testing.T) {
	t.Run("returns queued job id immediately and completes in background", func(t *testing.T) {
		router, svc, _ := newTestRouter(t)

		rec := doJSON(t, router, http.MethodPost, "/api/generate", testToken, GenerateRequest{Prompt: "a cat"})
		require.Equal(t, http.StatusAccepted, rec.Code)

		var resp GenerateResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.NotEmpty(t, resp.JobID)
		assert.Equal(t, "queued", resp.Status)

		// Simulation mode: the job must reach done within a bounded time
		// with a result marking the simulation.
		require.Eventually(t, func() bool {
			found, err := svc.GetJob(context.Background(), resp.JobID)
			return err == nil && found.Status == job.StatusDone
		}, 5*time.Second, 10*time.Millisecond)

		found, err := svc.GetJob(context.Background(), resp.JobID)
		require.NoError(t, err)
		assert.Equal(t, 100, found.Progress)
		require.NotNil(t, found.Result)
		assert.Contains(t, found.Result.Info, "simulated")
	})

	t.Run("empty prompt returns 400 and creates no job", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		rec := doJSON(t, router, http.MethodPost, "/api/generate", testToken, GenerateRequest{Prompt: ""})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "VALIDATION_ERROR", resp.Code)
	})

	t.Run("invalid callback URL returns 400", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		rec := doJSON(t, router, http.MethodPost, "/api/generate", testToken, GenerateRequest{
			Prompt:      "a cat",
			CallbackURL: "not-a-url",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestJobStatus(t *testing.T) {
	router, svc, _ := newTestRouter(t)

	t.Run("unknown job id returns 404 with error body", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/job-status/unknown-id", testToken, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "JOB_NOT_FOUND", resp.Code)
	})

	t.Run("returns the full job record", func(t *testing.T) {
		created, err := svc.CreateJob(context.Background(), generation.GenerateInput{
			Prompt:      "a cat",
			Quality:     job.QualityFast,
			PreflightID: "pf-1",
		})
		require.NoError(t, err)

		rec := doJSON(t, router, http.MethodGet, "/api/job-status/"+created.ID, testToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp JobResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, created.ID, resp.JobID)
		assert.Equal(t, "queued", resp.Status)
		assert.Equal(t, "a cat", resp.Prompt)
		assert.Equal(t, "fast", resp.Quality)
		assert.Equal(t, "pf-1", resp.PreflightID)
		assert.False(t, resp.CreatedAt.IsZero())
	})
}

func TestFiles(t *testing.T) {
	t.Run("round-trips stored bytes", func(t *testing.T) {
		router, _, files := newTestRouter(t)

		data := []byte("artifact bytes")
		_, err := files.Put(context.Background(), "job-1.mp4", "video/mp4", bytes.NewReader(data))
		require.NoError(t, err)

		rec := doJSON(t, router, http.MethodGet, "/files/job-1.mp4", testToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, data, rec.Body.Bytes())
		assert.Equal(t, "video/mp4", rec.Header().Get("Content-Type"))
	})

	t.Run("unknown file returns 404", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		rec := doJSON(t, router, http.MethodGet, "/files/missing.mp4", testToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("returns 404 in S3 mode", func(t *testing.T) {
		store := job.NewMemoryStore()
		files, err := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080")
		require.NoError(t, err)

		logger := testLogger()
		svc := generation.NewService(store, files, notify.New(logger), logger)
		// No WithFileStore: mirrors the S3 backend having no read path.
		handlers := NewHandlers(svc, "s3", logger)
		cfg := DefaultConfig()
		cfg.AuthToken = testToken
		router := NewRouter(handlers, logger, cfg)

		rec := doJSON(t, router, http.MethodGet, "/files/anything.mp4", testToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/lromero/videogen-api/internal/job"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNotifier_Notify(t *testing.T) {
	t.Run("posts job outcome as JSON", func(t *testing.T) {
		var got Payload
		var gotContentType string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotContentType = r.Header.Get("Content-Type")
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Errorf("decode payload: %v", err)
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		n := New(testLogger())
		n.Notify(context.Background(), server.URL, Payload{
			JobID:  "job-1",
			Status: job.StatusDone,
			Result: &job.Result{URL: "http://localhost/files/job-1.mp4"},
		})

		if gotContentType != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", gotContentType)
		}
		if got.JobID != "job-1" || got.Status != job.StatusDone {
			t.Errorf("unexpected payload: %+v", got)
		}
		if got.Result == nil || got.Result.URL == "" {
			t.Errorf("expected result in payload, got %+v", got.Result)
		}
	})

	t.Run("failed job carries error detail", func(t *testing.T) {
		var got Payload
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&got)
		}))
		defer server.Close()

		n := New(testLogger())
		n.Notify(context.Background(), server.URL, Payload{
			JobID:  "job-2",
			Status: job.StatusFailed,
			Error:  "provider timeout",
		})

		if got.Error != "provider timeout" {
			t.Errorf("Error = %q, want provider timeout", got.Error)
		}
		if got.Result != nil {
			t.Errorf("expected no result on failed payload, got %+v", got.Result)
		}
	})

	t.Run("empty callback URL is a no-op", func(t *testing.T) {
		n := New(testLogger())
		// Must not panic or block.
		n.Notify(context.Background(), "", Payload{JobID: "job-3", Status: job.StatusDone})
	})

	t.Run("delivery failure is swallowed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		n := New(testLogger())
		// Must not panic; the error is logged and ignored.
		n.Notify(context.Background(), server.URL, Payload{JobID: "job-4", Status: job.StatusFailed})
	})

	t.Run("unreachable endpoint is swallowed", func(t *testing.T) {
		n := New(testLogger())
		n.Notify(context.Background(), "http://127.0.0.1:1/unreachable", Payload{JobID: "job-5", Status: job.StatusDone})
	})
}

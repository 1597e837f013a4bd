package server

import (
	"log/slog"
	"net/http"
)

// Config contains server configuration options.
type Config struct {
	// AllowedOrigins is the list of allowed CORS origins.
	AllowedOrigins []string
	// AuthToken is the shared secret for bearer auth. Empty disables auth.
	AuthToken string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		AllowedOrigins: []string{"*"},
	}
}

// NewRouter creates a new HTTP router with all routes configured.
// It uses Go 1.22+ ServeMux with method-based routing. Every route except
// the health check sits behind the auth middleware.
func NewRouter(h *Handlers, logger *slog.Logger, cfg Config) http.Handler {
	mux := http.NewServeMux()
	auth := AuthMiddleware(cfg.AuthToken)

	mux.HandleFunc("GET /api/health", h.Health)
	mux.Handle("POST /api/preflight", auth(http.HandlerFunc(h.Preflight)))
	mux.Handle("POST /api/generate", auth(http.HandlerFunc(h.Generate)))
	mux.Handle("GET /api/job-status/{id}", auth(http.HandlerFunc(h.JobStatus)))
	mux.Handle("GET /files/{filename}", auth(http.HandlerFunc(h.File)))

	// Apply middleware chain
	chain := ChainMiddleware(
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
		CORSMiddleware(cfg.AllowedOrigins),
	)

	return chain(mux)
}

// Package bootstrap provides dependency initialization for the video
// generation API.
package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/lromero/videogen-api/internal/config"
	"github.com/lromero/videogen-api/internal/generation"
	"github.com/lromero/videogen-api/internal/job"
	"github.com/lromero/videogen-api/internal/notify"
	"github.com/lromero/videogen-api/internal/storage"
	"github.com/lromero/videogen-api/internal/veo"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	GenerationService *generation.Service
	// FileStore is the local backend for the /files route; nil in S3 mode.
	FileStore *storage.LocalStorage
	// StorageProvider is the active backend identifier.
	StorageProvider string
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	store, fileStore, err := initStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	serviceOpts := []generation.Option{
		generation.WithDefaultCallbackURL(cfg.CallbackURL),
	}

	if cfg.SimulationEnabled() {
		logger.Warn("no provider credential configured, running in simulation mode")
	} else {
		clientOpts := []veo.ClientOption{veo.WithAPIKey(cfg.VeoAPIKey)}
		if cfg.VeoBaseURL != "" {
			clientOpts = append(clientOpts, veo.WithBaseURL(cfg.VeoBaseURL))
		}
		client, err := veo.NewClient(clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("create Veo client: %w", err)
		}
		serviceOpts = append(serviceOpts, generation.WithClient(client))
	}

	if cfg.AuthToken == "" {
		logger.Warn("no auth token configured, API endpoints are unprotected")
	}

	repo := job.NewMemoryStore()
	notifier := notify.New(logger)
	svc := generation.NewService(repo, store, notifier, logger, serviceOpts...)

	return &Dependencies{
		GenerationService: svc,
		FileStore:         fileStore,
		StorageProvider:   store.Provider(),
	}, nil
}

// initStorage creates the appropriate storage backend based on configuration.
// In S3 mode the second return value is nil: there is no local read path.
func initStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, *storage.LocalStorage, error) {
	if cfg.S3Enabled() {
		if cfg.S3Bucket == "" {
			// Deliberate: a missing bucket warns at startup and fails the
			// first upload, rather than preventing the service from coming up.
			logger.Warn("S3 storage selected but S3_BUCKET is not set, uploads will fail")
		}
		s3Store, err := storage.NewS3Storage(storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 storage configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.LocalStorageDir, cfg.PublicBaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local storage configured",
		slog.String("root_dir", cfg.LocalStorageDir),
		slog.String("public_base_url", cfg.PublicBaseURL),
	)
	return localStore, localStore, nil
}

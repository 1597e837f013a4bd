// Package storage provides artifact persistence for generated videos.
// It defines the Storage port and implementations for local disk and S3;
// both return a URL the stored artifact can be retrieved from.
package storage

import (
	"context"
	"io"
)

// Storage defines the interface for persisting generated artifacts.
// Implementations write bytes under a name and return a retrievable URL.
type Storage interface {
	// Put stores data under the given name and returns its public URL.
	Put(ctx context.Context, name, contentType string, data io.Reader) (url string, err error)

	// Provider returns the backend identifier ("local" or "s3").
	Provider() string
}

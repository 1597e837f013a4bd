// Package id provides unique identifier generation for jobs and
// preflight advisories.
package id

import (
	"github.com/google/uuid"
)

// Generate creates a new unique job ID.
// Format: job-<uuid>
// Example: job-9f3b2c1a-7e4d-4c2b-9a1e-5d6f7a8b9c0d
func Generate() string {
	return "job-" + uuid.NewString()
}

// GenerateAdvisory creates a new unique preflight advisory ID.
// Format: pf-<uuid>
func GenerateAdvisory() string {
	return "pf-" + uuid.NewString()
}

package job

import (
	"context"
	"errors"
	"sync"
)

// ErrJobNotFound is returned when a job cannot be found by ID.
var ErrJobNotFound = errors.New("job not found")

// ErrAdvisoryNotFound is returned when a preflight advisory cannot be found by ID.
var ErrAdvisoryNotFound = errors.New("preflight advisory not found")

// Store defines the interface for job and advisory persistence.
// It acts as a port so the orchestrator never touches the map directly.
type Store interface {
	// Save persists a job. If the job already exists, it is updated.
	Save(ctx context.Context, job *Job) error

	// FindByID retrieves a job by its unique identifier.
	// Returns ErrJobNotFound if the job does not exist.
	FindByID(ctx context.Context, id string) (*Job, error)

	// SaveAdvisory persists a preflight advisory record.
	SaveAdvisory(ctx context.Context, advisory *Advisory) error

	// FindAdvisory retrieves an advisory by its unique identifier.
	// Returns ErrAdvisoryNotFound if the advisory does not exist.
	FindAdvisory(ctx context.Context, id string) (*Advisory, error)
}

// Compile-time check that MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory implementation of Store.
// Records live for the process lifetime; there is no deletion, expiry, or
// capacity bound. Each job record is only ever mutated by the goroutine that
// owns it, and reads hand out clones so polls see a consistent snapshot.
type MemoryStore struct {
	mu         sync.RWMutex
	jobs       map[string]*Job
	advisories map[string]*Advisory
}

// NewMemoryStore creates a new in-memory job store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:       make(map[string]*Job),
		advisories: make(map[string]*Advisory),
	}
}

// Save persists a job to the in-memory storage.
// Creates a clone to avoid external mutations.
func (s *MemoryStore) Save(_ context.Context, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job.Clone()
	return nil
}

// FindByID retrieves a job by its ID.
// Returns a clone to prevent external mutations.
func (s *MemoryStore) FindByID(_ context.Context, id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job.Clone(), nil
}

// SaveAdvisory persists a preflight advisory record.
func (s *MemoryStore) SaveAdvisory(_ context.Context, advisory *Advisory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := *advisory
	s.advisories[advisory.ID] = &a
	return nil
}

// FindAdvisory retrieves an advisory by its ID.
func (s *MemoryStore) FindAdvisory(_ context.Context, id string) (*Advisory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	advisory, ok := s.advisories[id]
	if !ok {
		return nil, ErrAdvisoryNotFound
	}
	a := *advisory
	return &a, nil
}

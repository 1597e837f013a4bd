package job

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore_SaveAndFind(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	j := New(testParams())
	if err := store.Save(ctx, j); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	found, err := store.FindByID(ctx, j.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found.ID != j.ID {
		t.Errorf("expected ID %s, got %s", j.ID, found.ID)
	}
	if found.Params.Prompt != j.Params.Prompt {
		t.Errorf("expected prompt %q, got %q", j.Params.Prompt, found.Params.Prompt)
	}
}

func TestMemoryStore_FindByID_NotFound(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.FindByID(context.Background(), "job-missing")
	if !errors.Is(err, ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

func TestMemoryStore_SaveUpdatesExisting(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	j := New(testParams())
	if err := store.Save(ctx, j); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := j.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	j.UpdateProgress(5)
	if err := store.Save(ctx, j); err != nil {
		t.Fatalf("Save() update error = %v", err)
	}

	found, err := store.FindByID(ctx, j.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found.Status != StatusProcessing {
		t.Errorf("expected status %s, got %s", StatusProcessing, found.Status)
	}
	if found.Progress != 5 {
		t.Errorf("expected progress 5, got %d", found.Progress)
	}
}

func TestMemoryStore_FindReturnsClone(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	j := New(testParams())
	if err := store.Save(ctx, j); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	found, err := store.FindByID(ctx, j.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	found.Error = "mutated"

	again, err := store.FindByID(ctx, j.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if again.Error != "" {
		t.Error("store returned a shared reference instead of a clone")
	}
}

func TestMemoryStore_Advisories(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	advisory := &Advisory{
		ID:                   "pf-123",
		Summary:              "a cat",
		Frames:               []string{"a cat"},
		SuggestedPrompt:      "a cat",
		EstimatedTimeSeconds: 5,
		Approved:             true,
	}
	if err := store.SaveAdvisory(ctx, advisory); err != nil {
		t.Fatalf("SaveAdvisory() error = %v", err)
	}

	found, err := store.FindAdvisory(ctx, "pf-123")
	if err != nil {
		t.Fatalf("FindAdvisory() error = %v", err)
	}
	if found.Summary != "a cat" || !found.Approved {
		t.Errorf("unexpected advisory: %+v", found)
	}

	_, err = store.FindAdvisory(ctx, "pf-missing")
	if !errors.Is(err, ErrAdvisoryNotFound) {
		t.Errorf("expected ErrAdvisoryNotFound, got %v", err)
	}
}

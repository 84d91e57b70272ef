package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benvon/profile-sync/internal/models"
)

func TestMemoryProfileStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryProfileStore()
	created := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	if _, err := store.GetByID(ctx, "u1"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("Expected ErrProfileNotFound, got %v", err)
	}

	create := models.WritePayload{
		Kind:      models.WriteCreate,
		UserID:    "u1",
		Fields:    models.ProfileFields{Email: models.Some("u1@x.com"), FullName: models.Some("Jane Doe")},
		CreatedAt: created,
		UpdatedAt: created,
	}
	if _, err := store.Create(ctx, create); err != nil {
		t.Fatalf("Unexpected create error: %v", err)
	}
	if _, err := store.Create(ctx, create); !errors.Is(err, ErrProfileExists) {
		t.Errorf("Expected ErrProfileExists, got %v", err)
	}

	got, err := store.Update(ctx, models.WritePayload{
		Kind:      models.WriteUpdate,
		UserID:    "u1",
		Fields:    models.ProfileFields{ProfilePicture: models.Some("https://x/pic.png")},
		UpdatedAt: updated,
	})
	if err != nil {
		t.Fatalf("Unexpected update error: %v", err)
	}
	if got.FullName == nil || *got.FullName != "Jane Doe" {
		t.Errorf("Expected absent field to be kept, got %v", got.FullName)
	}
	if got.ProfilePicture == nil || *got.ProfilePicture != "https://x/pic.png" {
		t.Errorf("Expected profile picture to be written, got %v", got.ProfilePicture)
	}
	if !got.CreatedAt.Equal(created) || !got.UpdatedAt.Equal(updated) {
		t.Errorf("Expected created %v updated %v, got %v %v", created, updated, got.CreatedAt, got.UpdatedAt)
	}

	// Callers get copies
	got.Email = "changed@x.com"
	stored, err := store.GetByID(ctx, "u1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if stored.Email != "u1@x.com" {
		t.Errorf("Expected stored email to be unchanged, got %s", stored.Email)
	}
}

func TestMemoryProfileStore_WritesThroughPointersDoNotLeak(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryProfileStore()
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	created, err := store.Create(ctx, models.WritePayload{
		Kind:      models.WriteCreate,
		UserID:    "u1",
		Fields:    models.ProfileFields{Email: models.Some("u1@x.com"), FullName: models.Some("Jane Doe"), AuthProvider: models.Some("google")},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("Unexpected create error: %v", err)
	}
	*created.FullName = "From Create"

	read, err := store.GetByID(ctx, "u1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	*read.FullName = "From Read"
	*read.AuthProvider = "myspace"

	updated, err := store.Update(ctx, models.WritePayload{
		Kind:      models.WriteUpdate,
		UserID:    "u1",
		Fields:    models.ProfileFields{FirstName: models.Some("Jane")},
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("Unexpected update error: %v", err)
	}
	*updated.FullName = "From Update"

	stored, err := store.GetByID(ctx, "u1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if *stored.FullName != "Jane Doe" {
		t.Errorf("Expected stored full name Jane Doe, got %q", *stored.FullName)
	}
	if *stored.AuthProvider != "google" {
		t.Errorf("Expected stored auth provider google, got %q", *stored.AuthProvider)
	}
}

func TestMemoryProfileStore_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryProfileStore()

	if _, err := store.Update(ctx, models.WritePayload{Kind: models.WriteUpdate, UserID: "ghost"}); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("Expected ErrProfileNotFound, got %v", err)
	}
	if _, err := store.Create(ctx, models.WritePayload{Kind: models.WriteUpdate, UserID: "u1"}); err == nil {
		t.Error("Expected error for update payload passed to Create")
	}
	if err := store.Ping(ctx); err != nil {
		t.Errorf("Expected ping to succeed, got %v", err)
	}
}

package database

import (
	"context"

	"github.com/benvon/profile-sync/internal/models"
)

// ProfileStore defines the persistence operations the profile service relies on.
// Update must leave columns absent from the payload untouched.
type ProfileStore interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	Create(ctx context.Context, payload models.WritePayload) (*models.Profile, error)
	Update(ctx context.Context, payload models.WritePayload) (*models.Profile, error)
}

// Ensure concrete types implement the interfaces
var (
	_ ProfileStore = (*ProfileRepository)(nil)
	_ ProfileStore = (*MemoryProfileStore)(nil)
)

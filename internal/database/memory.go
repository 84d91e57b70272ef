package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/benvon/profile-sync/internal/models"
)

// MemoryProfileStore is an in-process profile store used for local
// development (DATABASE_URL=memory://) and tests.
type MemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]models.Profile
}

// NewMemoryProfileStore creates an empty in-memory store
func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: make(map[string]models.Profile)}
}

// GetByID retrieves a copy of the stored profile
func (s *MemoryProfileStore) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return cloneProfile(p), nil
}

// Create inserts a new profile
func (s *MemoryProfileStore) Create(ctx context.Context, payload models.WritePayload) (*models.Profile, error) {
	if payload.Kind != models.WriteCreate {
		return nil, fmt.Errorf("failed to create profile: payload kind is %s", payload.Kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[payload.UserID]; ok {
		return nil, ErrProfileExists
	}
	p := payload.Apply(nil)
	s.profiles[p.ID] = p
	return cloneProfile(p), nil
}

// Update applies a partial write to an existing profile
func (s *MemoryProfileStore) Update(ctx context.Context, payload models.WritePayload) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.profiles[payload.UserID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	p := payload.Apply(&current)
	s.profiles[p.ID] = p
	return cloneProfile(p), nil
}

// cloneProfile copies p so callers never share string pointers with the map
func cloneProfile(p models.Profile) *models.Profile {
	clone := func(v *string) *string {
		if v == nil {
			return nil
		}
		c := *v
		return &c
	}
	p.FullName = clone(p.FullName)
	p.FirstName = clone(p.FirstName)
	p.LastName = clone(p.LastName)
	p.ProfilePicture = clone(p.ProfilePicture)
	p.ProviderID = clone(p.ProviderID)
	p.AuthProvider = clone(p.AuthProvider)
	return &p
}

// Ping always succeeds
func (s *MemoryProfileStore) Ping(ctx context.Context) error {
	return nil
}

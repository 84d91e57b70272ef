package oidc

import (
	"testing"
	"time"

	"github.com/benvon/profile-sync/internal/models"
)

func TestUser_IdentityEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		user User
		want models.IdentityEvent
	}{
		{
			name: "magic link user with no metadata",
			user: User{ID: "u1", Email: "u1@x.com"},
			want: models.IdentityEvent{UserID: "u1", Email: "u1@x.com", AuthProvider: "email"},
		},
		{
			name: "google user prefers name and avatar_url",
			user: User{
				ID:    "u2",
				Email: "u2@x.com",
				UserMetadata: map[string]any{
					"name":        "Jane Doe",
					"full_name":   "Ignored",
					"given_name":  "Jane",
					"family_name": "Doe",
					"avatar_url":  "https://x/a.png",
					"picture":     "https://x/b.png",
					"sub":         "google-123",
				},
				AppMetadata: map[string]any{"provider": "google"},
			},
			want: models.IdentityEvent{
				UserID:            "u2",
				Email:             "u2@x.com",
				FullName:          "Jane Doe",
				FirstName:         "Jane",
				LastName:          "Doe",
				ProfilePictureURL: "https://x/a.png",
				ProviderID:        "google-123",
				AuthProvider:      "google",
			},
		},
		{
			name: "empty values fall through to later keys",
			user: User{
				ID:    "u3",
				Email: "u3@x.com",
				UserMetadata: map[string]any{
					"name":       "",
					"full_name":  "Full Name",
					"first_name": "",
					"firstName":  "First",
					"picture":    "https://x/p.png",
					"provider":   "google",
				},
			},
			want: models.IdentityEvent{
				UserID:            "u3",
				Email:             "u3@x.com",
				FullName:          "Full Name",
				FirstName:         "First",
				ProfilePictureURL: "https://x/p.png",
				ProviderID:        "u3",
				AuthProvider:      "google",
			},
		},
		{
			name: "non-string metadata is ignored",
			user: User{
				ID:           "u4",
				Email:        "u4@x.com",
				UserMetadata: map[string]any{"name": 42},
			},
			want: models.IdentityEvent{UserID: "u4", Email: "u4@x.com", AuthProvider: "email"},
		},
		{
			name: "names are trimmed and stripped of control characters",
			user: User{
				ID:           "u5",
				Email:        "u5@x.com",
				UserMetadata: map[string]any{"name": "  Jane\x07 Doe \n", "given_name": "\tJane"},
			},
			want: models.IdentityEvent{UserID: "u5", Email: "u5@x.com", FullName: "Jane Doe", FirstName: "Jane", AuthProvider: "email"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.user.IdentityEvent(); got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestUser_EmailVerified(t *testing.T) {
	t.Parallel()

	confirmed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	if (&User{}).EmailVerified() {
		t.Error("Expected unconfirmed user to be unverified")
	}
	if !(&User{EmailConfirmedAt: &confirmed}).EmailVerified() {
		t.Error("Expected confirmed user to be verified")
	}
}

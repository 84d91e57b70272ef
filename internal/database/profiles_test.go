package database

import (
	"strings"
	"testing"
	"time"

	"github.com/benvon/profile-sync/internal/models"
)

func TestBuildUpdate(t *testing.T) {
	t.Parallel()

	updatedAt := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	tests := []struct {
		name     string
		fields   models.ProfileFields
		wantSets []string
		wantArgs int
	}{
		{
			name:     "only updated_at",
			fields:   models.ProfileFields{},
			wantSets: []string{"updated_at = $2"},
			wantArgs: 2,
		},
		{
			name: "refresh fields keep column order",
			fields: models.ProfileFields{
				LastName: models.Some("Doe"),
				Email:    models.Some("jane@example.com"),
			},
			wantSets: []string{"email = $2", "last_name = $3", "updated_at = $4"},
			wantArgs: 4,
		},
		{
			name: "explicit null and email_verified",
			fields: models.ProfileFields{
				ProfilePicture: models.Null[string](),
				EmailVerified:  models.Some(true),
			},
			wantSets: []string{"profile_picture = $2", "email_verified = $3", "updated_at = $4"},
			wantArgs: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			query, args := buildUpdate(models.WritePayload{
				Kind:      models.WriteUpdate,
				UserID:    "u1",
				Fields:    tt.fields,
				UpdatedAt: updatedAt,
			})

			wantSet := "SET " + strings.Join(tt.wantSets, ", ") + " WHERE id = $1"
			if !strings.Contains(query, wantSet) {
				t.Errorf("Expected query to contain %q, got %q", wantSet, query)
			}
			if len(args) != tt.wantArgs {
				t.Fatalf("Expected %d args, got %d", tt.wantArgs, len(args))
			}
			if args[0] != "u1" {
				t.Errorf("Expected first arg to be the user id, got %v", args[0])
			}
			if args[len(args)-1] != updatedAt {
				t.Errorf("Expected last arg to be updated_at, got %v", args[len(args)-1])
			}
		})
	}
}

func TestBuildUpdate_NullArgs(t *testing.T) {
	t.Parallel()

	_, args := buildUpdate(models.WritePayload{
		Kind:   models.WriteUpdate,
		UserID: "u1",
		Fields: models.ProfileFields{
			FullName:       models.Some(""),
			ProfilePicture: models.Null[string](),
		},
	})

	fullName, ok := args[1].(*string)
	if !ok || fullName == nil || *fullName != "" {
		t.Errorf("Expected empty full name to be written verbatim, got %v", args[1])
	}
	picture, ok := args[2].(*string)
	if !ok || picture != nil {
		t.Errorf("Expected nil profile picture, got %v", args[2])
	}
}

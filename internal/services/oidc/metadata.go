package oidc

import (
	"github.com/benvon/profile-sync/internal/models"
	"github.com/benvon/profile-sync/internal/validation"
)

// firstString returns the first non-empty string value among keys
func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// nameString is firstString for free-text name fields. Provider metadata is
// user-editable, so control characters and surrounding whitespace are removed.
func nameString(m map[string]any, keys ...string) string {
	return validation.SanitizeText(firstString(m, keys...))
}

// IdentityEvent maps provider metadata onto an identity sync event.
// Each field takes the first non-empty metadata key in precedence order.
func (u *User) IdentityEvent() models.IdentityEvent {
	meta := u.UserMetadata
	if meta == nil {
		meta = map[string]any{}
	}

	event := models.IdentityEvent{
		UserID:            u.ID,
		Email:             u.Email,
		FullName:          nameString(meta, "name", "full_name", "fullName"),
		FirstName:         nameString(meta, "first_name", "firstName", "given_name"),
		LastName:          nameString(meta, "last_name", "lastName", "family_name"),
		ProfilePictureURL: firstString(meta, "avatar_url", "picture", "profile_picture"),
		AuthProvider:      string(models.AuthProviderEmail),
	}

	if firstString(u.AppMetadata, "provider") == string(models.AuthProviderGoogle) ||
		firstString(meta, "provider") == string(models.AuthProviderGoogle) {
		event.AuthProvider = string(models.AuthProviderGoogle)
		event.ProviderID = firstString(meta, "sub", "google_id")
		if event.ProviderID == "" {
			event.ProviderID = u.ID
		}
	}

	return event
}

// EmailVerified reports whether the provider has confirmed the user's email
func (u *User) EmailVerified() bool {
	return u.EmailConfirmedAt != nil && !u.EmailConfirmedAt.IsZero()
}

package models

import (
	"encoding/json"
	"time"
)

// AuthProvider identifies how a user authenticated with the identity provider
type AuthProvider string

const (
	AuthProviderEmail  AuthProvider = "email"
	AuthProviderGoogle AuthProvider = "google"
)

// Profile is the persisted profile record, one per user
type Profile struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	FullName       *string   `json:"full_name"`
	FirstName      *string   `json:"first_name"`
	LastName       *string   `json:"last_name"`
	ProfilePicture *string   `json:"profile_picture"`
	ProviderID     *string   `json:"provider_id"`
	AuthProvider   *string   `json:"auth_provider"`
	EmailVerified  bool      `json:"email_verified"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IdentityEvent carries identity-provider metadata from a sign-in or sign-up.
// Optional fields use the empty string for "not provided"; a JSON null decodes
// to the same thing. Only the identifying fields are checked: provider values
// are stored as the provider sent them.
type IdentityEvent struct {
	UserID            string `json:"userId"`
	Email             string `json:"email" validate:"max=320"`
	FullName          string `json:"fullName,omitempty"`
	FirstName         string `json:"firstName,omitempty"`
	LastName          string `json:"lastName,omitempty"`
	ProfilePictureURL string `json:"profilePictureUrl,omitempty"`
	ProviderID        string `json:"providerId,omitempty"`
	AuthProvider      string `json:"authProvider,omitempty"`
}

// UnmarshalJSON accepts the older profilePicture and googleId keys as aliases
// for profilePictureUrl and providerId.
func (e *IdentityEvent) UnmarshalJSON(data []byte) error {
	type plain IdentityEvent
	aux := struct {
		*plain
		ProfilePicture *string `json:"profilePicture"`
		GoogleID       *string `json:"googleId"`
	}{plain: (*plain)(e)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if e.ProfilePictureURL == "" && aux.ProfilePicture != nil {
		e.ProfilePictureURL = *aux.ProfilePicture
	}
	if e.ProviderID == "" && aux.GoogleID != nil {
		e.ProviderID = *aux.GoogleID
	}
	return nil
}

// UserEdit is an explicit, user-initiated profile change. Every field that is
// present is authoritative, including explicit null.
type UserEdit struct {
	UserID         string           `json:"userId"`
	EmailVerified  Optional[bool]   `json:"emailVerified"`
	FullName       Optional[string] `json:"fullName"`
	ProfilePicture Optional[string] `json:"profilePicture"`
}

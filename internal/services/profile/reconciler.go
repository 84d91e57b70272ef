package profile

import (
	"time"

	"github.com/benvon/profile-sync/internal/models"
)

// ReconcileIdentitySync computes the write that brings current up to date
// with an identity-provider event. A nil current yields a create payload.
// Fields the policy preserves are left out of the payload entirely.
func ReconcileIdentitySync(event models.IdentityEvent, current *models.Profile, now time.Time) (models.WritePayload, error) {
	if event.UserID == "" || event.Email == "" {
		return models.WritePayload{}, invalid("", "User ID and email are required")
	}

	if current == nil {
		payload := models.WritePayload{
			Kind:      models.WriteCreate,
			UserID:    event.UserID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		for _, p := range policies {
			if v := providedString(p.event(&event)); v.Valid {
				*payload.Fields.StringField(p.field) = v
			}
		}
		payload.Fields.EmailVerified = models.Some(false)
		return payload, nil
	}

	payload := models.WritePayload{
		Kind:      models.WriteUpdate,
		UserID:    event.UserID,
		UpdatedAt: now,
	}
	for _, p := range policies {
		if v, ok := Decide(p.sync, providedString(p.event(&event)), p.current(current)); ok {
			*payload.Fields.StringField(p.field) = v
		}
	}
	return payload, nil
}

// ReconcileUserEdit computes the write for an explicit user edit. Every field
// present in the edit is written as given; omitted fields are untouched.
func ReconcileUserEdit(edit models.UserEdit, current *models.Profile, now time.Time) (models.WritePayload, error) {
	if edit.UserID == "" {
		return models.WritePayload{}, invalid("", "User ID is required")
	}
	if current == nil || current.ID != edit.UserID {
		return models.WritePayload{}, ErrNotFound
	}
	if edit.EmailVerified.IsNull() {
		return models.WritePayload{}, invalid("emailVerified", "emailVerified must be true or false")
	}

	payload := models.WritePayload{
		Kind:      models.WriteUpdate,
		UserID:    edit.UserID,
		UpdatedAt: now,
	}
	for _, p := range policies {
		if p.userEdit == nil {
			continue
		}
		incoming := p.userEdit(&edit)
		if p.emptyClears && incoming.Valid && incoming.Value == "" {
			incoming = models.Null[string]()
		}
		if v, ok := Decide(p.edit, incoming, p.current(current)); ok {
			*payload.Fields.StringField(p.field) = v
		}
	}
	if v, ok := Decide(emailVerifiedEditRule, edit.EmailVerified, &current.EmailVerified); ok {
		payload.Fields.EmailVerified = v
	}
	return payload, nil
}

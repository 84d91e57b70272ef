package profile

import (
	"github.com/benvon/profile-sync/internal/models"
)

// Rule decides whether an incoming value replaces the stored one
type Rule int

const (
	// RuleSkip never writes the field
	RuleSkip Rule = iota
	// RuleRefreshIfPresent writes any non-empty incoming value
	RuleRefreshIfPresent
	// RuleFillIfEmpty writes a non-empty incoming value only while the stored value is empty
	RuleFillIfEmpty
	// RuleVerbatim writes whatever was supplied, including null
	RuleVerbatim
)

func (r Rule) String() string {
	switch r {
	case RuleSkip:
		return "skip"
	case RuleRefreshIfPresent:
		return "refresh_if_present"
	case RuleFillIfEmpty:
		return "fill_if_empty"
	case RuleVerbatim:
		return "verbatim"
	default:
		return "unknown"
	}
}

// Decide applies the rule to an incoming value and the current stored value.
// It returns the value to write and whether the field belongs in the payload.
func Decide[T comparable](rule Rule, incoming models.Optional[T], current *T) (models.Optional[T], bool) {
	var zero T
	switch rule {
	case RuleRefreshIfPresent:
		if incoming.Valid && incoming.Value != zero {
			return models.Some(incoming.Value), true
		}
	case RuleFillIfEmpty:
		if incoming.Valid && incoming.Value != zero && (current == nil || *current == zero) {
			return models.Some(incoming.Value), true
		}
	case RuleVerbatim:
		if incoming.Set {
			return incoming, true
		}
	}
	return models.Optional[T]{}, false
}

// fieldPolicy is one row of the merge table for a string column
type fieldPolicy struct {
	field models.Field
	sync  Rule
	edit  Rule
	// emptyClears turns an empty edit value into null
	emptyClears bool
	event       func(*models.IdentityEvent) string
	userEdit    func(*models.UserEdit) models.Optional[string]
	current     func(*models.Profile) *string
}

// policies is the merge table. Identity-provider data is authoritative only for
// refresh fields; full name and picture belong to the user once set.
var policies = []fieldPolicy{
	{
		field:   models.FieldEmail,
		sync:    RuleRefreshIfPresent,
		event:   func(e *models.IdentityEvent) string { return e.Email },
		current: func(p *models.Profile) *string { return &p.Email },
	},
	{
		field:    models.FieldFullName,
		sync:     RuleFillIfEmpty,
		edit:     RuleVerbatim,
		event:    func(e *models.IdentityEvent) string { return e.FullName },
		userEdit: func(u *models.UserEdit) models.Optional[string] { return u.FullName },
		current:  func(p *models.Profile) *string { return p.FullName },
	},
	{
		field:   models.FieldFirstName,
		sync:    RuleRefreshIfPresent,
		event:   func(e *models.IdentityEvent) string { return e.FirstName },
		current: func(p *models.Profile) *string { return p.FirstName },
	},
	{
		field:   models.FieldLastName,
		sync:    RuleRefreshIfPresent,
		event:   func(e *models.IdentityEvent) string { return e.LastName },
		current: func(p *models.Profile) *string { return p.LastName },
	},
	{
		field:       models.FieldProfilePicture,
		sync:        RuleFillIfEmpty,
		edit:        RuleVerbatim,
		emptyClears: true,
		event:       func(e *models.IdentityEvent) string { return e.ProfilePictureURL },
		userEdit:    func(u *models.UserEdit) models.Optional[string] { return u.ProfilePicture },
		current:     func(p *models.Profile) *string { return p.ProfilePicture },
	},
	{
		field:   models.FieldProviderID,
		sync:    RuleRefreshIfPresent,
		event:   func(e *models.IdentityEvent) string { return e.ProviderID },
		current: func(p *models.Profile) *string { return p.ProviderID },
	},
	{
		field:   models.FieldAuthProvider,
		sync:    RuleRefreshIfPresent,
		event:   func(e *models.IdentityEvent) string { return e.AuthProvider },
		current: func(p *models.Profile) *string { return p.AuthProvider },
	},
}

// emailVerifiedEditRule governs the only non-string edit field
const emailVerifiedEditRule = RuleVerbatim

// SyncRule returns the identity-sync rule for a field
func SyncRule(field models.Field) Rule {
	for _, p := range policies {
		if p.field == field {
			return p.sync
		}
	}
	return RuleSkip
}

// EditRule returns the user-edit rule for a field
func EditRule(field models.Field) Rule {
	if field == models.FieldEmailVerified {
		return emailVerifiedEditRule
	}
	for _, p := range policies {
		if p.field == field {
			return p.edit
		}
	}
	return RuleSkip
}

// providedString maps the identity-sync convention (empty means not provided)
// onto an Optional.
func providedString(s string) models.Optional[string] {
	if s == "" {
		return models.Optional[string]{}
	}
	return models.Some(s)
}

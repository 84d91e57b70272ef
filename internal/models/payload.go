package models

import (
	"time"
)

// Field names a writable profile column
type Field string

const (
	FieldEmail          Field = "email"
	FieldFullName       Field = "full_name"
	FieldFirstName      Field = "first_name"
	FieldLastName       Field = "last_name"
	FieldProfilePicture Field = "profile_picture"
	FieldProviderID     Field = "provider_id"
	FieldAuthProvider   Field = "auth_provider"
	FieldEmailVerified  Field = "email_verified"
)

// WriteKind distinguishes inserting a new record from patching an existing one
type WriteKind int

const (
	WriteCreate WriteKind = iota + 1
	WriteUpdate
)

func (k WriteKind) String() string {
	switch k {
	case WriteCreate:
		return "create"
	case WriteUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// ProfileFields is a sparse set of column writes. An absent Optional leaves the
// stored column untouched; an explicit null clears it.
type ProfileFields struct {
	Email          Optional[string]
	FullName       Optional[string]
	FirstName      Optional[string]
	LastName       Optional[string]
	ProfilePicture Optional[string]
	ProviderID     Optional[string]
	AuthProvider   Optional[string]
	EmailVerified  Optional[bool]
}

// StringField returns a pointer to the string field named by f, or nil for
// non-string fields.
func (f *ProfileFields) StringField(field Field) *Optional[string] {
	switch field {
	case FieldEmail:
		return &f.Email
	case FieldFullName:
		return &f.FullName
	case FieldFirstName:
		return &f.FirstName
	case FieldLastName:
		return &f.LastName
	case FieldProfilePicture:
		return &f.ProfilePicture
	case FieldProviderID:
		return &f.ProviderID
	case FieldAuthProvider:
		return &f.AuthProvider
	default:
		return nil
	}
}

// Changed lists the fields present in the set, in column order
func (f ProfileFields) Changed() []Field {
	fields := make([]Field, 0, 8)
	for _, name := range []Field{FieldEmail, FieldFullName, FieldFirstName, FieldLastName, FieldProfilePicture, FieldProviderID, FieldAuthProvider} {
		if f.StringField(name).Set {
			fields = append(fields, name)
		}
	}
	if f.EmailVerified.Set {
		fields = append(fields, FieldEmailVerified)
	}
	return fields
}

// WritePayload is the minimal write to apply to the profile store
type WritePayload struct {
	Kind      WriteKind
	UserID    string
	Fields    ProfileFields
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Apply returns the record that results from writing p over current. For
// creates current is ignored.
func (p WritePayload) Apply(current *Profile) Profile {
	var next Profile
	if p.Kind == WriteCreate || current == nil {
		next = Profile{ID: p.UserID, CreatedAt: p.CreatedAt}
	} else {
		next = *current
	}

	if p.Fields.Email.Set && p.Fields.Email.Valid {
		next.Email = p.Fields.Email.Value
	}
	assign := func(dst **string, v Optional[string]) {
		if v.Set {
			*dst = v.Ptr()
		}
	}
	assign(&next.FullName, p.Fields.FullName)
	assign(&next.FirstName, p.Fields.FirstName)
	assign(&next.LastName, p.Fields.LastName)
	assign(&next.ProfilePicture, p.Fields.ProfilePicture)
	assign(&next.ProviderID, p.Fields.ProviderID)
	assign(&next.AuthProvider, p.Fields.AuthProvider)
	if p.Fields.EmailVerified.Set {
		next.EmailVerified = p.Fields.EmailVerified.Valid && p.Fields.EmailVerified.Value
	}
	next.UpdatedAt = p.UpdatedAt
	return next
}

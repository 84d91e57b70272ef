package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/benvon/profile-sync/internal/models"
)

const profileColumns = `id, email, full_name, first_name, last_name, profile_picture, provider_id, auth_provider, email_verified, created_at, updated_at`

// ProfileRepository handles profile database operations
type ProfileRepository struct {
	db *DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	p := &models.Profile{}
	err := row.Scan(
		&p.ID,
		&p.Email,
		&p.FullName,
		&p.FirstName,
		&p.LastName,
		&p.ProfilePicture,
		&p.ProviderID,
		&p.AuthProvider,
		&p.EmailVerified,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetByID retrieves a profile by user ID
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM users WHERE id = $1`

	p, err := scanProfile(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return p, nil
}

// Create inserts the record described by a create payload. A row inserted
// concurrently for the same id yields ErrProfileExists.
func (r *ProfileRepository) Create(ctx context.Context, payload models.WritePayload) (*models.Profile, error) {
	if payload.Kind != models.WriteCreate {
		return nil, fmt.Errorf("failed to create profile: payload kind is %s", payload.Kind)
	}

	query := `
		INSERT INTO users (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
		RETURNING ` + profileColumns

	f := payload.Fields
	emailVerified := f.EmailVerified.Valid && f.EmailVerified.Value
	p, err := scanProfile(r.db.QueryRowContext(ctx, query,
		payload.UserID,
		f.Email.Value,
		f.FullName.Ptr(),
		f.FirstName.Ptr(),
		f.LastName.Ptr(),
		f.ProfilePicture.Ptr(),
		f.ProviderID.Ptr(),
		f.AuthProvider.Ptr(),
		emailVerified,
		payload.CreatedAt,
		payload.UpdatedAt,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return p, nil
}

// Update writes only the fields present in the payload plus updated_at
func (r *ProfileRepository) Update(ctx context.Context, payload models.WritePayload) (*models.Profile, error) {
	query, args := buildUpdate(payload)

	p, err := scanProfile(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return p, nil
}

// buildUpdate renders the UPDATE statement for a payload. Absent fields are
// not mentioned so the stored value is kept.
func buildUpdate(payload models.WritePayload) (string, []any) {
	args := []any{payload.UserID}
	sets := make([]string, 0, 9)

	fields := payload.Fields
	for _, field := range fields.Changed() {
		var value any
		if field == models.FieldEmailVerified {
			value = fields.EmailVerified.Ptr()
		} else {
			value = fields.StringField(field).Ptr()
		}
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", field, len(args)))
	}

	args = append(args, payload.UpdatedAt)
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + profileColumns
	return query, args
}

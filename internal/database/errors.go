package database

import (
	"database/sql"
	"errors"
	"fmt"
)

var (
	// ErrProfileNotFound is returned when no profile row matches the id
	ErrProfileNotFound = fmt.Errorf("profile not found: %w", sql.ErrNoRows)
	// ErrProfileExists is returned when a create loses the race to a concurrent insert
	ErrProfileExists = errors.New("profile already exists")
)

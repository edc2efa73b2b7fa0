// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. Every
// per-entity "not found" error wraps ErrNotFound so handlers can test
// for it with errors.Is without knowing the entity.
package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a record cannot be found in the DB.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

var (
	ErrCountryNotFound    = fmt.Errorf("country %w", ErrNotFound)
	ErrGenreNotFound      = fmt.Errorf("genre %w", ErrNotFound)
	ErrPersonNotFound     = fmt.Errorf("person %w", ErrNotFound)
	ErrFilmNotFound       = fmt.Errorf("film %w", ErrNotFound)
	ErrAwardNotFound      = fmt.Errorf("award %w", ErrNotFound)
	ErrNominationNotFound = fmt.Errorf("nomination %w", ErrNotFound)
	ErrResultNotFound     = fmt.Errorf("result %w", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
)

// ErrUsernameExists is returned when an account with the same username
// already exists.
var ErrUsernameExists = errors.New("username already exists")

// Package store holds the gorm backed repositories for posts, tags,
// comments and favorites.
package store

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a lookup matches no visible row.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write would violate a unique index.
	ErrConflict = errors.New("conflict")
)

// translate maps gorm errors onto the store sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	}
	return err
}

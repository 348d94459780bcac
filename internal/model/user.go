package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidUser is returned for a user without an id.
var ErrInvalidUser = errors.New("invalid user")

// User is the signed-in identity. Its JSON shape is the persisted session snapshot.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo,omitempty"`
}

// Validate ensures the user can key per-user storage.
func (u User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidUser)
	}
	return nil
}

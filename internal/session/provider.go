package session

import (
	"context"

	"github.com/gofinances/gofinances/internal/model"
)

// Provider authenticates a user and returns their profile.
type Provider interface {
	Name() string
	SignIn(ctx context.Context) (model.User, error)
}

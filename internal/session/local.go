package session

import (
	"context"
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"github.com/gofinances/gofinances/internal/common"
	"github.com/gofinances/gofinances/internal/model"
	"github.com/google/uuid"
)

// localNamespace scopes the UUIDs derived from e-mail addresses.
var localNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://gofinances.local/users"))

// LocalProvider signs in with an identity that only exists on this machine.
type LocalProvider struct {
	FullName string
	Email    string
}

// Name implements Provider.
func (p LocalProvider) Name() string { return "local" }

// SignIn implements Provider. The same e-mail always yields the same user id.
func (p LocalProvider) SignIn(_ context.Context) (model.User, error) {
	name := strings.TrimSpace(p.FullName)
	if name == "" {
		return model.User{}, fmt.Errorf("%w: name is required", common.ErrSignInFailed)
	}

	addr, err := mail.ParseAddress(strings.TrimSpace(p.Email))
	if err != nil {
		return model.User{}, fmt.Errorf("%w: invalid e-mail %q", common.ErrSignInFailed, p.Email)
	}
	email := strings.ToLower(addr.Address)

	return model.User{
		ID:    uuid.NewSHA1(localNamespace, []byte(email)).String(),
		Name:  name,
		Email: email,
		Photo: AvatarURL(name),
	}, nil
}

// AvatarURL returns a generated single-letter avatar for name.
func AvatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&length=1"
}

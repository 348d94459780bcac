// Package session keeps track of the signed-in user and persists it across runs.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gofinances/gofinances/internal/model"
	"github.com/gofinances/gofinances/internal/storage"
)

var (
	// ErrNotSignedIn is returned when no user is signed in.
	ErrNotSignedIn = errors.New("not signed in")
	// ErrSessionLoading is returned while the persisted session has not been read yet.
	ErrSessionLoading = errors.New("session is still loading")
)

// Context identifies whose data an operation may touch.
type Context struct {
	UserID string
}

// TransactionsKey is the storage key of this user's transactions.
func (c Context) TransactionsKey() string {
	return storage.TransactionsKey(c.UserID)
}

// Store holds the current user in memory, backed by a snapshot under storage.UserKey.
type Store struct {
	kv       storage.KeyValueStore
	user     *model.User
	mu       sync.RWMutex
	hydrated bool
}

// NewStore returns a store in the loading state. Call Hydrate before use.
func NewStore(kv storage.KeyValueStore) *Store {
	return &Store{kv: kv}
}

// Hydrate reads the persisted session. A snapshot that cannot be decoded is
// treated as signed out. Storage failures end loading with no user and are returned.
func (s *Store) Hydrate(ctx context.Context) error {
	raw, ok, err := s.kv.GetItem(ctx, storage.UserKey)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrated = true
	s.user = nil

	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	if !ok {
		return nil
	}

	var u model.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		slog.WarnContext(ctx, "Ignoring unreadable session snapshot", "error", err)
		return nil
	}
	if err := u.Validate(); err != nil {
		slog.WarnContext(ctx, "Ignoring invalid session snapshot", "error", err)
		return nil
	}

	s.user = &u
	slog.DebugContext(ctx, "Session restored", "user_id", u.ID)
	return nil
}

// Loading reports whether Hydrate has not completed yet.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.hydrated
}

// Current returns the signed-in user, if any.
func (s *Store) Current() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

// Context returns the session context callers pass to the transaction store.
func (s *Store) Context() (Context, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hydrated {
		return Context{}, ErrSessionLoading
	}
	if s.user == nil {
		return Context{}, ErrNotSignedIn
	}
	return Context{UserID: s.user.ID}, nil
}

// Set persists user and makes it current. Memory only changes once the write succeeded.
func (s *Store) Set(ctx context.Context, user model.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.SetItem(ctx, storage.UserKey, string(raw)); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.user = &user
	s.hydrated = true
	return nil
}

// Clear signs out: the snapshot is removed and memory is reset.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.RemoveItem(ctx, storage.UserKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	s.user = nil
	s.hydrated = true
	return nil
}

// SignIn runs provider and stores the user it returns.
func (s *Store) SignIn(ctx context.Context, provider Provider) (model.User, error) {
	user, err := provider.SignIn(ctx)
	if err != nil {
		return model.User{}, fmt.Errorf("%s sign-in: %w", provider.Name(), err)
	}
	if err := s.Set(ctx, user); err != nil {
		return model.User{}, err
	}

	slog.InfoContext(ctx, "Signed in", "provider", provider.Name(), "user_id", user.ID)
	return user, nil
}

// Package transactions persists each user's transaction list as a JSON snapshot.
package transactions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gofinances/gofinances/internal/common"
	"github.com/gofinances/gofinances/internal/model"
	"github.com/gofinances/gofinances/internal/storage"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrCorruptSnapshot means the stored value is not a JSON array.
	ErrCorruptSnapshot = errors.New("corrupt transaction snapshot")
	// ErrDuplicateTransaction means a record with the same id is already stored.
	ErrDuplicateTransaction = errors.New("duplicate transaction")
	// ErrMissingUser means an operation was attempted without a user id.
	ErrMissingUser = errors.New("missing user id")
)

// Store reads and appends per-user transaction snapshots.
type Store struct {
	kv    storage.KeyValueStore
	loads singleflight.Group
	retry common.RetryOptions
	mu    sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithRetryOptions overrides the retry policy for storage reads.
func WithRetryOptions(opts common.RetryOptions) Option {
	return func(s *Store) { s.retry = opts }
}

// NewStore returns a Store over kv.
func NewStore(kv storage.KeyValueStore, opts ...Option) *Store {
	s := &Store{kv: kv, retry: common.DefaultRetryOptions()}
	for _, opt := range opts {
		opt(s)
	}
	s.retry.Retryable = func(err error) bool {
		return errors.Is(err, storage.ErrStorageUnavailable)
	}
	return s
}

// Load returns the user's records in creation order. Nothing stored yields an
// empty slice. Records that fail validation are skipped.
func (s *Store) Load(ctx context.Context, userID string) ([]model.Transaction, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingUser
	}

	v, err, shared := s.loads.Do(userID, func() (any, error) {
		return s.load(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.DebugContext(ctx, "Shared in-flight transaction load", "user_id", userID)
	}

	records := v.([]model.Transaction)
	out := make([]model.Transaction, len(records))
	copy(out, records)
	return out, nil
}

// Append validates record and adds it to the end of the user's snapshot.
func (s *Store) Append(ctx context.Context, userID string, record model.Transaction) error {
	if strings.TrimSpace(userID) == "" {
		return ErrMissingUser
	}
	if err := record.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	for _, r := range existing {
		if r.ID == record.ID {
			return fmt.Errorf("%w: %s", ErrDuplicateTransaction, record.ID)
		}
	}

	if err := s.write(ctx, userID, append(existing, record)); err != nil {
		return err
	}

	slog.DebugContext(ctx, "Transaction appended",
		"user_id", userID,
		"transaction_id", record.ID,
		"count", len(existing)+1)
	return nil
}

// AppendBatch appends records in order, skipping ids already stored. It returns
// how many records were added. All records are validated before anything is written.
func (s *Store) AppendBatch(ctx context.Context, userID string, records []model.Transaction) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, ErrMissingUser
	}
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load(ctx, userID)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]struct{}, len(existing)+len(records))
	for _, r := range existing {
		seen[r.ID] = struct{}{}
	}

	added := 0
	for _, r := range records {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		existing = append(existing, r)
		added++
	}
	if added == 0 {
		return 0, nil
	}

	if err := s.write(ctx, userID, existing); err != nil {
		return 0, err
	}
	return added, nil
}

func (s *Store) load(ctx context.Context, userID string) ([]model.Transaction, error) {
	key := storage.TransactionsKey(userID)

	var raw string
	var found bool
	err := common.WithRetry(ctx, func() error {
		var getErr error
		raw, found, getErr = s.kv.GetItem(ctx, key)
		return getErr
	}, s.retry)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	if !found || strings.TrimSpace(raw) == "" {
		return []model.Transaction{}, nil
	}

	return decodeSnapshot(ctx, userID, raw)
}

func decodeSnapshot(ctx context.Context, userID, raw string) ([]model.Transaction, error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}

	records := make([]model.Transaction, 0, len(items))
	for i, item := range items {
		var t model.Transaction
		if err := json.Unmarshal(item, &t); err != nil {
			slog.WarnContext(ctx, "Skipping malformed transaction record",
				"user_id", userID, "index", i, "error", err)
			continue
		}
		if err := t.Validate(); err != nil {
			slog.WarnContext(ctx, "Skipping malformed transaction record",
				"user_id", userID, "index", i, "error", err)
			continue
		}
		records = append(records, t)
	}
	return records, nil
}

func (s *Store) write(ctx context.Context, userID string, records []model.Transaction) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode transactions: %w", err)
	}
	if err := s.kv.SetItem(ctx, storage.TransactionsKey(userID), string(raw)); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}
	return nil
}

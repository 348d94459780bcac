// Package storage provides the key-value persistence layer for gofinances.
package storage

import (
	"context"
	"errors"
)

// ErrStorageUnavailable indicates the underlying store could not be read or written.
var ErrStorageUnavailable = errors.New("storage unavailable")

// KeyValueStore is a durable string-to-string map. A missing key is not an error.
type KeyValueStore interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// Keys written by the application.
const (
	UserKey               = "@gofinances:user"
	transactionsKeyPrefix = "@gofinances:transactions_user:"
)

// TransactionsKey returns the key holding the transaction snapshot of userID.
func TransactionsKey(userID string) string {
	return transactionsKeyPrefix + userID
}

package store

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when no value exists for the key.
var ErrKeyNotFound = errors.New("key not found")

// KeyStore is the durable string key/value store a session persists its
// snapshot into. Values survive process restart; there are no transactions,
// so multi-key writes are not atomic. Implementations must be safe for
// concurrent use.
type KeyStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

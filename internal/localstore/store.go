package localstore

import (
	"context"
	"errors"
)

// Store is the durable local key-value layer backing the session's persisted
// state. It holds a handful of well-known keys with serialized JSON values;
// it is a best-effort durability layer, not a source of truth.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

var ErrKeyNotFound = errors.New("key not found")

// Well-known keys.
const (
	KeyCart    = "cart"
	KeySession = "auth"
)

package kvstore

import (
	"context"
	"errors"
)

var ErrKeyNotFound = errors.New("key not found")

// Store is the durable key-value persistence primitive: a named JSON blob per
// key, last write wins, no transactions. Values are JSON round-tripped, so
// anything handed to Set must marshal cleanly.
type Store interface {
	Get(ctx context.Context, key string, out any) error
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

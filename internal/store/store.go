// Package store is the local key-value persistence used by the list
// repository. Every value is written whole; there are no partial or merge
// writes and no transactions.
package store

import (
	"context"
	"errors"
)

// Store is a single-client key-value store.
//
// Get returns (nil, nil) when key has never been written. Set durably
// replaces the previous value of key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Opener acquires a Store handle. It runs once, before any Get or Set.
type Opener func(ctx context.Context) (Store, error)

var ErrClosed = errors.New("store closed")

package lists

import "errors"

var (
	// ErrStoreUnavailable means the store could not be opened or loaded.
	// The repository then serves an empty collection and rejects mutations.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrStoreWriteFailed means a Set failed or timed out. The mutation was
	// not applied and nothing was published.
	ErrStoreWriteFailed = errors.New("store write failed")

	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
)

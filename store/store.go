package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable is returned when the backing medium cannot be written or
// read, for example because storage is disabled or full.
var ErrUnavailable = errors.New("store unavailable")

// ErrQuotaExceeded is returned when a write would exceed the store's quota.
var ErrQuotaExceeded = fmt.Errorf("%w: quota exceeded", ErrUnavailable)

// Entry holds a stored value and its metadata.
type Entry struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// Store is a string key-value store. A missing key is not an error: Get
// reports it with ok == false.
// Implementations: MemoryStore, FileStore, FirestoreStore, CachedStore.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]Entry, error)
}

// Syncer is implemented by stores that buffer writes. Sync makes the value
// under key durable, or reports why it could not.
type Syncer interface {
	Sync(ctx context.Context, key string) error
}

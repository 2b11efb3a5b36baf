package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// pending is a write that has not reached the backing store yet.
type pending struct {
	value   string
	deleted bool
	gen     uint64 // bumped on every write so a flush never clears a newer one
}

// CachedStore wraps a backing Store with an in-memory cache.
// All reads and writes are served from the cache. Dirty keys are flushed to
// the backing store periodically in the background; failed writes stay dirty
// and are retried on the next cycle.
type CachedStore struct {
	cache         *MemoryStore
	backing       Store
	log           *zap.Logger
	mu            sync.Mutex
	dirty         map[string]*pending
	gen           uint64
	flushInterval time.Duration
	stop          chan struct{}
	done          chan struct{}
	closeOnce     sync.Once
}

// NewCachedStore creates a CachedStore that caches in memory and flushes
// dirty keys to the backing store every flushInterval.
func NewCachedStore(backing Store, flushInterval time.Duration, log *zap.Logger) *CachedStore {
	if log == nil {
		log = zap.NewNop()
	}
	cs := &CachedStore{
		cache:         NewMemoryStore(),
		backing:       backing,
		log:           log.Named("cached-store"),
		dirty:         make(map[string]*pending),
		flushInterval: flushInterval,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	go cs.flushLoop()
	return cs
}

func (cs *CachedStore) Get(ctx context.Context, key string) (string, bool, error) {
	cs.mu.Lock()
	if p, ok := cs.dirty[key]; ok {
		cs.mu.Unlock()
		if p.deleted {
			return "", false, nil
		}
		return p.value, true, nil
	}
	cs.mu.Unlock()

	if value, ok, _ := cs.cache.Get(ctx, key); ok {
		return value, true, nil
	}

	// Cache miss: read through to the backing store.
	value, ok, err := cs.backing.Get(ctx, key)
	if err != nil || !ok {
		return "", false, err
	}
	cs.mu.Lock()
	if _, raced := cs.dirty[key]; !raced {
		cs.cache.Set(ctx, key, value)
	}
	cs.mu.Unlock()
	return value, true, nil
}

func (cs *CachedStore) Set(ctx context.Context, key, value string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if err := cs.cache.Set(ctx, key, value); err != nil {
		return err
	}
	cs.gen++
	cs.dirty[key] = &pending{value: value, gen: cs.gen}
	return nil
}

func (cs *CachedStore) Delete(ctx context.Context, key string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.cache.Delete(ctx, key)
	cs.gen++
	cs.dirty[key] = &pending{deleted: true, gen: cs.gen}
	return nil
}

// List returns the backing store's entries overlaid with unflushed writes.
func (cs *CachedStore) List(ctx context.Context) ([]Entry, error) {
	entries, err := cs.backing.List(ctx)
	if err != nil {
		return nil, err
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	byKey := make(map[string]Entry, len(entries)+len(cs.dirty))
	for _, e := range entries {
		byKey[e.Key] = e
	}
	for key, p := range cs.dirty {
		if p.deleted {
			delete(byKey, key)
			continue
		}
		byKey[key] = Entry{Key: key, Value: p.value, UpdatedAt: time.Now()}
	}

	result := make([]Entry, 0, len(byKey))
	for _, e := range byKey {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

// Dirty reports the number of keys waiting to be flushed.
func (cs *CachedStore) Dirty() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.dirty)
}

func (cs *CachedStore) flushLoop() {
	ticker := time.NewTicker(cs.flushInterval)
	defer ticker.Stop()
	defer close(cs.done)

	for {
		select {
		case <-ticker.C:
			cs.Flush(context.Background())
		case <-cs.stop:
			cs.Flush(context.Background())
			return
		}
	}
}

// Flush writes all dirty keys to the backing store and returns how many
// are still dirty afterwards.
func (cs *CachedStore) Flush(ctx context.Context) int {
	cs.mu.Lock()
	// Snapshot the dirty map and work on a copy.
	snapshot := make(map[string]pending, len(cs.dirty))
	for key, p := range cs.dirty {
		snapshot[key] = *p
	}
	cs.mu.Unlock()

	for key, p := range snapshot {
		if err := cs.flushKey(ctx, key, p); err != nil {
			cs.log.Warn("flush failed, will retry",
				zap.String("key", key),
				zap.Bool("delete", p.deleted),
				zap.Error(err))
		}
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	if n := len(cs.dirty); n > 0 {
		cs.log.Debug("flush incomplete", zap.Int("dirty", n))
		return n
	}
	return 0
}

// Sync writes key to the backing store now and returns the backing store's
// error. On failure the key stays dirty and the flush loop keeps retrying.
func (cs *CachedStore) Sync(ctx context.Context, key string) error {
	cs.mu.Lock()
	cur, ok := cs.dirty[key]
	var p pending
	if ok {
		p = *cur
	}
	cs.mu.Unlock()
	if !ok {
		return nil
	}
	if err := cs.flushKey(ctx, key, p); err != nil {
		return fmt.Errorf("sync %q: %w", key, err)
	}
	return nil
}

func (cs *CachedStore) flushKey(ctx context.Context, key string, p pending) error {
	var err error
	if p.deleted {
		err = cs.backing.Delete(ctx, key)
	} else {
		err = cs.backing.Set(ctx, key, p.value)
	}
	if err != nil {
		return err
	}

	cs.mu.Lock()
	// Only clear if no new writes happened since the snapshot.
	if cur, ok := cs.dirty[key]; ok && cur.gen == p.gen {
		delete(cs.dirty, key)
	}
	cs.mu.Unlock()
	return nil
}

// Close signals the flush loop to perform a final flush and waits for it
// to complete.
func (cs *CachedStore) Close() {
	cs.closeOnce.Do(func() { close(cs.stop) })
	<-cs.done
}

package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

// flakyStore fails every write while down is set.
type flakyStore struct {
	*MemoryStore
	mu   sync.Mutex
	down bool
}

func (f *flakyStore) setDown(down bool) {
	f.mu.Lock()
	f.down = down
	f.mu.Unlock()
}

func (f *flakyStore) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	down := f.down
	f.mu.Unlock()
	if down {
		return ErrUnavailable
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func TestCachedStore_ReadThrough(t *testing.T) {
	backing := NewMemoryStore()
	ctx := context.Background()

	if err := backing.Set(ctx, "doc1", "hello"); err != nil {
		t.Fatal(err)
	}

	cs := NewCachedStore(backing, time.Hour, zaptest.NewLogger(t)) // long interval: no auto flush
	defer cs.Close()

	value, ok, err := cs.Get(ctx, "doc1")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || value != "hello" {
		t.Errorf("Get = %q, %v", value, ok)
	}
	if cs.Dirty() != 0 {
		t.Errorf("read-through must not mark the key dirty, got %d", cs.Dirty())
	}
}

func TestCachedStore_WriteBehind(t *testing.T) {
	backing := NewMemoryStore()
	ctx := context.Background()

	cs := NewCachedStore(backing, 20*time.Millisecond, zaptest.NewLogger(t))
	defer cs.Close()

	if err := cs.Set(ctx, "doc1", "hello"); err != nil {
		t.Fatal(err)
	}

	// The cache serves the write immediately.
	if value, _, _ := cs.Get(ctx, "doc1"); value != "hello" {
		t.Errorf("cached value = %q", value)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if value, ok, _ := backing.Get(ctx, "doc1"); ok && value == "hello" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("backing store never received the write")
}

func TestCachedStore_FlushOnClose(t *testing.T) {
	backing := NewMemoryStore()
	ctx := context.Background()

	cs := NewCachedStore(backing, time.Hour, zaptest.NewLogger(t))
	cs.Set(ctx, "a", "1")
	cs.Set(ctx, "b", "2")

	if _, ok, _ := backing.Get(ctx, "a"); ok {
		t.Fatal("expected backing to not have the key before close")
	}

	cs.Close()

	for _, key := range []string{"a", "b"} {
		if _, ok, _ := backing.Get(ctx, key); !ok {
			t.Errorf("key %q not flushed on close", key)
		}
	}
	// Close is idempotent.
	cs.Close()
}

func TestCachedStore_DeleteIsWrittenBehind(t *testing.T) {
	backing := NewMemoryStore()
	ctx := context.Background()
	backing.Set(ctx, "doc1", "hello")

	cs := NewCachedStore(backing, time.Hour, zaptest.NewLogger(t))
	defer cs.Close()

	if err := cs.Delete(ctx, "doc1"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := cs.Get(ctx, "doc1"); ok {
		t.Error("deleted key must not be read through from backing")
	}
	entries, _ := cs.List(ctx)
	if len(entries) != 0 {
		t.Errorf("List = %+v, want empty", entries)
	}

	cs.Flush(ctx)
	if _, ok, _ := backing.Get(ctx, "doc1"); ok {
		t.Error("delete not flushed")
	}
}

func TestCachedStore_RetriesFailedFlush(t *testing.T) {
	backing := &flakyStore{MemoryStore: NewMemoryStore(), down: true}
	ctx := context.Background()

	cs := NewCachedStore(backing, time.Hour, zaptest.NewLogger(t))
	defer cs.Close()

	cs.Set(ctx, "doc1", "hello")

	if n := cs.Flush(ctx); n != 1 {
		t.Fatalf("dirty after failed flush = %d, want 1", n)
	}
	if _, ok, _ := backing.MemoryStore.Get(ctx, "doc1"); ok {
		t.Fatal("write should not have landed")
	}

	backing.setDown(false)
	if n := cs.Flush(ctx); n != 0 {
		t.Fatalf("dirty after retry = %d, want 0", n)
	}
	if value, _, _ := backing.MemoryStore.Get(ctx, "doc1"); value != "hello" {
		t.Errorf("backing value = %q", value)
	}
}

func TestCachedStore_ListOverlaysDirty(t *testing.T) {
	backing := NewMemoryStore()
	ctx := context.Background()
	backing.Set(ctx, "a", "old")
	backing.Set(ctx, "b", "2")

	cs := NewCachedStore(backing, time.Hour, zaptest.NewLogger(t))
	defer cs.Close()

	cs.Set(ctx, "a", "new")
	cs.Set(ctx, "c", "3")

	entries, err := cs.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]string{}
	for _, e := range entries {
		got[e.Key] = e.Value
	}
	want := map[string]string{"a": "new", "b": "2", "c": "3"}
	if len(got) != len(want) {
		t.Fatalf("List = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}

func TestCachedStore_BackingErrorOnMiss(t *testing.T) {
	cs := NewCachedStore(&unavailableStore{}, time.Hour, zaptest.NewLogger(t))
	defer cs.Close()

	_, _, err := cs.Get(context.Background(), "doc1")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

type unavailableStore struct{}

func (unavailableStore) Get(context.Context, string) (string, bool, error) {
	return "", false, ErrUnavailable
}
func (unavailableStore) Set(context.Context, string, string) error { return ErrUnavailable }
func (unavailableStore) Delete(context.Context, string) error      { return ErrUnavailable }
func (unavailableStore) List(context.Context) ([]Entry, error)     { return nil, ErrUnavailable }

func TestCachedStore_SyncReportsBackingError(t *testing.T) {
	backing := &flakyStore{MemoryStore: NewMemoryStore(), down: true}
	ctx := context.Background()

	cs := NewCachedStore(backing, time.Hour, zaptest.NewLogger(t))
	defer cs.Close()

	cs.Set(ctx, "doc1", "hello")
	if err := cs.Sync(ctx, "doc1"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Sync err = %v, want ErrUnavailable", err)
	}
	if cs.Dirty() != 1 {
		t.Fatalf("failed sync must keep the key dirty, got %d", cs.Dirty())
	}

	backing.setDown(false)
	if err := cs.Sync(ctx, "doc1"); err != nil {
		t.Fatalf("Sync after recovery: %v", err)
	}
	if value, _, _ := backing.MemoryStore.Get(ctx, "doc1"); value != "hello" {
		t.Errorf("backing value = %q", value)
	}
	if cs.Dirty() != 0 {
		t.Errorf("dirty = %d after sync", cs.Dirty())
	}

	// A clean key has nothing to sync.
	if err := cs.Sync(ctx, "other"); err != nil {
		t.Errorf("Sync of clean key: %v", err)
	}
}

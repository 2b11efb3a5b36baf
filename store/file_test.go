package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := s.Set(ctx, "editorContent", `{"blocks":[]}`); err != nil {
		t.Fatal(err)
	}

	// A second store over the same directory sees the value.
	s2, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	value, ok, err := s2.Get(ctx, "editorContent")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || value != `{"blocks":[]}` {
		t.Errorf("Get = %q, %v", value, ok)
	}
}

func TestFileStore_GetMissing(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_, ok, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected missing key")
	}
}

func TestFileStore_KeysWithSlashes(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := s.Set(ctx, "notes/today", "x"); err != nil {
		t.Fatal(err)
	}
	files, _ := os.ReadDir(dir)
	if len(files) != 1 || files[0].IsDir() {
		t.Fatalf("expected one flat file in %s, got %v", dir, files)
	}

	entries, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Key != "notes/today" || entries[0].Value != "x" {
		t.Errorf("List = %+v", entries)
	}
}

func TestFileStore_DeleteAndList(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	s.Set(ctx, "a", "1")
	s.Set(ctx, "b", "2")
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "missing"); err != nil {
		t.Errorf("deleting a missing key: %v", err)
	}
	// Stray temp files are ignored.
	os.WriteFile(filepath.Join(dir, ".tmp-123"), []byte("junk"), 0o644)

	entries, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Key != "b" {
		t.Errorf("List = %+v, want only b", entries)
	}
}

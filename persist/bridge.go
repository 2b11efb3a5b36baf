// Package persist saves and restores editor documents through a Store.
package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/alimasry/blockedit/content"
	"github.com/alimasry/blockedit/store"
)

// DefaultKey is the storage key documents are saved under.
const DefaultKey = "editorContent"

// ErrCorrupt is returned by Load when the stored value is not a valid raw
// document.
var ErrCorrupt = errors.New("stored content is corrupt")

// Bridge writes a whole document under one key and reads it back.
type Bridge struct {
	store store.Store
	key   string
	log   *zap.Logger
}

// NewBridge creates a Bridge over s. An empty key selects DefaultKey.
func NewBridge(s store.Store, key string, log *zap.Logger) *Bridge {
	if key == "" {
		key = DefaultKey
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Bridge{store: s, key: key, log: log.Named("persist")}
}

// Key returns the storage key.
func (b *Bridge) Key() string { return b.key }

// Save serializes doc and overwrites the stored value. Buffering stores are
// synced before Save returns. Store errors are wrapped, so
// store.ErrUnavailable still matches.
func (b *Bridge) Save(ctx context.Context, doc content.Document) error {
	data, err := content.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if err := b.store.Set(ctx, b.key, string(data)); err != nil {
		return fmt.Errorf("save %q: %w", b.key, err)
	}
	if s, ok := b.store.(store.Syncer); ok {
		if err := s.Sync(ctx, b.key); err != nil {
			return fmt.Errorf("save %q: %w", b.key, err)
		}
	}
	b.log.Debug("saved", zap.String("key", b.key), zap.Int("blocks", doc.Len()), zap.Int("bytes", len(data)))
	return nil
}

// Load returns the stored document, or a new empty document when nothing
// has been saved yet.
func (b *Bridge) Load(ctx context.Context) (content.Document, error) {
	value, ok, err := b.store.Get(ctx, b.key)
	if err != nil {
		return content.Document{}, fmt.Errorf("load %q: %w", b.key, err)
	}
	if !ok {
		return content.NewDocument(), nil
	}
	return decode(b.key, value)
}

// LoadOrEmpty is Load that logs failures and falls back to an empty
// document.
func (b *Bridge) LoadOrEmpty(ctx context.Context) content.Document {
	doc, err := b.Load(ctx)
	if err != nil {
		b.log.Warn("starting with an empty document", zap.String("key", b.key), zap.Error(err))
		return content.NewDocument()
	}
	return doc
}

func decode(key, value string) (content.Document, error) {
	if !gjson.Valid(value) {
		return content.Document{}, fmt.Errorf("load %q: %w: invalid JSON", key, ErrCorrupt)
	}
	if blocks := gjson.Get(value, "blocks"); !blocks.IsArray() {
		return content.Document{}, fmt.Errorf("load %q: %w: no blocks array", key, ErrCorrupt)
	}
	doc, err := content.Unmarshal([]byte(value))
	if err != nil {
		return content.Document{}, fmt.Errorf("load %q: %w: %v", key, ErrCorrupt, err)
	}
	return doc, nil
}

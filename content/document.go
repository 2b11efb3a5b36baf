package content

import (
	"errors"
	"fmt"
	"maps"
	"strings"
)

var (
	// ErrBlockNotFound is returned when a key names no block in the document.
	ErrBlockNotFound = errors.New("block not found")
	// ErrNoBlocks is returned when a document would have no blocks.
	ErrNoBlocks = errors.New("document has no blocks")
)

// Entity is an annotation referenced by EntityRanges, such as a link.
type Entity struct {
	Type       string         `json:"type"`
	Mutability string         `json:"mutability"`
	Data       map[string]any `json:"data"`
}

// Document is an immutable ordered list of blocks plus an entity map.
// Every change returns a new Document; earlier values stay valid, so a
// history of prior Documents is enough for undo.
type Document struct {
	blocks   []Block
	index    map[string]int
	entities map[string]Entity
}

// NewDocument returns a document holding one empty unstyled block.
func NewDocument() Document {
	d, _ := NewDocumentFromBlocks([]Block{NewBlock(GenerateKey())}, nil)
	return d
}

// NewDocumentFromBlocks builds a document from blocks and an entity map.
// Keys must be non-empty and unique.
func NewDocumentFromBlocks(blocks []Block, entities map[string]Entity) (Document, error) {
	if len(blocks) == 0 {
		return Document{}, ErrNoBlocks
	}
	d := Document{
		blocks:   make([]Block, len(blocks)),
		index:    make(map[string]int, len(blocks)),
		entities: maps.Clone(entities),
	}
	for i, b := range blocks {
		if b.Key == "" {
			return Document{}, fmt.Errorf("block %d has no key", i)
		}
		if _, dup := d.index[b.Key]; dup {
			return Document{}, fmt.Errorf("duplicate block key %q", b.Key)
		}
		if b.Type == "" {
			b.Type = Unstyled
		}
		d.blocks[i] = b.clone()
		d.index[b.Key] = i
	}
	return d, nil
}

// Len returns the number of blocks.
func (d Document) Len() int { return len(d.blocks) }

// Blocks returns a copy of the block list.
func (d Document) Blocks() []Block {
	out := make([]Block, len(d.blocks))
	for i, b := range d.blocks {
		out[i] = b.clone()
	}
	return out
}

// Entities returns a copy of the entity map.
func (d Document) Entities() map[string]Entity { return maps.Clone(d.entities) }

// BlockAt returns the block at index i.
func (d Document) BlockAt(i int) Block { return d.blocks[i].clone() }

// First returns the first block.
func (d Document) First() Block { return d.BlockAt(0) }

// Last returns the last block.
func (d Document) Last() Block { return d.BlockAt(len(d.blocks) - 1) }

// BlockForKey returns the block with the given key.
func (d Document) BlockForKey(key string) (Block, bool) {
	i, ok := d.index[key]
	if !ok {
		return Block{}, false
	}
	return d.blocks[i].clone(), true
}

// IndexOf returns the position of the block with the given key, or -1.
func (d Document) IndexOf(key string) int {
	if i, ok := d.index[key]; ok {
		return i
	}
	return -1
}

// IsEmpty reports whether the document is a single empty block.
func (d Document) IsEmpty() bool {
	return len(d.blocks) == 1 && d.blocks[0].Text == ""
}

// PlainText joins block texts with newlines.
func (d Document) PlainText() string {
	texts := make([]string, len(d.blocks))
	for i, b := range d.blocks {
		texts[i] = b.Text
	}
	return strings.Join(texts, "\n")
}

// ReplaceBlock returns a new document with the block sharing b's key
// replaced by b.
func (d Document) ReplaceBlock(b Block) (Document, error) {
	i, ok := d.index[b.Key]
	if !ok {
		return Document{}, fmt.Errorf("replace %q: %w", b.Key, ErrBlockNotFound)
	}
	if b.Type == "" {
		b.Type = Unstyled
	}
	blocks := append([]Block(nil), d.blocks...)
	blocks[i] = b.clone()
	return Document{blocks: blocks, index: d.index, entities: d.entities}, nil
}

// InsertBlockAfter returns a new document with b inserted after the block
// with key after.
func (d Document) InsertBlockAfter(after string, b Block) (Document, error) {
	i, ok := d.index[after]
	if !ok {
		return Document{}, fmt.Errorf("insert after %q: %w", after, ErrBlockNotFound)
	}
	if _, dup := d.index[b.Key]; dup {
		return Document{}, fmt.Errorf("duplicate block key %q", b.Key)
	}
	blocks := make([]Block, 0, len(d.blocks)+1)
	blocks = append(blocks, d.blocks[:i+1]...)
	blocks = append(blocks, b.clone())
	blocks = append(blocks, d.blocks[i+1:]...)
	return d.withBlocks(blocks), nil
}

// RemoveBlock returns a new document without the block with the given key.
// The last remaining block cannot be removed.
func (d Document) RemoveBlock(key string) (Document, error) {
	i, ok := d.index[key]
	if !ok {
		return Document{}, fmt.Errorf("remove %q: %w", key, ErrBlockNotFound)
	}
	if len(d.blocks) == 1 {
		return Document{}, ErrNoBlocks
	}
	blocks := make([]Block, 0, len(d.blocks)-1)
	blocks = append(blocks, d.blocks[:i]...)
	blocks = append(blocks, d.blocks[i+1:]...)
	return d.withBlocks(blocks), nil
}

func (d Document) withBlocks(blocks []Block) Document {
	index := make(map[string]int, len(blocks))
	for i, b := range blocks {
		index[b.Key] = i
	}
	return Document{blocks: blocks, index: index, entities: d.entities}
}

func (d Document) resolve(key string, offset int) (point, error) {
	i, ok := d.index[key]
	if !ok {
		return point{}, fmt.Errorf("selection key %q: %w", key, ErrBlockNotFound)
	}
	if offset < 0 || offset > d.blocks[i].Len() {
		return point{}, fmt.Errorf("offset %d out of range for block %q (len %d)", offset, key, d.blocks[i].Len())
	}
	return point{index: i, key: key, offset: offset}, nil
}

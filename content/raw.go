package content

import (
	"encoding/json"
	"fmt"
)

// RawDocument is the transportable form of a Document: the block list and
// the entity map, keyed by the decimal entity key.
type RawDocument struct {
	Blocks    []Block           `json:"blocks"`
	EntityMap map[string]Entity `json:"entityMap"`
}

// ToRaw converts d to its transportable form.
func ToRaw(d Document) RawDocument {
	raw := RawDocument{
		Blocks:    d.Blocks(),
		EntityMap: d.Entities(),
	}
	for i := range raw.Blocks {
		b := &raw.Blocks[i]
		if b.InlineStyleRanges == nil {
			b.InlineStyleRanges = []InlineStyleRange{}
		}
		if b.EntityRanges == nil {
			b.EntityRanges = []EntityRange{}
		}
		if b.Data == nil {
			b.Data = map[string]any{}
		}
	}
	if raw.EntityMap == nil {
		raw.EntityMap = map[string]Entity{}
	}
	return raw
}

// FromRaw rebuilds a Document from its transportable form. Missing keys are
// generated and a missing type defaults to unstyled; empty block lists,
// duplicate keys and ranges outside the block text are rejected.
func FromRaw(raw RawDocument) (Document, error) {
	if len(raw.Blocks) == 0 {
		return Document{}, ErrNoBlocks
	}
	// Generated keys must avoid every explicit key, including later ones.
	seen := make(map[string]bool, len(raw.Blocks))
	for _, b := range raw.Blocks {
		if b.Key != "" {
			seen[b.Key] = true
		}
	}
	blocks := make([]Block, len(raw.Blocks))
	for i, b := range raw.Blocks {
		if b.Key == "" {
			for b.Key == "" || seen[b.Key] {
				b.Key = randomKey()
			}
			seen[b.Key] = true
		}
		if b.Type == "" {
			b.Type = Unstyled
		}
		if b.Depth < 0 {
			return Document{}, fmt.Errorf("block %q: negative depth %d", b.Key, b.Depth)
		}
		n := b.Len()
		for _, r := range b.InlineStyleRanges {
			if r.Offset < 0 || r.Length <= 0 || r.Offset+r.Length > n {
				return Document{}, fmt.Errorf("block %q: style range %d+%d outside text of length %d", b.Key, r.Offset, r.Length, n)
			}
		}
		for _, r := range b.EntityRanges {
			if r.Offset < 0 || r.Length <= 0 || r.Offset+r.Length > n {
				return Document{}, fmt.Errorf("block %q: entity range %d+%d outside text of length %d", b.Key, r.Offset, r.Length, n)
			}
			if _, ok := raw.EntityMap[fmt.Sprint(r.Key)]; !ok {
				return Document{}, fmt.Errorf("block %q: entity %d not in entity map", b.Key, r.Key)
			}
		}
		if len(b.InlineStyleRanges) == 0 {
			b.InlineStyleRanges = nil
		}
		if len(b.EntityRanges) == 0 {
			b.EntityRanges = nil
		}
		if len(b.Data) == 0 {
			b.Data = nil
		}
		blocks[i] = b
	}
	entities := raw.EntityMap
	if len(entities) == 0 {
		entities = nil
	}
	return NewDocumentFromBlocks(blocks, entities)
}

// Marshal serializes d as raw JSON.
func Marshal(d Document) ([]byte, error) {
	return json.Marshal(ToRaw(d))
}

// Unmarshal parses raw JSON produced by Marshal.
func Unmarshal(data []byte) (Document, error) {
	var raw RawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("decode raw document: %w", err)
	}
	d, err := FromRaw(raw)
	if err != nil {
		return Document{}, fmt.Errorf("build document: %w", err)
	}
	return d, nil
}

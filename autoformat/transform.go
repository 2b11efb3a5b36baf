package autoformat

import (
	"fmt"

	"github.com/alimasry/blockedit/content"
)

// Apply strips the rule's prefix from the block with the given key, adds the
// rule's tag to its type and collapses the caret at the end of the remaining
// text. doc itself is left untouched.
func Apply(doc content.Document, key string, r Rule) (content.Document, content.Selection, error) {
	b, ok := doc.BlockForKey(key)
	if !ok {
		return doc, content.Selection{}, fmt.Errorf("transform %q: %w", key, content.ErrBlockNotFound)
	}
	n := r.Len()
	if b.Len() < n {
		return doc, content.Selection{}, fmt.Errorf("transform %q: text shorter than prefix %q", key, r.Prefix)
	}

	next := doc
	if n > 0 {
		// Removing the prefix as a range keeps style and entity ranges
		// aligned with the remaining text.
		prefix := content.Selection{AnchorKey: key, AnchorOffset: 0, FocusKey: key, FocusOffset: n}
		var err error
		next, _, _, err = content.ApplyEvent(doc, prefix, content.Event{Kind: content.EventDeleteForward})
		if err != nil {
			return doc, content.Selection{}, fmt.Errorf("transform %q: %w", key, err)
		}
	}
	updated, _ := next.BlockForKey(key)
	updated.Type = b.Type.With(r.Tag)

	next, err := next.ReplaceBlock(updated)
	if err != nil {
		return doc, content.Selection{}, err
	}
	return next, content.Collapsed(key, updated.Len()), nil
}

// ResetBlock retypes the block with the given key to unstyled, keeping its
// key and text.
func ResetBlock(doc content.Document, key string) (content.Document, error) {
	b, ok := doc.BlockForKey(key)
	if !ok {
		return doc, fmt.Errorf("reset %q: %w", key, content.ErrBlockNotFound)
	}
	b.Type = content.Unstyled
	return doc.ReplaceBlock(b)
}

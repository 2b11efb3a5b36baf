package content

import (
	"fmt"
	"strings"
)

// Component is a single step in an Operation.
// Exactly one field should be set.
type Component struct {
	Retain int    `json:"retain,omitempty"` // keep N chars unchanged
	Insert string `json:"insert,omitempty"` // insert text at cursor
	Delete int    `json:"delete,omitempty"` // remove N chars at cursor
}

func (c Component) IsRetain() bool { return c.Retain > 0 && c.Insert == "" && c.Delete == 0 }
func (c Component) IsInsert() bool { return c.Insert != "" }
func (c Component) IsDelete() bool { return c.Delete > 0 && c.Insert == "" }

// Operation is a sequence of components that rewrites the text of one block.
// Components are applied left-to-right, advancing a cursor through the input.
// Lengths count runes, matching selection offsets.
type Operation struct {
	Ops []Component `json:"ops"`
}

// BaseLen returns the expected input text length.
func (op Operation) BaseLen() int {
	n := 0
	for _, c := range op.Ops {
		if c.IsRetain() {
			n += c.Retain
		} else if c.IsDelete() {
			n += c.Delete
		}
	}
	return n
}

// TargetLen returns the text length after the operation is applied.
func (op Operation) TargetLen() int {
	n := 0
	for _, c := range op.Ops {
		if c.IsRetain() {
			n += c.Retain
		} else if c.IsInsert() {
			n += runeLen(c.Insert)
		}
	}
	return n
}

// IsNoop returns true if the operation makes no changes.
func (op Operation) IsNoop() bool {
	for _, c := range op.Ops {
		if c.IsInsert() || c.IsDelete() {
			return false
		}
	}
	return true
}

// Caret returns the output offset just past the last insert or delete,
// which is where a caret lands after the operation is typed.
func (op Operation) Caret() int {
	pos, caret := 0, 0
	for _, c := range op.Ops {
		switch {
		case c.IsRetain():
			pos += c.Retain
		case c.IsInsert():
			pos += runeLen(c.Insert)
			caret = pos
		case c.IsDelete():
			caret = pos
		}
	}
	return caret
}

// ApplyText applies the operation to a block's text.
func ApplyText(text string, op Operation) (string, error) {
	in := []rune(text)
	if len(in) != op.BaseLen() {
		return "", fmt.Errorf("text length %d != operation base length %d", len(in), op.BaseLen())
	}
	var b strings.Builder
	pos := 0
	for _, c := range op.Ops {
		switch {
		case c.IsRetain():
			b.WriteString(string(in[pos : pos+c.Retain]))
			pos += c.Retain
		case c.IsInsert():
			b.WriteString(c.Insert)
		case c.IsDelete():
			pos += c.Delete
		}
	}
	return b.String(), nil
}

// NewInsert creates an operation that inserts text at pos in a text of textLen.
func NewInsert(pos int, text string, textLen int) Operation {
	var ops []Component
	if pos > 0 {
		ops = append(ops, Component{Retain: pos})
	}
	ops = append(ops, Component{Insert: text})
	if remaining := textLen - pos; remaining > 0 {
		ops = append(ops, Component{Retain: remaining})
	}
	return Operation{Ops: ops}
}

// NewDelete creates an operation that deletes count chars at pos in a text of textLen.
func NewDelete(pos, count, textLen int) Operation {
	var ops []Component
	if pos > 0 {
		ops = append(ops, Component{Retain: pos})
	}
	ops = append(ops, Component{Delete: count})
	if remaining := textLen - pos - count; remaining > 0 {
		ops = append(ops, Component{Retain: remaining})
	}
	return Operation{Ops: ops}
}

// rangeEdits translates the operation into the (at, removed, inserted)
// edits needed to keep style and entity ranges aligned with the text.
func (op Operation) rangeEdits() []textEdit {
	var edits []textEdit
	pos := 0
	for _, c := range op.Ops {
		switch {
		case c.IsRetain():
			pos += c.Retain
		case c.IsInsert():
			n := runeLen(c.Insert)
			edits = append(edits, textEdit{at: pos, inserted: n})
			pos += n
		case c.IsDelete():
			edits = append(edits, textEdit{at: pos, removed: c.Delete})
		}
	}
	return edits
}

func runeLen(s string) int { return len([]rune(s)) }

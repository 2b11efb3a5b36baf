package content

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidEvent is returned when an event cannot be applied to a document.
var ErrInvalidEvent = errors.New("invalid event")

// EventKind identifies an input event.
type EventKind string

const (
	EventInsertText     EventKind = "insert-text"
	EventDeleteBackward EventKind = "delete-backward"
	EventDeleteForward  EventKind = "delete-forward"
	EventSplitBlock     EventKind = "split-block"
	EventSetText        EventKind = "set-text"
	EventApplyOperation EventKind = "apply-op"
	EventSelect         EventKind = "select"
)

// Event is one user input applied at the current selection.
type Event struct {
	Kind EventKind `json:"kind"`
	// Text is the typed text for insert-text and the new block text for set-text.
	Text string `json:"text,omitempty"`
	// Op rewrites the anchor block's text for apply-op.
	Op *Operation `json:"op,omitempty"`
	// Selection is the new selection for select, and an optional caret
	// override for set-text and apply-op.
	Selection *Selection `json:"selection,omitempty"`
}

// ChangeType names the kind of content change an event produced.
type ChangeType string

const (
	ChangeNone         ChangeType = ""
	InsertCharacters   ChangeType = "insert-characters"
	InsertFragment     ChangeType = "insert-fragment"
	BackspaceCharacter ChangeType = "backspace-character"
	DeleteCharacter    ChangeType = "delete-character"
	RemoveRange        ChangeType = "remove-range"
	SplitBlock         ChangeType = "split-block"
	ChangeBlockType    ChangeType = "change-block-type"
	ApplyOperation     ChangeType = "apply-operation"
)

// ApplyEvent performs the raw edit described by ev. It never looks at
// block types; autoformatting runs on its result.
func ApplyEvent(d Document, sel Selection, ev Event) (Document, Selection, ChangeType, error) {
	if _, _, err := sel.bounds(d); err != nil {
		return d, sel, ChangeNone, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	var (
		nd     Document
		nsel   Selection
		change ChangeType
		err    error
	)
	switch ev.Kind {
	case EventSelect:
		if ev.Selection == nil {
			return d, sel, ChangeNone, fmt.Errorf("%w: select without selection", ErrInvalidEvent)
		}
		if _, _, err := ev.Selection.bounds(d); err != nil {
			return d, sel, ChangeNone, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
		}
		return d, *ev.Selection, ChangeNone, nil
	case EventInsertText:
		nd, nsel, change, err = insertText(d, sel, ev.Text)
	case EventDeleteBackward:
		nd, nsel, change, err = deleteBackward(d, sel)
	case EventDeleteForward:
		nd, nsel, change, err = deleteForward(d, sel)
	case EventSplitBlock:
		nd, nsel, err = splitBlock(d, sel)
		change = SplitBlock
	case EventSetText:
		nd, nsel, change, err = setText(d, sel, ev.Text, ev.Selection)
	case EventApplyOperation:
		nd, nsel, change, err = applyOperation(d, sel, ev.Op, ev.Selection)
	default:
		return d, sel, ChangeNone, fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, ev.Kind)
	}
	if err != nil {
		return d, sel, ChangeNone, fmt.Errorf("%w: %s: %v", ErrInvalidEvent, ev.Kind, err)
	}
	return nd, nsel, change, nil
}

// removeSelection deletes the selected range and returns the collapsed
// point where it started.
func removeSelection(d Document, sel Selection) (Document, point, error) {
	start, end, err := sel.bounds(d)
	if err != nil {
		return d, point{}, err
	}
	if sel.IsCollapsed() {
		return d, start, nil
	}
	if start.index == end.index {
		b := d.blocks[start.index]
		text := []rune(b.Text)
		nt := string(text[:start.offset]) + string(text[end.offset:])
		nd, err := d.ReplaceBlock(b.withText(nt, textEdit{at: start.offset, removed: end.offset - start.offset}))
		return nd, start, err
	}
	lower, _ := d.blocks[start.index].splitAt(start.offset, "")
	_, upper := d.blocks[end.index].splitAt(end.offset, "")
	blocks := make([]Block, 0, len(d.blocks)-(end.index-start.index))
	blocks = append(blocks, d.blocks[:start.index]...)
	blocks = append(blocks, lower.join(upper))
	blocks = append(blocks, d.blocks[end.index+1:]...)
	return d.withBlocks(blocks), start, nil
}

func insertText(d Document, sel Selection, text string) (Document, Selection, ChangeType, error) {
	if text == "" {
		return d, sel, ChangeNone, errors.New("empty text")
	}
	d, p, err := removeSelection(d, sel)
	if err != nil {
		return d, sel, ChangeNone, err
	}
	lines := strings.Split(text, "\n")
	key, offset := p.key, p.offset
	for i, line := range lines {
		if i > 0 {
			var s Selection
			if d, s, err = splitBlock(d, Collapsed(key, offset)); err != nil {
				return d, sel, ChangeNone, err
			}
			key, offset = s.AnchorKey, s.AnchorOffset
		}
		if line == "" {
			continue
		}
		b, _ := d.BlockForKey(key)
		rs := []rune(b.Text)
		n := runeLen(line)
		nt := string(rs[:offset]) + line + string(rs[offset:])
		if d, err = d.ReplaceBlock(b.withText(nt, textEdit{at: offset, inserted: n})); err != nil {
			return d, sel, ChangeNone, err
		}
		offset += n
	}
	if len(lines) > 1 {
		return d, Collapsed(key, offset), InsertFragment, nil
	}
	return d, Collapsed(key, offset), InsertCharacters, nil
}

func deleteBackward(d Document, sel Selection) (Document, Selection, ChangeType, error) {
	if !sel.IsCollapsed() {
		nd, p, err := removeSelection(d, sel)
		return nd, Collapsed(p.key, p.offset), RemoveRange, err
	}
	p, _ := d.resolve(sel.AnchorKey, sel.AnchorOffset)
	b := d.blocks[p.index]
	if p.offset > 0 {
		rs := []rune(b.Text)
		nt := string(rs[:p.offset-1]) + string(rs[p.offset:])
		nd, err := d.ReplaceBlock(b.withText(nt, textEdit{at: p.offset - 1, removed: 1}))
		return nd, Collapsed(b.Key, p.offset-1), BackspaceCharacter, err
	}
	if p.index == 0 {
		return d, sel, ChangeNone, nil
	}
	prev := d.blocks[p.index-1]
	nd, err := d.ReplaceBlock(prev.join(b))
	if err != nil {
		return d, sel, ChangeNone, err
	}
	if nd, err = nd.RemoveBlock(b.Key); err != nil {
		return d, sel, ChangeNone, err
	}
	return nd, Collapsed(prev.Key, prev.Len()), BackspaceCharacter, nil
}

func deleteForward(d Document, sel Selection) (Document, Selection, ChangeType, error) {
	if !sel.IsCollapsed() {
		nd, p, err := removeSelection(d, sel)
		return nd, Collapsed(p.key, p.offset), RemoveRange, err
	}
	p, _ := d.resolve(sel.AnchorKey, sel.AnchorOffset)
	b := d.blocks[p.index]
	if p.offset < b.Len() {
		rs := []rune(b.Text)
		nt := string(rs[:p.offset]) + string(rs[p.offset+1:])
		nd, err := d.ReplaceBlock(b.withText(nt, textEdit{at: p.offset, removed: 1}))
		return nd, sel, DeleteCharacter, err
	}
	if p.index == len(d.blocks)-1 {
		return d, sel, ChangeNone, nil
	}
	next := d.blocks[p.index+1]
	nd, err := d.ReplaceBlock(b.join(next))
	if err != nil {
		return d, sel, ChangeNone, err
	}
	if nd, err = nd.RemoveBlock(next.Key); err != nil {
		return d, sel, ChangeNone, err
	}
	return nd, sel, DeleteCharacter, nil
}

func splitBlock(d Document, sel Selection) (Document, Selection, error) {
	d, p, err := removeSelection(d, sel)
	if err != nil {
		return d, sel, err
	}
	lower, upper := d.blocks[p.index].splitAt(p.offset, d.newKey())
	if d, err = d.ReplaceBlock(lower); err != nil {
		return d, sel, err
	}
	if d, err = d.InsertBlockAfter(lower.Key, upper); err != nil {
		return d, sel, err
	}
	return d, Collapsed(upper.Key, 0), nil
}

func setText(d Document, sel Selection, text string, caret *Selection) (Document, Selection, ChangeType, error) {
	b, _ := d.BlockForKey(sel.AnchorKey)
	if strings.Contains(text, "\n") {
		return d, sel, ChangeNone, errors.New("set-text cannot contain newlines")
	}
	if text == b.Text {
		return d, sel, ChangeNone, nil
	}
	old, nw := []rune(b.Text), []rune(text)
	pre := 0
	for pre < len(old) && pre < len(nw) && old[pre] == nw[pre] {
		pre++
	}
	suf := 0
	for suf < len(old)-pre && suf < len(nw)-pre && old[len(old)-1-suf] == nw[len(nw)-1-suf] {
		suf++
	}
	edit := textEdit{at: pre, removed: len(old) - pre - suf, inserted: len(nw) - pre - suf}
	nd, err := d.ReplaceBlock(b.withText(text, edit))
	if err != nil {
		return d, sel, ChangeNone, err
	}
	nsel := Collapsed(b.Key, pre+edit.inserted)
	if caret != nil {
		if _, _, err := caret.bounds(nd); err != nil {
			return d, sel, ChangeNone, err
		}
		nsel = *caret
	}
	change := InsertCharacters
	if len(nw) < len(old) {
		change = BackspaceCharacter
	}
	return nd, nsel, change, nil
}

func applyOperation(d Document, sel Selection, op *Operation, caret *Selection) (Document, Selection, ChangeType, error) {
	if op == nil {
		return d, sel, ChangeNone, errors.New("missing operation")
	}
	b, _ := d.BlockForKey(sel.AnchorKey)
	text, err := ApplyText(b.Text, *op)
	if err != nil {
		return d, sel, ChangeNone, err
	}
	if op.IsNoop() {
		return d, sel, ChangeNone, nil
	}
	nd, err := d.ReplaceBlock(b.withText(text, op.rangeEdits()...))
	if err != nil {
		return d, sel, ChangeNone, err
	}
	nsel := Collapsed(b.Key, op.Caret())
	if caret != nil {
		if _, _, err := caret.bounds(nd); err != nil {
			return d, sel, ChangeNone, err
		}
		nsel = *caret
	}
	return nd, nsel, ApplyOperation, nil
}

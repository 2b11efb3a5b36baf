package editor

import (
	"errors"

	"github.com/alimasry/blockedit/content"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

const defaultHistoryLimit = 1000

// History is a caller-held stack of prior states.
type History struct {
	undoStack []State
	redoStack []State

	lastChange content.ChangeType
	maxEntries int
}

// NewHistory creates a history keeping at most maxEntries undo states.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = defaultHistoryLimit
	}
	return &History{maxEntries: maxEntries}
}

// Push records prev as the state to return to when undoing a change of the
// given type. Runs of typing or deleting collapse into one undo step.
// Clears the redo stack.
func (h *History) Push(prev State, change content.ChangeType) {
	h.redoStack = nil
	if change == h.lastChange && coalesces(change) && len(h.undoStack) > 0 {
		return
	}
	h.lastChange = change
	h.undoStack = append(h.undoStack, prev)
	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo returns the state before the last change and remembers current for Redo.
func (h *History) Undo(current State) (State, error) {
	if len(h.undoStack) == 0 {
		return current, ErrNothingToUndo
	}
	prev := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, current)
	h.lastChange = content.ChangeNone
	return prev, nil
}

// Redo reverses the last Undo.
func (h *History) Redo(current State) (State, error) {
	if len(h.redoStack) == 0 {
		return current, ErrNothingToRedo
	}
	next := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, current)
	h.lastChange = content.ChangeNone
	return next, nil
}

// Clear drops all undo and redo states.
func (h *History) Clear() {
	h.undoStack, h.redoStack = nil, nil
	h.lastChange = content.ChangeNone
}

func (h *History) CanUndo() bool  { return len(h.undoStack) > 0 }
func (h *History) CanRedo() bool  { return len(h.redoStack) > 0 }
func (h *History) UndoCount() int { return len(h.undoStack) }
func (h *History) RedoCount() int { return len(h.redoStack) }

func coalesces(change content.ChangeType) bool {
	switch change {
	case content.InsertCharacters, content.BackspaceCharacter, content.DeleteCharacter:
		return true
	}
	return false
}

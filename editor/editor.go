package editor

import (
	"github.com/alimasry/blockedit/autoformat"
	"github.com/alimasry/blockedit/content"
)

// PlaceholderMode decides when the placeholder hint is shown.
type PlaceholderMode string

const (
	// PlaceholderBlur shows the hint only while the editor is unfocused
	// and empty.
	PlaceholderBlur PlaceholderMode = "blur"
	// PlaceholderAlways shows the hint whenever the editor is empty.
	PlaceholderAlways PlaceholderMode = "always"
)

// Options configure an Editor.
type Options struct {
	Rules           []autoformat.Rule
	HistoryLimit    int
	Placeholder     string
	PlaceholderMode PlaceholderMode
}

// Editor owns the current state, its history and the focus flag. It is not
// safe for concurrent use; callers serialize events.
type Editor struct {
	state    State
	history  *History
	detector *autoformat.Detector
	focused  bool

	placeholder string
	mode        PlaceholderMode
}

// New creates an editor showing doc.
func New(doc content.Document, opts Options) *Editor {
	mode := opts.PlaceholderMode
	if mode == "" {
		mode = PlaceholderBlur
	}
	return &Editor{
		state:       NewState(doc),
		history:     NewHistory(opts.HistoryLimit),
		detector:    autoformat.NewDetector(opts.Rules...),
		placeholder: opts.Placeholder,
		mode:        mode,
	}
}

// State returns the current state.
func (e *Editor) State() State { return e.state }

// Document returns the current document.
func (e *Editor) Document() content.Document { return e.state.Document }

// History returns the editor's undo history.
func (e *Editor) History() *History { return e.history }

// Handle applies one input event. On error the state is unchanged.
func (e *Editor) Handle(ev content.Event) (autoformat.Action, error) {
	res, err := Step(e.detector, e.state, ev)
	if err != nil {
		return autoformat.Action{}, err
	}
	if res.Change != content.ChangeNone {
		e.history.Push(e.state, res.Change)
	}
	if res.Action.Kind != autoformat.Passthrough {
		e.history.Push(res.Edited, content.ChangeBlockType)
	}
	e.state = res.State
	return res.Action, nil
}

// Undo restores the state before the last change.
func (e *Editor) Undo() error {
	prev, err := e.history.Undo(e.state)
	if err != nil {
		return err
	}
	e.state = prev
	return nil
}

// Redo reapplies the last undone change.
func (e *Editor) Redo() error {
	next, err := e.history.Redo(e.state)
	if err != nil {
		return err
	}
	e.state = next
	return nil
}

// Reset replaces the document and forgets the history.
func (e *Editor) Reset(doc content.Document) {
	e.state = NewState(doc)
	e.history.Clear()
}

func (e *Editor) Focus()        { e.focused = true }
func (e *Editor) Blur()         { e.focused = false }
func (e *Editor) Focused() bool { return e.focused }

// Placeholder returns the hint to show, or "" when none should be shown.
func (e *Editor) Placeholder() string {
	if !e.state.Document.IsEmpty() {
		return ""
	}
	if e.mode == PlaceholderBlur && e.focused {
		return ""
	}
	return e.placeholder
}

// Package tui is a terminal front end for the block editor.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alimasry/blockedit/content"
	"github.com/alimasry/blockedit/editor"
	"github.com/alimasry/blockedit/persist"
)

// Options configures the terminal editor.
type Options struct {
	Context       context.Context
	Editor        *editor.Editor
	Bridge        *persist.Bridge
	StatusTimeout time.Duration
	KeyMap        KeyMap
}

// Model is the Bubble Tea model wrapping an Editor.
type Model struct {
	ctx           context.Context
	editor        *editor.Editor
	bridge        *persist.Bridge
	keys          KeyMap
	status        *editor.Status
	statusTimeout time.Duration
	width         int
}

type saveResultMsg struct{ err error }

type clearStatusMsg struct{ token uint64 }

// New creates a focused model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := opts.StatusTimeout
	if timeout <= 0 {
		timeout = editor.DefaultStatusTimeout
	}
	keys := opts.KeyMap
	if len(keys.Quit.Keys()) == 0 {
		keys = DefaultKeyMap()
	}
	opts.Editor.Focus()
	return Model{
		ctx:           ctx,
		editor:        opts.Editor,
		bridge:        opts.Bridge,
		keys:          keys,
		status:        &editor.Status{},
		statusTimeout: timeout,
	}
}

func (m Model) Init() tea.Cmd { return nil }

// Status returns the current status line text.
func (m Model) Status() string { return m.status.Text() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case saveResultMsg:
		if msg.err != nil {
			return m, m.showStatus("Save failed: " + msg.err.Error())
		}
		return m, m.showStatus(editor.SavedMessage)
	case clearStatusMsg:
		m.status.Clear(msg.token)
		return m, nil
	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m Model) showStatus(text string) tea.Cmd {
	token := m.status.Set(text)
	return tea.Tick(m.statusTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{token: token}
	})
}

func (m Model) saveCmd() tea.Cmd {
	doc := m.editor.Document()
	bridge, ctx := m.bridge, m.ctx
	return func() tea.Msg {
		return saveResultMsg{err: bridge.Save(ctx, doc)}
	}
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	km := m.keys

	switch {
	case key.Matches(msg, km.Quit):
		return m, tea.Quit
	case key.Matches(msg, km.Save):
		return m, m.saveCmd()
	case key.Matches(msg, km.ToggleFocus):
		if m.editor.Focused() {
			m.editor.Blur()
		} else {
			m.editor.Focus()
		}
		return m, nil
	}

	if !m.editor.Focused() {
		return m, nil
	}

	switch {
	case key.Matches(msg, km.Undo):
		return m, m.historyStatus(m.editor.Undo())
	case key.Matches(msg, km.Redo):
		return m, m.historyStatus(m.editor.Redo())
	case key.Matches(msg, km.Left):
		return m.move(moveLeft)
	case key.Matches(msg, km.Right):
		return m.move(moveRight)
	case key.Matches(msg, km.Up):
		return m.move(moveUp)
	case key.Matches(msg, km.Down):
		return m.move(moveDown)
	case key.Matches(msg, km.Home):
		return m.move(moveHome)
	case key.Matches(msg, km.End):
		return m.move(moveEnd)
	case key.Matches(msg, km.Backspace):
		return m.handle(content.Event{Kind: content.EventDeleteBackward})
	case key.Matches(msg, km.Delete):
		return m.handle(content.Event{Kind: content.EventDeleteForward})
	case key.Matches(msg, km.Enter):
		return m.handle(content.Event{Kind: content.EventSplitBlock})
	}

	switch msg.Type {
	case tea.KeyRunes, tea.KeySpace:
		text := string(msg.Runes)
		if text == "" && msg.Type == tea.KeySpace {
			text = " "
		}
		if text == "" {
			return m, nil
		}
		return m.handle(content.Event{Kind: content.EventInsertText, Text: text})
	}
	return m, nil
}

// historyStatus reports undo/redo failures other than an empty history.
func (m Model) historyStatus(err error) tea.Cmd {
	if err == nil || errors.Is(err, editor.ErrNothingToUndo) || errors.Is(err, editor.ErrNothingToRedo) {
		return nil
	}
	return m.showStatus(err.Error())
}

func (m Model) handle(ev content.Event) (tea.Model, tea.Cmd) {
	if _, err := m.editor.Handle(ev); err != nil {
		return m, m.showStatus(err.Error())
	}
	return m, nil
}

type movement int

const (
	moveLeft movement = iota
	moveRight
	moveUp
	moveDown
	moveHome
	moveEnd
)

// move collapses the selection at the caret's new position.
func (m Model) move(mv movement) (tea.Model, tea.Cmd) {
	st := m.editor.State()
	doc := st.Document
	idx := doc.IndexOf(st.Selection.FocusKey)
	if idx < 0 {
		idx = 0
	}
	b := doc.BlockAt(idx)
	offset := min(st.Selection.FocusOffset, b.Len())

	switch mv {
	case moveLeft:
		if offset > 0 {
			offset--
		} else if idx > 0 {
			idx--
			offset = doc.BlockAt(idx).Len()
		}
	case moveRight:
		if offset < b.Len() {
			offset++
		} else if idx < doc.Len()-1 {
			idx++
			offset = 0
		}
	case moveUp:
		if idx > 0 {
			idx--
		}
	case moveDown:
		if idx < doc.Len()-1 {
			idx++
		}
	case moveHome:
		offset = 0
	case moveEnd:
		offset = b.Len()
	}

	target := doc.BlockAt(idx)
	sel := content.Collapsed(target.Key, min(offset, target.Len()))
	return m.handle(content.Event{Kind: content.EventSelect, Selection: &sel})
}

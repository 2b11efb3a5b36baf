package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alimasry/blockedit/content"
)

var (
	tagStyles = map[string]lipgloss.Style{
		content.HeaderOne: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		content.Bold:      lipgloss.NewStyle().Bold(true),
		content.Red:       lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		content.Underline: lipgloss.NewStyle().Underline(true),
	}

	caretStyle       = lipgloss.NewStyle().Reverse(true)
	placeholderStyle = lipgloss.NewStyle().Faint(true)
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	helpStyle        = lipgloss.NewStyle().Faint(true)
	blurredStyle     = lipgloss.NewStyle().Faint(true)
)

// blockStyle combines the styles of t's tags. Unknown tags add nothing.
func blockStyle(t content.Type) lipgloss.Style {
	s := lipgloss.NewStyle()
	for _, tag := range t.Tags() {
		if ts, ok := tagStyles[tag]; ok {
			s = s.Inherit(ts)
		}
	}
	return s
}

func (m Model) View() string {
	var b strings.Builder

	st := m.editor.State()
	focused := m.editor.Focused()

	if hint := m.editor.Placeholder(); hint != "" {
		if focused {
			b.WriteString(caretStyle.Render(" "))
		}
		b.WriteString(placeholderStyle.Render(hint))
		b.WriteString("\n")
	} else {
		for _, blk := range st.Document.Blocks() {
			caret := -1
			if focused && blk.Key == st.Selection.FocusKey {
				caret = st.Selection.FocusOffset
			}
			line := renderBlock(blk, caret)
			if !focused {
				line = blurredStyle.Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
			if blk.Type.Has(content.HeaderOne) {
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\n")
	if text := m.status.Text(); text != "" {
		b.WriteString(statusStyle.Render(text))
	}
	b.WriteString("\n")
	b.WriteString(m.helpView())
	return b.String()
}

// renderBlock styles the block text and draws the caret at offset when
// offset is not negative.
func renderBlock(blk content.Block, offset int) string {
	s := blockStyle(blk.Type)
	runes := []rune(blk.Text)
	if offset < 0 {
		return s.Render(blk.Text)
	}
	offset = min(offset, len(runes))

	var b strings.Builder
	if offset > 0 {
		b.WriteString(s.Render(string(runes[:offset])))
	}
	under := " "
	if offset < len(runes) {
		under = string(runes[offset])
	}
	b.WriteString(caretStyle.Inherit(s).Render(under))
	if offset+1 < len(runes) {
		b.WriteString(s.Render(string(runes[offset+1:])))
	}
	return b.String()
}

func (m Model) helpView() string {
	var parts []string
	for _, kb := range m.keys.helpBindings() {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return helpStyle.Render(strings.Join(parts, " • "))
}

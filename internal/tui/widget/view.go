package widget

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/f3rmion/tagcalc/internal/calc"
	"github.com/f3rmion/tagcalc/internal/tui/bignum"
)

var (
	chipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f1faee")).
			Background(lipgloss.Color("#3d5a80")).
			PaddingLeft(1)

	chipFocusStyle = chipStyle.
			Foreground(lipgloss.Color("#1a1a2e")).
			Background(lipgloss.Color("#ffe66d")).
			Bold(true)

	chipCloseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff6b6b")).
			Background(lipgloss.Color("#3d5a80")).
			Padding(0, 1)

	symbolStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ecdc4")).
			Bold(true)

	inputTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffe66d"))

	inputCursorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#4ecdc4"))

	itemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f1faee"))

	itemActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffe66d")).
			Background(lipgloss.Color("#2d3436"))

	itemValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a8dadc"))

	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true)

	resultLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#4ecdc4")).
				Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a8e6cf")).
			Bold(true)

	bigResultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a8e6cf")).
			MarginTop(1)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffe66d")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff6b6b")).
			Bold(true)

	copiedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a8e6cf")).
			Bold(true)
)

const (
	bigResultRows      = 4
	bigResultMinHeight = 16
)

// chipSpan locates a chip's remove control on the tag line.
type chipSpan struct {
	index      int
	closeStart int
	closeEnd   int
}

// renderTags draws the tag line: chips, symbols and the text input, one
// space apart.
func (m Model) renderTags() (string, []chipSpan) {
	var (
		parts []string
		spans []chipSpan
		col   int
	)

	for i, it := range m.store.Items() {
		if len(parts) > 0 {
			col++
		}

		var part string
		if it.Removable() {
			style := chipStyle
			if i == m.chipFocus {
				style = chipFocusStyle
			}
			label := style.Render(it.Name)
			closeBtn := chipCloseStyle.Render("×")
			start := col + lipgloss.Width(label)
			spans = append(spans, chipSpan{index: i, closeStart: start, closeEnd: start + lipgloss.Width(closeBtn)})
			part = label + closeBtn
		} else {
			part = symbolStyle.Render(it.Name)
		}

		parts = append(parts, part)
		col += lipgloss.Width(part)
	}

	parts = append(parts, m.input.View())
	return strings.Join(parts, " "), spans
}

func (m Model) renderDropdown() string {
	var lines []string

	if m.lookupErr != nil {
		lines = append(lines, errorStyle.Render(m.truncate("Lookup failed: "+m.lookupErr.Error())))
	}

	for i, it := range m.suggestions {
		prefix, name := "  ", itemStyle.Render(it.Name)
		if i == m.highlight {
			prefix, name = itemActiveStyle.Render("> "), itemActiveStyle.Render(it.Name)
		}
		lines = append(lines, fmt.Sprintf("%s%s %s %s", prefix, name,
			itemValueStyle.Render(calc.FormatNumber(it.Value)),
			categoryStyle.Render(it.Category)))
	}

	switch {
	case m.loading:
		lines = append(lines, m.spinner.View()+loadingStyle.Render(" searching..."))
	case len(m.suggestions) == 0 && m.lookupErr == nil:
		lines = append(lines, mutedStyle.Render("  no matches"))
	}

	return strings.Join(lines, "\n")
}

func (m Model) truncate(s string) string {
	if m.width <= 0 {
		return s
	}
	return runewidth.Truncate(s, m.width, "…")
}

// View renders the widget.
func (m Model) View() string {
	var b strings.Builder

	line, _ := m.renderTags()
	b.WriteString(line)

	if m.open {
		b.WriteString("\n")
		b.WriteString(m.renderDropdown())
	}

	text := calc.Format(m.result.Value)
	b.WriteString("\n\n")
	b.WriteString(resultLabelStyle.Render("="))
	b.WriteString(" ")
	b.WriteString(resultStyle.Render(text))
	if m.copied {
		b.WriteString("  ")
		b.WriteString(copiedStyle.Render("copied!"))
	}

	if m.big && text != "" && m.height >= bigResultMinHeight {
		art := bignum.GetCached(text, bigResultRows)
		if art != "" && (m.width <= 0 || lipgloss.Width(art) <= m.width) {
			b.WriteString("\n")
			b.WriteString(bigResultStyle.Render(art))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render(m.help()))

	return b.String()
}

func (m Model) help() string {
	switch {
	case m.chipFocus >= 0:
		return "←/→: move • backspace/x: remove • esc: back to input"
	case m.open:
		return "↑/↓: highlight • enter: add tag • esc: close"
	case m.store.Len() == 0:
		return "Type to search tags, or an operator: + - * / % ^ ( )"
	default:
		return "←: select tags • ctrl+u: clear input • ctrl+r: clear tags • ctrl+y: copy result"
	}
}

func (m Model) updateMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	x, y, w, h := m.Bounds()
	if msg.X < x || msg.X >= x+w || msg.Y < y || msg.Y >= y+h {
		m.closeDropdown()
		return m, nil
	}

	var cmd tea.Cmd
	if !m.focused {
		cmd = m.Focus()
	}

	col, row := msg.X-x, msg.Y-y
	if row == 0 {
		_, spans := m.renderTags()
		for _, s := range spans {
			if col >= s.closeStart && col < s.closeEnd {
				m.chipFocus = -1
				m.removeTag(s.index)
				break
			}
		}
		return m, cmd
	}

	if m.open {
		i := row - 1
		if m.lookupErr != nil {
			i--
		}
		if i >= 0 && i < len(m.suggestions) {
			m.selectSuggestion(i)
		}
	}
	return m, cmd
}

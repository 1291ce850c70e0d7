// Package widget implements the tag input: a text field that suggests tags as
// you type, turns picked suggestions and typed operators into tags, and shows
// the value of the resulting expression.
package widget

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-logr/logr"
	"github.com/mattn/go-runewidth"

	"github.com/f3rmion/tagcalc/internal/calc"
	"github.com/f3rmion/tagcalc/internal/clipboard"
	"github.com/f3rmion/tagcalc/internal/logger"
	"github.com/f3rmion/tagcalc/internal/suggest"
	"github.com/f3rmion/tagcalc/internal/tag"
)

// Message types
type lookupResultMsg struct {
	gen   uint64
	query string
	items []tag.Item
	err   error
}

type debounceMsg struct {
	gen uint64
}

type clearCopiedMsg struct{}

func clearCopiedAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearCopiedMsg{}
	})
}

// Options configures a Model.
type Options struct {
	Source         suggest.Source
	Debounce       time.Duration
	MaxSuggestions int  // 0 shows every suggestion
	BigResult      bool // render the result in block digits when there is room

	// Context is the parent of every lookup. It carries the logger.
	Context context.Context
}

// Model is the tag input widget.
type Model struct {
	input   textinput.Model
	spinner spinner.Model

	ctx      context.Context
	source   suggest.Source
	tracker  *suggest.Tracker
	store    *tag.Store
	debounce time.Duration
	limit    int
	big      bool
	log      logr.Logger

	// Dropdown
	open        bool
	suggestions []tag.Item
	highlight   int
	loading     bool
	lookupErr   error

	// Index into the store of the focused chip, -1 while typing.
	chipFocus int
	focused   bool

	result calc.Result
	copied bool

	// Screen position of the widget's top-left cell, set by the parent.
	originX int
	originY int
	width   int
	height  int
}

// New creates a focused, empty widget.
func New(opts Options) Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = ""
	ti.Width = 1
	ti.Focus()
	ti.TextStyle = inputTextStyle
	ti.Cursor.Style = inputCursorStyle

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = loadingStyle

	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	m := Model{
		input:     ti,
		spinner:   sp,
		ctx:       ctx,
		source:    opts.Source,
		tracker:   &suggest.Tracker{},
		store:     tag.NewStore(),
		debounce:  opts.Debounce,
		limit:     opts.MaxSuggestions,
		big:       opts.BigResult,
		log:       logger.FromContext(ctx).WithName("widget"),
		chipFocus: -1,
		focused:   true,
	}
	m.recompute()
	return m
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// SetOrigin records where the widget is drawn on screen.
func (m *Model) SetOrigin(x, y int) {
	m.originX = x
	m.originY = y
}

// SetSize updates the space available to the widget.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Focus gives the widget keyboard focus.
func (m *Model) Focus() tea.Cmd {
	m.focused = true
	return m.input.Focus()
}

// Blur removes keyboard focus and closes the dropdown.
func (m *Model) Blur() {
	m.focused = false
	m.chipFocus = -1
	m.input.Blur()
	m.closeDropdown()
}

// Focused reports whether the widget has keyboard focus.
func (m Model) Focused() bool { return m.focused }

// Open reports whether the dropdown is showing.
func (m Model) Open() bool { return m.open }

// ChipFocused reports whether a chip rather than the text input has focus.
func (m Model) ChipFocused() bool { return m.chipFocus >= 0 }

// Tags returns the current tag sequence.
func (m Model) Tags() []tag.Item { return m.store.Items() }

// Result returns the evaluation of the current tags.
func (m Model) Result() calc.Result { return m.result }

// Value returns the text being typed.
func (m Model) Value() string { return m.input.Value() }

// Suggestions returns the suggestions currently held by the dropdown.
func (m Model) Suggestions() []tag.Item { return m.suggestions }

// Loading reports whether the current lookup is still in flight.
func (m Model) Loading() bool { return m.loading }

// LookupErr returns the error of the last lookup, if it failed.
func (m Model) LookupErr() error { return m.lookupErr }

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		if m.chipFocus >= 0 {
			if handled := m.updateChipFocus(msg); handled {
				return m, nil
			}
		}
		return m.updateKey(msg)

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case debounceMsg:
		ctx, ok := m.tracker.Attach(m.ctx, msg.gen)
		if !ok {
			return m, nil
		}
		return m, m.lookup(ctx, msg.gen, m.tracker.Query())

	case lookupResultMsg:
		m.applyLookup(msg)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case clearCopiedMsg:
		m.copied = false
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "up":
		if m.open && len(m.suggestions) > 0 {
			m.highlight--
			if m.highlight < 0 {
				m.highlight = len(m.suggestions) - 1
			}
		}
		return m, nil
	case "down":
		if m.open && len(m.suggestions) > 0 {
			m.highlight = (m.highlight + 1) % len(m.suggestions)
		}
		return m, nil
	case "enter":
		if m.open && m.highlight < len(m.suggestions) {
			m.selectSuggestion(m.highlight)
		}
		return m, nil
	case "esc":
		m.closeDropdown()
		return m, nil
	case "left":
		if m.input.Value() == "" {
			if i := m.lastRemovable(); i >= 0 {
				m.chipFocus = i
				m.closeDropdown()
				return m, nil
			}
		}
	case "ctrl+u":
		m.resetInput()
		return m, nil
	case "ctrl+r":
		m.store.Reset()
		m.resetInput()
		m.recompute()
		return m, nil
	case "ctrl+y":
		cmd := m.copyResult()
		return m, cmd
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}
	changed := m.inputChanged()
	return m, tea.Batch(cmd, changed)
}

// updateChipFocus handles keys while a chip is focused. It reports false
// for keys that should go back to the text input.
func (m *Model) updateChipFocus(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "left":
		if i := m.prevRemovable(m.chipFocus); i >= 0 {
			m.chipFocus = i
		}
		return true
	case "right":
		m.chipFocus = m.nextRemovable(m.chipFocus)
		return true
	case "backspace", "delete", "x":
		m.removeTag(m.chipFocus)
		if m.chipFocus >= m.store.Len() || !m.removableAt(m.chipFocus) {
			m.chipFocus = m.prevRemovable(m.chipFocus)
		}
		return true
	case "esc", "enter":
		m.chipFocus = -1
		return true
	}
	m.chipFocus = -1
	return false
}

func (m *Model) inputChanged() tea.Cmd {
	value := m.input.Value()
	m.resizeInput()

	if tag.IsSymbol(value) {
		m.store.Append(tag.Symbol(value))
		m.log.V(1).Info("symbol inserted", "symbol", value)
		m.resetInput()
		m.recompute()
		return nil
	}

	wasLoading := m.loading
	m.open = true
	m.loading = true
	m.lookupErr = nil

	var cmd tea.Cmd
	if m.debounce > 0 {
		gen := m.tracker.Next(value)
		cmd = tea.Tick(m.debounce, func(time.Time) tea.Msg {
			return debounceMsg{gen: gen}
		})
	} else {
		ctx, gen := m.tracker.Begin(m.ctx, value)
		cmd = m.lookup(ctx, gen, value)
	}

	if !wasLoading {
		cmd = tea.Batch(cmd, m.spinner.Tick)
	}
	return cmd
}

func (m Model) lookup(ctx context.Context, gen uint64, query string) tea.Cmd {
	src := m.source
	return func() tea.Msg {
		if src == nil {
			return lookupResultMsg{gen: gen, query: query}
		}
		items, err := src.Lookup(ctx, query)
		return lookupResultMsg{gen: gen, query: query, items: items, err: err}
	}
}

func (m *Model) applyLookup(msg lookupResultMsg) {
	if !m.tracker.Current(msg.gen) {
		m.log.V(1).Info("discarding stale suggestions", "query", msg.query, "gen", msg.gen)
		return
	}
	m.tracker.Done(msg.gen)
	m.loading = false

	if msg.err != nil {
		m.suggestions = nil
		if errors.Is(msg.err, context.Canceled) {
			return
		}
		m.log.Error(msg.err, "lookup failed", "query", msg.query)
		m.lookupErr = msg.err
		return
	}

	items := msg.items
	if m.limit > 0 && len(items) > m.limit {
		items = items[:m.limit]
	}
	m.suggestions = items
	m.highlight = 0
	m.lookupErr = nil
	m.log.V(1).Info("suggestions", "query", msg.query, "count", len(items))
}

func (m *Model) selectSuggestion(i int) {
	if i < 0 || i >= len(m.suggestions) {
		return
	}
	item := m.suggestions[i]
	m.store.Append(item)
	m.log.V(1).Info("tag selected", "name", item.Name, "value", item.Value)
	m.resetInput()
	m.recompute()
}

func (m *Model) removeTag(i int) {
	if !m.removableAt(i) {
		return
	}
	if m.store.RemoveAt(i) {
		m.recompute()
	}
}

func (m *Model) closeDropdown() {
	m.open = false
	m.loading = false
	m.highlight = 0
	m.tracker.Cancel()
}

// resetInput empties the text field and closes the dropdown.
func (m *Model) resetInput() {
	m.input.Reset()
	m.resizeInput()
	m.closeDropdown()
	m.suggestions = nil
	m.lookupErr = nil
}

// resizeInput grows the field with its content, one cell minimum.
func (m *Model) resizeInput() {
	m.input.Width = max(1, runewidth.StringWidth(m.input.Value())+1)
}

func (m *Model) recompute() {
	m.result = calc.Run(m.store.Items())
	if m.result.Failed() {
		m.log.V(1).Info("expression failed, showing 0", "expression", m.result.Built, "err", m.result.Err.Error())
	} else if m.result.Recovered {
		m.log.V(1).Info("expression recovered", "expression", m.result.Built, "retry", m.result.Expression)
	}
}

func (m *Model) copyResult() tea.Cmd {
	text := calc.Format(m.result.Value)
	if text == "" {
		return nil
	}
	if err := clipboard.Write(text); err != nil {
		m.log.Error(err, "copy to clipboard failed")
		return nil
	}
	m.copied = true
	return clearCopiedAfter(2 * time.Second)
}

func (m Model) removableAt(i int) bool {
	it, ok := m.store.At(i)
	return ok && it.Removable()
}

func (m Model) lastRemovable() int {
	return m.prevRemovable(m.store.Len())
}

// prevRemovable returns the closest removable tag before i, or -1.
func (m Model) prevRemovable(i int) int {
	for j := min(i, m.store.Len()) - 1; j >= 0; j-- {
		if m.removableAt(j) {
			return j
		}
	}
	return -1
}

// nextRemovable returns the closest removable tag after i, or -1 to hand
// focus back to the text input.
func (m Model) nextRemovable(i int) int {
	for j := i + 1; j < m.store.Len(); j++ {
		if m.removableAt(j) {
			return j
		}
	}
	return -1
}

// Bounds returns the screen rectangle the widget currently occupies.
func (m Model) Bounds() (x, y, width, height int) {
	view := m.View()
	return m.originX, m.originY, lipgloss.Width(view), lipgloss.Height(view)
}

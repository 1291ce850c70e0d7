package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-logr/logr"

	"github.com/f3rmion/tagcalc/internal/catalog"
	"github.com/f3rmion/tagcalc/internal/config"
	"github.com/f3rmion/tagcalc/internal/logger"
	"github.com/f3rmion/tagcalc/internal/suggest"
	"github.com/f3rmion/tagcalc/internal/tag"
	"github.com/f3rmion/tagcalc/internal/tui/views"
	"github.com/f3rmion/tagcalc/internal/tui/widget"
)

// ViewType represents the current active view
type ViewType int

const (
	ViewCalculator ViewType = iota
	ViewImport
	ViewSettings
)

// MenuItem represents a sidebar menu entry
type MenuItem struct {
	Label    string
	View     ViewType
	Shortcut string
}

// ViewSwitchMsg requests a view change
type ViewSwitchMsg struct {
	View ViewType
}

// CatalogImportedMsg is sent when a YAML file has been imported into the
// local catalog.
type CatalogImportedMsg struct {
	Path  string
	Count int
	Err   error
}

type catalogLoadedMsg struct {
	items []tag.Item
	err   error
}

// Options configures the application.
type Options struct {
	Config    *config.Config
	ConfigDir string
	Source    suggest.Source
	Catalog   *catalog.Store // nil disables import and the catalog listing
	Context   context.Context
}

// AppModel is the main TUI model
type AppModel struct {
	ctx     context.Context
	config  *config.Config
	catalog *catalog.Store
	log     logr.Logger

	// Layout state
	width        int
	height       int
	sidebarWidth int
	ready        bool

	// Navigation
	currentView   ViewType
	menuItems     []MenuItem
	selectedMenu  int
	sidebarActive bool

	// Sub-models (views)
	calculator   widget.Model
	importView   views.FilePickerModel
	settingsView views.SettingsModel

	status    string
	statusErr bool

	// Help overlay
	showHelp bool
}

// NewApp creates the application model.
func NewApp(opts Options) AppModel {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	menuItems := []MenuItem{
		{Label: "Calculator", View: ViewCalculator, Shortcut: "1"},
		{Label: "Import", View: ViewImport, Shortcut: "2"},
		{Label: "Settings", View: ViewSettings, Shortcut: "3"},
	}

	return AppModel{
		ctx:          ctx,
		config:       cfg,
		catalog:      opts.Catalog,
		log:          logger.FromContext(ctx).WithName("tui"),
		sidebarWidth: 18,
		currentView:  ViewCalculator,
		menuItems:    menuItems,

		calculator: widget.New(widget.Options{
			Source:         opts.Source,
			Debounce:       cfg.Debounce,
			MaxSuggestions: cfg.MaxSuggestions,
			BigResult:      cfg.BigResult,
			Context:        ctx,
		}),
		importView:   views.NewFilePickerModel("Import Catalog (.yaml)", opts.ConfigDir, ".yaml", ".yml"),
		settingsView: views.NewSettingsModel(cfg, opts.ConfigDir),
	}
}

// Calculator returns the tag input widget.
func (m AppModel) Calculator() widget.Model {
	return m.calculator
}

// Init initializes the model
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.calculator.Init(), m.loadCatalog())
}

// typing reports whether keys should go to the text input rather than
// act as shortcuts.
func (m AppModel) typing() bool {
	return !m.sidebarActive && m.currentView == ViewCalculator
}

// Update handles messages
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Help overlay - any key closes it
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "f1":
			m.showHelp = true
			return m, nil
		case "tab":
			return m, m.setSidebarActive(!m.sidebarActive)
		case "esc":
			if m.typing() && (m.calculator.Open() || m.calculator.ChipFocused()) {
				break
			}
			if m.sidebarActive {
				return m, tea.Quit
			}
			return m, m.setSidebarActive(true)
		}

		if !m.typing() {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "?":
				m.showHelp = true
				return m, nil
			case "1", "2", "3":
				view := ViewType(msg.String()[0] - '1')
				cmd := m.switchView(view)
				return m, cmd
			}
		}

		// Sidebar navigation when active
		if m.sidebarActive {
			switch msg.String() {
			case "j", "down":
				if m.selectedMenu < len(m.menuItems)-1 {
					m.selectedMenu++
				}
			case "k", "up":
				if m.selectedMenu > 0 {
					m.selectedMenu--
				}
			case "enter", "l", "right":
				cmd := m.switchView(m.menuItems[m.selectedMenu].View)
				return m, cmd
			}
			return m, nil
		}

		return m.updateCurrent(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case tea.MouseMsg:
		if m.currentView != ViewCalculator {
			return m, nil
		}
		var cmd tea.Cmd
		m.calculator, cmd = m.calculator.Update(msg)
		if m.calculator.Focused() {
			m.sidebarActive = false
		}
		return m, cmd

	case ViewSwitchMsg:
		cmd := m.switchView(msg.View)
		return m, cmd

	case views.FileSelectedMsg:
		return m, m.importCatalog(msg.Path)

	case CatalogImportedMsg:
		if msg.Err != nil {
			m.log.Error(msg.Err, "catalog import failed", "path", msg.Path)
			m.status = "Import failed: " + msg.Err.Error()
			m.statusErr = true
			return m, nil
		}
		m.log.Info("catalog imported", "path", msg.Path, "count", msg.Count)
		m.status = fmt.Sprintf("Imported %d items from %s", msg.Count, filepath.Base(msg.Path))
		m.statusErr = false
		cmd := m.switchView(ViewCalculator)
		return m, tea.Batch(cmd, m.loadCatalog())

	case catalogLoadedMsg:
		m.settingsView.SetCatalog(msg.items, msg.err)
		return m, nil
	}

	// Everything else (lookup results, ticks, blinks) belongs to the widget,
	// whichever view is showing.
	var cmd tea.Cmd
	m.calculator, cmd = m.calculator.Update(msg)
	return m, cmd
}

func (m AppModel) updateCurrent(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentView {
	case ViewCalculator:
		m.calculator, cmd = m.calculator.Update(msg)
	case ViewImport:
		m.importView, cmd = m.importView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	}
	return m, cmd
}

func (m *AppModel) switchView(view ViewType) tea.Cmd {
	m.currentView = view
	for i, item := range m.menuItems {
		if item.View == view {
			m.selectedMenu = i
			break
		}
	}
	if view == ViewImport {
		m.importView.Reload()
	}
	return m.setSidebarActive(false)
}

func (m *AppModel) setSidebarActive(active bool) tea.Cmd {
	m.sidebarActive = active
	if active || m.currentView != ViewCalculator {
		m.calculator.Blur()
		return nil
	}
	return m.calculator.Focus()
}

func (m *AppModel) layout() {
	sidebar := lipgloss.Width(m.renderSidebar())
	contentWidth := m.width - sidebar - ContentStyle.GetHorizontalPadding()
	contentHeight := m.height - ContentStyle.GetVerticalPadding()

	header := lipgloss.Height(m.calculatorHeader()) + 1
	m.calculator.SetOrigin(sidebar+ContentStyle.GetPaddingLeft(), ContentStyle.GetPaddingTop()+header)
	m.calculator.SetSize(contentWidth, contentHeight-header)
	m.importView.SetSize(contentWidth, contentHeight)
	m.settingsView.SetSize(contentWidth, contentHeight)
}

// View renders the UI
func (m AppModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	sidebar := m.renderSidebar()

	var content string
	switch m.currentView {
	case ViewCalculator:
		content = lipgloss.JoinVertical(lipgloss.Left, m.calculatorHeader(), "", m.calculator.View())
	case ViewImport:
		content = m.importView.View()
	case ViewSettings:
		content = m.settingsView.View()
	}

	if m.status != "" {
		style := StatusStyle
		if m.statusErr {
			style = ErrorStyle
		}
		content += "\n\n" + style.Render(m.status)
	}

	mainContent := ContentStyle.
		Width(m.width - lipgloss.Width(sidebar)).
		Height(m.height - 2).
		Render(content)

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, mainContent)
}

func (m AppModel) calculatorHeader() string {
	source := "Suggestions from " + m.config.BaseURL
	if m.config.Source == config.SourceLocal {
		source = "Suggestions from local catalog"
	}
	return TitleStyle.Render("Tag Calculator") + "\n" + SubtitleStyle.Render(source)
}

// renderSidebar renders the sidebar navigation
func (m AppModel) renderSidebar() string {
	items := []string{SidebarTitleStyle.Render(" tagcalc "), ""}

	for i, item := range m.menuItems {
		label := item.Shortcut + ". " + item.Label

		style := SidebarItemStyle
		if i == m.selectedMenu {
			if m.sidebarActive {
				style = SidebarItemActiveStyle
			} else {
				style = SidebarItemStyle.Bold(true).Foreground(ColorSecondary)
			}
		}
		items = append(items, style.Render(label))
	}

	usedHeight := len(items) + 4
	for i := 0; i < m.height-usedHeight-2; i++ {
		items = append(items, "")
	}

	items = append(items, SidebarHelpStyle.Render("F1 Help  ^C Quit"))

	return SidebarStyle.
		Width(m.sidebarWidth).
		Height(max(m.height-2, 0)).
		Render(lipgloss.JoinVertical(lipgloss.Left, items...))
}

func (m AppModel) loadCatalog() tea.Cmd {
	store, ctx := m.catalog, m.ctx
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		items, err := store.All(ctx)
		return catalogLoadedMsg{items: items, err: err}
	}
}

// importCatalog loads a YAML file into the local catalog asynchronously
func (m AppModel) importCatalog(path string) tea.Cmd {
	store, ctx := m.catalog, m.ctx
	return func() tea.Msg {
		if store == nil {
			return CatalogImportedMsg{Path: path, Err: errors.New("no local catalog is open")}
		}
		items, err := catalog.LoadYAML(path)
		if err != nil {
			return CatalogImportedMsg{Path: path, Err: err}
		}
		n, err := store.Upsert(ctx, items)
		return CatalogImportedMsg{Path: path, Count: n, Err: err}
	}
}

// renderHelp renders the help overlay
func (m AppModel) renderHelp() string {
	row := func(key, desc string) string {
		return HelpKeyStyle.Render(key) + HelpDescStyle.Render(desc) + "\n"
	}

	text := HelpTitleStyle.Render("tagcalc - tag calculator") + "\n\n"

	text += HelpSectionStyle.Render("Global Keys") + "\n"
	text += row("tab", "Toggle sidebar focus")
	text += row("1-3", "Switch views (sidebar)")
	text += row("F1 / ?", "Show this help")
	text += row("esc", "Sidebar, then quit")
	text += row("ctrl+c", "Quit")

	text += HelpSectionStyle.Render("Calculator") + "\n"
	text += row("type", "Search tags")
	text += row("+-*/%^()", "Insert an operator")
	text += row("↑/↓", "Highlight suggestion")
	text += row("enter", "Add highlighted tag")
	text += row("←", "Select tags to remove")
	text += row("ctrl+u", "Clear the input")
	text += row("ctrl+r", "Clear all tags")
	text += row("ctrl+y", "Copy result")

	text += HelpSectionStyle.Render("Import") + "\n"
	text += row("enter", "Import file/enter dir")
	text += row("backspace", "Go to parent dir")
	text += row("~", "Go to home dir")

	text += "\n" + HelpStyle.Italic(true).Render("Press any key to close")

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, HelpBoxStyle.Render(text))
}

package views

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/f3rmion/tagcalc/internal/calc"
	"github.com/f3rmion/tagcalc/internal/config"
	"github.com/f3rmion/tagcalc/internal/tag"
)

const (
	tabConfig = iota
	tabCatalog
	tabCount
)

// SettingsModel shows the effective configuration and the local catalog.
type SettingsModel struct {
	config    *config.Config
	configDir string

	catalog    []tag.Item
	catalogErr error

	tab     int
	scrollY int

	width  int
	height int
}

// NewSettingsModel creates a new settings model.
func NewSettingsModel(cfg *config.Config, configDir string) SettingsModel {
	return SettingsModel{
		config:    cfg,
		configDir: configDir,
	}
}

// SetSize updates the view dimensions.
func (m *SettingsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetCatalog replaces the catalog listing.
func (m *SettingsModel) SetCatalog(items []tag.Item, err error) {
	m.catalog = items
	m.catalogErr = err
	if m.scrollY > len(items) {
		m.scrollY = 0
	}
}

// Update handles messages.
func (m SettingsModel) Update(msg tea.Msg) (SettingsModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "right", "l":
		m.tab = (m.tab + 1) % tabCount
		m.scrollY = 0
	case "left", "h":
		m.tab = (m.tab + tabCount - 1) % tabCount
		m.scrollY = 0
	case "j", "down":
		if m.tab == tabCatalog && m.scrollY < len(m.catalog)-1 {
			m.scrollY++
		}
	case "k", "up":
		if m.scrollY > 0 {
			m.scrollY--
		}
	case "g":
		m.scrollY = 0
	}
	return m, nil
}

// View renders the settings view.
func (m SettingsModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Settings"))
	b.WriteString("\n")
	b.WriteString(pathStyle.Render("Config: " + m.configDir))
	b.WriteString("\n\n")

	var tabs []string
	for i, t := range []string{"Config", "Catalog"} {
		style := tabStyle
		if i == m.tab {
			style = tabActiveStyle
		}
		tabs = append(tabs, style.Render(t))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n")
	b.WriteString(dividerStyle.Render(strings.Repeat("─", max(min(m.width-4, 60), 0))))
	b.WriteString("\n\n")

	switch m.tab {
	case tabConfig:
		b.WriteString(m.renderConfig())
	case tabCatalog:
		b.WriteString(m.renderCatalog())
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("←/→: switch tabs • j/k: scroll"))

	return b.String()
}

func (m SettingsModel) renderConfig() string {
	if m.config == nil {
		return mutedStyle.Render("No configuration loaded")
	}
	c := m.config

	logFile := c.LogFile
	if logFile == "" {
		logFile = "(disabled)"
	}
	debounce := c.Debounce.String()
	if c.Debounce == 0 {
		debounce = "off"
	}

	rows := [][2]string{
		{"source", c.Source},
		{"base_url", c.BaseURL},
		{"timeout", c.Timeout.String()},
		{"debounce", debounce},
		{"max_suggestions", strconv.Itoa(c.MaxSuggestions)},
		{"catalog_path", c.CatalogPath},
		{"listen", c.Listen},
		{"log_file", logFile},
		{"log_level", strconv.Itoa(int(c.LogLevel))},
		{"big_result", strconv.FormatBool(c.BigResult)},
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(labelStyle.Render(r[0]))
		b.WriteString(rowStyle.Render(r[1]))
		b.WriteString("\n")
	}
	return b.String()
}

func (m SettingsModel) renderCatalog() string {
	var b strings.Builder

	if m.catalogErr != nil {
		b.WriteString(errorStyle.Render("Catalog unavailable: " + m.catalogErr.Error()))
		b.WriteString("\n")
		return b.String()
	}
	if len(m.catalog) == 0 {
		b.WriteString(mutedStyle.Render("Catalog is empty"))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("Import one with 'tagcalc catalog import <file.yaml>' or from the Import view"))
		return b.String()
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf("Items (%d)", len(m.catalog))))
	b.WriteString("\n\n")

	rowFmt := "%-24s %-12s %s"
	b.WriteString(mutedStyle.Render(fmt.Sprintf(rowFmt, "Name", "Value", "Category")))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(strings.Repeat("─", 50)))
	b.WriteString("\n")

	visible := max(m.height-12, 5)
	start := min(m.scrollY, len(m.catalog))
	end := min(start+visible, len(m.catalog))

	for _, it := range m.catalog[start:end] {
		b.WriteString(rowStyle.Render(fmt.Sprintf(rowFmt, it.Name, calc.FormatNumber(it.Value), it.Category)))
		b.WriteString("\n")
	}

	if len(m.catalog) > visible {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("Showing %d-%d of %d", start+1, end, len(m.catalog))))
	}

	return b.String()
}

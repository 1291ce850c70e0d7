package views

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// FileSelectedMsg is sent when a file is picked.
type FileSelectedMsg struct {
	Path string
}

var (
	fpDirStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ecdc4")).
			Bold(true)

	fpFileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f1faee"))

	fpSelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffe66d")).
			Background(lipgloss.Color("#2d3436"))
)

// FileEntry is a row of the picker.
type FileEntry struct {
	Name  string
	IsDir bool
	Path  string
}

// FilePickerModel browses directories and picks a file with one of a set of
// extensions.
type FilePickerModel struct {
	title      string
	currentDir string
	extensions []string

	entries  []FileEntry
	selected int
	offset   int

	err error

	width  int
	height int
}

// NewFilePickerModel opens a picker in startDir, falling back to the home
// directory when startDir cannot be read.
func NewFilePickerModel(title, startDir string, extensions ...string) FilePickerModel {
	if fi, err := os.Stat(startDir); startDir == "" || err != nil || !fi.IsDir() {
		startDir, _ = os.UserHomeDir()
		if startDir == "" {
			startDir = "/"
		}
	}

	m := FilePickerModel{
		title:      title,
		currentDir: startDir,
		extensions: extensions,
	}
	m.loadDir()
	return m
}

// SetSize updates the view dimensions.
func (m *FilePickerModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Dir returns the directory being shown.
func (m FilePickerModel) Dir() string { return m.currentDir }

// Entries returns the rows of the current directory.
func (m FilePickerModel) Entries() []FileEntry { return m.entries }

// Reload rereads the current directory.
func (m *FilePickerModel) Reload() {
	m.loadDir()
}

func (m *FilePickerModel) loadDir() {
	m.entries = nil
	m.selected = 0
	m.offset = 0
	m.err = nil

	entries, err := os.ReadDir(m.currentDir)
	if err != nil {
		m.err = err
		return
	}

	if parent := filepath.Dir(m.currentDir); parent != m.currentDir {
		m.entries = append(m.entries, FileEntry{Name: "..", IsDir: true, Path: parent})
	}

	var dirs, files []FileEntry
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		fe := FileEntry{
			Name:  entry.Name(),
			IsDir: entry.IsDir(),
			Path:  filepath.Join(m.currentDir, entry.Name()),
		}
		switch {
		case fe.IsDir:
			dirs = append(dirs, fe)
		case m.matchesExtension(fe.Name):
			files = append(files, fe)
		}
	}

	byName := func(s []FileEntry) func(i, j int) bool {
		return func(i, j int) bool { return strings.ToLower(s[i].Name) < strings.ToLower(s[j].Name) }
	}
	sort.Slice(dirs, byName(dirs))
	sort.Slice(files, byName(files))

	m.entries = append(m.entries, dirs...)
	m.entries = append(m.entries, files...)
}

func (m *FilePickerModel) matchesExtension(name string) bool {
	if len(m.extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range m.extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// Update handles messages.
func (m FilePickerModel) Update(msg tea.Msg) (FilePickerModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "j", "down":
		if m.selected < len(m.entries)-1 {
			m.selected++
			m.adjustScroll()
		}
	case "k", "up":
		if m.selected > 0 {
			m.selected--
			m.adjustScroll()
		}
	case "enter", "l", "right":
		if m.selected < len(m.entries) {
			entry := m.entries[m.selected]
			if !entry.IsDir {
				return m, func() tea.Msg { return FileSelectedMsg{Path: entry.Path} }
			}
			m.currentDir = entry.Path
			m.loadDir()
		}
	case "backspace", "h":
		if parent := filepath.Dir(m.currentDir); parent != m.currentDir {
			m.currentDir = parent
			m.loadDir()
		}
	case "~":
		if home, _ := os.UserHomeDir(); home != "" {
			m.currentDir = home
			m.loadDir()
		}
	case "g":
		m.selected = 0
		m.offset = 0
	case "G":
		m.selected = max(len(m.entries)-1, 0)
		m.adjustScroll()
	}
	return m, nil
}

func (m *FilePickerModel) visibleHeight() int {
	return max(m.height-8, 5)
}

func (m *FilePickerModel) adjustScroll() {
	h := m.visibleHeight()
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+h {
		m.offset = m.selected - h + 1
	}
}

// View renders the file picker.
func (m FilePickerModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(pathStyle.Render(m.currentDir))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n\n")
	}

	rule := dividerStyle.Render(strings.Repeat("─", max(min(m.width-4, 60), 0)))
	b.WriteString(rule)
	b.WriteString("\n")

	if len(m.entries) == 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  (no %s files found)", strings.Join(m.extensions, " "))))
		b.WriteString("\n")
	}

	end := min(m.offset+m.visibleHeight(), len(m.entries))
	for i := m.offset; i < end; i++ {
		entry := m.entries[i]

		line := "[FILE] " + entry.Name
		style := fpFileStyle
		if entry.IsDir {
			line = "[DIR]  " + entry.Name
			style = fpDirStyle
		}

		prefix := "  "
		if i == m.selected {
			prefix = "> "
			style = fpSelectedStyle
		}
		b.WriteString(prefix)
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	if len(m.entries) > m.visibleHeight() {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  %d-%d of %d", m.offset+1, end, len(m.entries))))
		b.WriteString("\n")
	}

	b.WriteString(rule)
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: select • backspace: parent • ~: home • esc: back"))

	return b.String()
}

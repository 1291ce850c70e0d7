package views

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f3rmion/tagcalc/internal/config"
	"github.com/f3rmion/tagcalc/internal/tag"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestFilePickerListsMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	for _, name := range []string{"b.yaml", "A.yml", "notes.txt", ".hidden.yaml"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	m := NewFilePickerModel("Import", dir, ".yaml", ".yml")
	var got []string
	for _, e := range m.Entries() {
		got = append(got, e.Name)
	}
	assert.Equal(t, []string{"..", "sub", "A.yml", "b.yaml"}, got)
	assert.Contains(t, m.View(), "[DIR]  sub")
}

func TestFilePickerNavigatesAndSelects(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "items.yaml"), nil, 0o644))

	m := NewFilePickerModel("Import", dir, ".yaml")
	m.SetSize(80, 30)

	m, _ = m.Update(key("down")) // ".." -> "sub"
	m, _ = m.Update(key("enter"))
	require.Equal(t, sub, m.Dir())

	m, _ = m.Update(key("down")) // ".." -> items.yaml
	m, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, FileSelectedMsg{Path: filepath.Join(sub, "items.yaml")}, cmd())

	m, _ = m.Update(key("backspace"))
	assert.Equal(t, dir, m.Dir())
}

func TestFilePickerFallsBackToHome(t *testing.T) {
	m := NewFilePickerModel("Import", filepath.Join(t.TempDir(), "missing"))
	home, _ := os.UserHomeDir()
	if home == "" {
		home = "/"
	}
	assert.Equal(t, home, m.Dir())
}

func TestSettingsShowsConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Debounce = 150 * time.Millisecond

	m := NewSettingsModel(cfg, "/tmp/tagcalc")
	m.SetSize(80, 30)
	view := m.View()

	assert.Contains(t, view, "Config: /tmp/tagcalc")
	assert.Contains(t, view, config.DefaultBaseURL)
	assert.Contains(t, view, "150ms")
	assert.Contains(t, view, "(disabled)")
}

func TestSettingsCatalogTab(t *testing.T) {
	m := NewSettingsModel(config.Default(), "")
	m.SetSize(80, 30)
	m, _ = m.Update(key("right"))

	assert.Contains(t, m.View(), "Catalog is empty")

	m.SetCatalog([]tag.Item{{Name: "pi", Value: 3.14159, Category: "const"}}, nil)
	view := m.View()
	assert.Contains(t, view, "Items (1)")
	assert.Contains(t, view, "3.14159")

	m.SetCatalog(nil, errors.New("locked"))
	assert.Contains(t, m.View(), "Catalog unavailable: locked")
}

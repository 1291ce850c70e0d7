package tui

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f3rmion/tagcalc/internal/catalog"
	"github.com/f3rmion/tagcalc/internal/config"
	"github.com/f3rmion/tagcalc/internal/tag"
	"github.com/f3rmion/tagcalc/internal/tui/views"
)

type emptySource struct{}

func (emptySource) Lookup(context.Context, string) ([]tag.Item, error) {
	return []tag.Item{}, nil
}

func newTestApp(t *testing.T, store *catalog.Store) AppModel {
	t.Helper()
	m := NewApp(Options{
		Config:    config.Default(),
		ConfigDir: t.TempDir(),
		Source:    emptySource{},
		Catalog:   store,
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(AppModel)
}

func update(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	app, ok := next.(AppModel)
	require.True(t, ok)
	return app, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTypingGoesToCalculator(t *testing.T) {
	m := newTestApp(t, nil)

	// Shortcut keys are plain text while the input has focus.
	m, _ = update(t, m, runes("q"))
	m, _ = update(t, m, runes("1"))
	assert.Equal(t, "q1", m.Calculator().Value())
	assert.Equal(t, ViewCalculator, m.currentView)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlU})
	m, _ = update(t, m, runes("*"))
	assert.Equal(t, []tag.Item{tag.Symbol("*")}, m.Calculator().Tags())
}

func TestSidebarSwitchesViews(t *testing.T) {
	m := newTestApp(t, nil)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.True(t, m.sidebarActive)
	assert.False(t, m.Calculator().Focused())

	m, _ = update(t, m, runes("3"))
	assert.Equal(t, ViewSettings, m.currentView)
	assert.Contains(t, m.View(), "Settings")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(t, m, runes("1"))
	assert.Equal(t, ViewCalculator, m.currentView)
	assert.True(t, m.Calculator().Focused())
	assert.Contains(t, m.View(), "Tag Calculator")
}

func TestEscClosesDropdownBeforeSidebar(t *testing.T) {
	m := newTestApp(t, nil)

	m, _ = update(t, m, runes("fi"))
	require.True(t, m.Calculator().Open())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Calculator().Open())
	assert.False(t, m.sidebarActive)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, m.sidebarActive)
}

func TestClickOnSidebarClosesDropdown(t *testing.T) {
	m := newTestApp(t, nil)

	m, _ = update(t, m, runes("fi"))
	require.True(t, m.Calculator().Open())

	m, _ = update(t, m, tea.MouseMsg{X: 1, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.False(t, m.Calculator().Open())
}

func TestImportCatalog(t *testing.T) {
	store, err := catalog.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	path := filepath.Join(t.TempDir(), "numbers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`items:
  - name: one
    value: 1
  - name: two
    value: 2
`), 0o644))

	m := newTestApp(t, store)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(t, m, runes("2"))
	require.Equal(t, ViewImport, m.currentView)

	m, cmd := update(t, m, views.FileSelectedMsg{Path: path})
	require.NotNil(t, cmd)
	imported := cmd()
	require.Equal(t, CatalogImportedMsg{Path: path, Count: 2}, imported)

	m, _ = update(t, m, imported)
	assert.Equal(t, ViewCalculator, m.currentView)
	assert.Contains(t, m.View(), "Imported 2 items from numbers.yaml")

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestImportWithoutCatalogFails(t *testing.T) {
	m := newTestApp(t, nil)

	m, cmd := update(t, m, views.FileSelectedMsg{Path: "/nowhere.yaml"})
	m, _ = update(t, m, cmd())
	assert.True(t, m.statusErr)
	assert.Contains(t, m.View(), "Import failed")
}

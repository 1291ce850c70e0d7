package bignum

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	require.True(t, Available())

	out := Render("8", 8)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 8)
	assert.True(t, strings.ContainsAny(out, "█▀▄"), "glyph has ink:\n%s", out)

	for _, l := range lines[1:] {
		assert.Equal(t, lipgloss.Width(lines[0]), lipgloss.Width(l))
	}
}

func TestRenderWidthGrowsWithText(t *testing.T) {
	one := lipgloss.Width(Render("8", 6))
	three := lipgloss.Width(Render("888", 6))
	assert.Greater(t, three, one)
}

func TestRenderEmpty(t *testing.T) {
	assert.Empty(t, Render("", 6))
	assert.Empty(t, Render("1", 0))
}

func TestGetCached(t *testing.T) {
	first := GetCached("-1.5", 4)
	assert.Equal(t, Render("-1.5", 4), first)
	assert.Equal(t, first, GetCached("-1.5", 4))
}

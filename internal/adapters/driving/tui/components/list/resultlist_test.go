package list

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/docsift/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docsift/internal/core/domain"
)

func sampleResults() []domain.SearchResult {
	return []domain.SearchResult{
		{
			ID: "a", Title: "部署手册", FileType: domain.FileTypeDOCX, Score: 0.91,
			CategoryNames: []string{"Technical"},
			Highlights: []domain.Highlight{
				{Field: "content", Snippet: "how to <mark>deploy</mark> the service"},
			},
		},
		{ID: "b", Title: "Q3 report", FileType: domain.FileTypeXLSX, Score: 0.5, Snippet: "revenue by region"},
		{ID: "c", Title: "", FileType: domain.FileTypeImage, Score: 0.1},
	}
}

func TestResultList_EmptyView(t *testing.T) {
	l := NewResultList(nil)

	assert.Equal(t, 0, l.Count())
	assert.Nil(t, l.SelectedResult())
	assert.Contains(t, l.View(), "No results")
}

func TestResultList_Navigation(t *testing.T) {
	l := NewResultList(nil)
	l.SetResults(sampleResults())

	l.MoveUp()
	assert.Equal(t, 0, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyDown})
	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.Equal(t, 2, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	assert.Equal(t, "b", l.SelectedResult().ID)

	l.SetResults(sampleResults())
	assert.Equal(t, 0, l.Selected())
}

func TestResultList_ViewRendersResults(t *testing.T) {
	l := NewResultList(nil)
	l.SetDimensions(100, 30)
	l.SetResults(sampleResults())

	view := l.View()
	assert.Contains(t, view, "部署手册")
	assert.Contains(t, view, "#Technical")
	assert.Contains(t, view, "deploy")
	assert.NotContains(t, view, "<mark>")
	assert.Contains(t, view, "revenue by region")
	assert.Contains(t, view, "(Untitled)")
}

func TestRenderMarks(t *testing.T) {
	s := styles.DefaultStyles()

	out := RenderMarks(s, "a <mark>b</mark> c <mark>d")
	assert.NotContains(t, out, "<mark>")
	assert.NotContains(t, out, "</mark>")
	assert.Contains(t, out, "b")
	assert.Contains(t, out, "d")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "文档文档...", truncate("文档文档文档文档", 7))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}

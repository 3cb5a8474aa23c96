// Package document provides the document view for the TUI.
package document

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/docsift/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docsift/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docsift/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driving"
)

const (
	timeLayout = "2006-01-02 15:04:05"

	// contentPreviewLines caps how much extracted text is shown.
	contentPreviewLines = 200
)

// View shows one document record: fields, categories, keywords,
// summary and a scrollable content preview.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	service driving.DocumentService
	ctx     context.Context

	record       *domain.DocumentRecord
	lines        []string
	scrollOffset int
	notice       string
	width        int
	height       int
	err          error
}

// NewView creates a new document view. service may be nil, which
// disables revealing the file.
func NewView(s *styles.Styles, km *keymap.KeyMap, service driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:  s,
		keymap:  km,
		service: service,
		ctx:     context.Background(),
		width:   80,
		height:  24,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetRecord sets the document to display.
func (v *View) SetRecord(rec *domain.DocumentRecord) {
	v.record = rec
	v.scrollOffset = 0
	v.notice = ""
	v.err = nil
	v.lines = v.buildContent()
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the document view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.DocumentRevealed:
		if msg.Err != nil {
			v.notice = "Reveal failed: " + msg.Err.Error()
		} else {
			v.notice = "Revealed in file manager"
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Up):
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case keymap.Matches(key, v.keymap.Down):
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case keymap.Matches(key, v.keymap.Reveal):
		if v.record == nil || v.service == nil {
			return v, nil
		}
		svc, ctx, id := v.service, v.ctx, v.record.Document.ID
		return v, func() tea.Msg {
			return messages.DocumentRevealed{ID: id, Err: svc.Reveal(ctx, id)}
		}
	case keymap.Matches(key, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewSearch}
		}
	}
	return v, nil
}

func (v *View) visibleLines() int {
	// title, separator, notice, help
	available := v.height - 6
	if available < 1 {
		available = 1
	}
	return available
}

func (v *View) maxScrollOffset() int {
	maxOffset := len(v.lines) - v.visibleLines()
	if maxOffset < 0 {
		maxOffset = 0
	}
	return maxOffset
}

func (v *View) buildContent() []string {
	if v.record == nil {
		return nil
	}
	doc := v.record.Document

	lines := []string{
		v.field("ID", doc.ID),
		v.field("Path", doc.FilePath),
		v.field("Type", string(doc.FileType)),
		v.field("Size", humanize.IBytes(uint64(doc.FileSize))),
	}
	if !doc.CreatedAt.IsZero() {
		lines = append(lines, v.field("Created", doc.CreatedAt.Format(timeLayout)))
	}
	if !doc.ModifiedAt.IsZero() {
		lines = append(lines, v.field("Modified", doc.ModifiedAt.Format(timeLayout)))
	}

	if len(v.record.Categories) > 0 {
		tags := make([]string, 0, len(v.record.Categories))
		for _, c := range v.record.Categories {
			tags = append(tags, fmt.Sprintf("%s %.0f%%", v.styles.Tag(c.CategoryName, ""), c.Confidence*100))
		}
		lines = append(lines, v.field("Categories", strings.Join(tags, "  ")))
	}
	if kws := v.record.KeywordTexts(); len(kws) > 0 {
		lines = append(lines, v.field("Keywords", strings.Join(kws, ", ")))
	}

	if len(doc.Metadata) > 0 {
		keys := make([]string, 0, len(doc.Metadata))
		for k := range doc.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines = append(lines, "", v.styles.Subtitle.Render("Metadata"))
		for _, k := range keys {
			lines = append(lines, "  "+v.field(k, fmt.Sprint(doc.Metadata[k])))
		}
	}

	if doc.Summary != "" {
		lines = append(lines, "", v.styles.Subtitle.Render("Summary"))
		lines = append(lines, wrap(doc.Summary, v.width-4)...)
	}

	if doc.Content != "" {
		lines = append(lines, "", v.styles.Subtitle.Render("Content"))
		content := strings.Split(doc.Content, "\n")
		if len(content) > contentPreviewLines {
			content = append(content[:contentPreviewLines], "...")
		}
		for _, l := range content {
			lines = append(lines, wrap(l, v.width-4)...)
		}
	}

	return lines
}

func (v *View) field(label, value string) string {
	return v.styles.Label.Render(label) + " " + v.styles.Normal.Render(value)
}

// wrap splits s into rune-counted lines of at most width.
func wrap(s string, width int) []string {
	if width < 20 {
		width = 20
	}
	runes := []rune(s)
	if len(runes) == 0 {
		return []string{""}
	}
	var out []string
	for len(runes) > width {
		out = append(out, string(runes[:width]))
		runes = runes[width:]
	}
	return append(out, string(runes))
}

// View renders the document view.
func (v *View) View() string {
	var b strings.Builder

	title := "Document"
	if v.record != nil {
		title = v.record.Document.Title
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", minInt(v.width-4, 60)))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	case v.record == nil:
		b.WriteString(v.styles.Muted.Render("No document selected"))
		b.WriteString("\n")
	default:
		visible := v.visibleLines()
		end := minInt(v.scrollOffset+visible, len(v.lines))
		for _, line := range v.lines[v.scrollOffset:end] {
			b.WriteString(line)
			b.WriteString("\n")
		}
		if len(v.lines) > visible {
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [Line %d-%d of %d]",
				v.scrollOffset+1, end, len(v.lines))))
			b.WriteString("\n")
		}
	}

	if v.notice != "" {
		b.WriteString(v.styles.Muted.Render(v.notice))
		b.WriteString("\n")
	}
	b.WriteString(v.styles.Help.Render("[↑/↓] scroll  [r] reveal  [esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions and re-wraps the content.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.lines = v.buildContent()
	if v.scrollOffset > v.maxScrollOffset() {
		v.scrollOffset = v.maxScrollOffset()
	}
}

// Record returns the displayed document.
func (v *View) Record() *domain.DocumentRecord {
	return v.record
}

// ScrollOffset returns the first visible line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Package search provides the main search view for the TUI.
package search

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docsift/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docsift/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/docsift/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docsift/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docsift/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docsift/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driving"
)

// ErrNoSearchService is returned when the view has no search service.
var ErrNoSearchService = errors.New("search service not available")

// pageSize is the number of results requested per page.
const pageSize = 10

// View is the search view with input, results list and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.SearchInput
	list      *list.ResultList
	statusbar *status.Bar

	searchService   driving.SearchService
	documentService driving.DocumentService
	ctx             context.Context

	query    string
	page     int
	response *domain.SearchResponse

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true while typing, false while browsing results
}

// NewView creates a new search view. documentService may be nil, which
// disables opening and revealing results.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	searchService driving.SearchService,
	documentService driving.DocumentService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:          s,
		keymap:          km,
		input:           input.NewSearchInput(s),
		list:            list.NewResultList(s),
		statusbar:       status.NewBar(s, km),
		searchService:   searchService,
		documentService: documentService,
		ctx:             context.Background(),
		page:            1,
		width:           80,
		height:          24,
		focusInput:      true,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.DocumentRevealed:
		if msg.Err != nil {
			v.statusbar.SetMessage("Reveal: " + msg.Err.Error())
		} else {
			v.statusbar.SetMessage("Revealed in file manager")
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()

	if keymap.Matches(key, v.keymap.Mode) {
		v.input.NextMode()
		if v.query != "" {
			v.page = 1
			return v, v.performSearch()
		}
		return v, nil
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			query := strings.TrimSpace(v.input.Value())
			if query == "" {
				return v, nil
			}
			v.query = query
			v.page = 1
			v.focusInput = false
			v.input.Blur()
			return v, v.performSearch()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case keymap.Matches(key, v.keymap.Open):
		return v, v.openSelected()
	case keymap.Matches(key, v.keymap.Reveal):
		return v, v.revealSelected()
	case keymap.Matches(key, v.keymap.NextPage):
		if v.response != nil && v.page < v.response.TotalPages {
			v.page++
			return v, v.performSearch()
		}
	case keymap.Matches(key, v.keymap.PrevPage):
		if v.page > 1 {
			v.page--
			return v, v.performSearch()
		}
	case keymap.Matches(key, v.keymap.NewSearch):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	default:
		v.list, _ = v.list.Update(msg)
	}
	return v, nil
}

// performSearch runs the current query at the current page.
func (v *View) performSearch() tea.Cmd {
	v.statusbar.SetState(status.StateSearching)
	query := domain.SearchQuery{
		Query: v.query,
		Mode:  v.input.Mode(),
		Page:  v.page,
		Limit: pageSize,
	}
	svc := v.searchService
	ctx := v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}
		resp, err := svc.Search(ctx, query)
		return messages.SearchCompleted{Response: resp, Err: err}
	}
}

func (v *View) openSelected() tea.Cmd {
	result := v.list.SelectedResult()
	if result == nil || v.documentService == nil {
		return nil
	}
	svc := v.documentService
	ctx := v.ctx
	id := result.ID
	return func() tea.Msg {
		rec, err := svc.Get(ctx, id)
		return messages.DocumentLoaded{Record: rec, Err: err}
	}
}

func (v *View) revealSelected() tea.Cmd {
	result := v.list.SelectedResult()
	if result == nil || v.documentService == nil {
		return nil
	}
	svc := v.documentService
	ctx := v.ctx
	id := result.ID
	return func() tea.Msg {
		return messages.DocumentRevealed{ID: id, Err: svc.Reveal(ctx, id)}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return
	}

	v.err = nil
	v.response = msg.Response
	v.list.SetResults(msg.Response.Results)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetMessage("")
	v.statusbar.SetResponse(msg.Response)
	v.focusInput = false
	v.input.Blur()
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)
	sections = append(sections, v.styles.Title.Render("docsift"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.list.View(), "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-8) // header, input, status
	v.statusbar.SetWidth(width)
}

// Query returns the last submitted query.
func (v *View) Query() string {
	return v.query
}

// Page returns the current results page.
func (v *View) Page() int {
	return v.page
}

// Mode returns the selected search mode.
func (v *View) Mode() domain.SearchMode {
	return v.input.Mode()
}

// Results returns the current page of results.
func (v *View) Results() []domain.SearchResult {
	return v.list.Results()
}

// SelectedResult returns the currently selected result.
func (v *View) SelectedResult() *domain.SearchResult {
	return v.list.SelectedResult()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Reset returns the view to an empty input.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetResults(nil)
	v.query = ""
	v.page = 1
	v.response = nil
	v.err = nil
	v.statusbar.Clear()
}

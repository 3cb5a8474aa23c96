// Package scan provides the scan progress view for the TUI.
package scan

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docsift/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docsift/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docsift/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docsift/internal/core/domain"
)

// maxShownErrors caps the error lines in the final summary.
const maxShownErrors = 5

// View renders a running scan: spinner, progress bar, counters and the
// file being processed. It quits the program once the scan finishes.
type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	spinner  spinner.Model
	progress progress.Model
	root     string
	started  time.Time

	current   domain.ScanProgress
	session   *domain.ScanSession
	err       error
	done      bool
	cancelled bool
	cancel    func()
	width     int
}

var _ tea.Model = (*View)(nil)

// NewView creates a scan view for root. cancel is invoked on ctrl+c.
func NewView(s *styles.Styles, root string, cancel func()) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(s.Subtitle))
	bar := progress.New(
		progress.WithGradient(s.Theme().ProgressStart, s.Theme().ProgressEnd),
		progress.WithWidth(50),
	)
	return &View{
		styles:   s,
		keymap:   keymap.DefaultKeyMap(),
		spinner:  sp,
		progress: bar,
		root:     root,
		started:  time.Now(),
		current:  domain.ScanProgress{Phase: domain.PhaseScanning},
		cancel:   cancel,
		width:    80,
	}
}

// Init starts the spinner.
func (v *View) Init() tea.Cmd {
	return v.spinner.Tick
}

// Update handles progress, completion, resize and key messages.
func (v *View) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		w := msg.Width - 10
		if w > 80 {
			w = 80
		}
		if w < 10 {
			w = 10
		}
		v.progress.Width = w
		return v, nil

	case tea.KeyMsg:
		if keymap.Matches(msg.String(), v.keymap.Quit) && !v.cancelled {
			v.cancelled = true
			if v.cancel != nil {
				v.cancel()
			}
		}
		return v, nil

	case messages.ScanProgressed:
		v.current = msg.Progress
		return v, nil

	case messages.ScanFinished:
		v.done = true
		v.session = msg.Session
		v.err = msg.Err
		return v, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}
	return v, nil
}

// View renders the scan state.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Scanning " + v.root))
	b.WriteString("\n\n")

	if v.done {
		b.WriteString(v.summary())
		return b.String()
	}

	status := phaseLabel(v.current.Phase)
	if v.cancelled {
		status = "Cancelling..."
	}
	fmt.Fprintf(&b, "%s %s\n\n", v.spinner.View(), status)
	b.WriteString(v.progress.ViewAs(v.current.Percent()))
	b.WriteString("\n\n")
	b.WriteString(v.counters(v.current.Processed, v.current.Total, v.current.New, v.current.Updated, v.current.Errors))
	b.WriteString("\n")
	if v.current.CurrentFile != "" {
		b.WriteString(v.styles.Muted.Render(shorten(v.current.CurrentFile, v.width-4)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("ctrl+c: cancel"))
	return b.String()
}

func (v *View) counters(processed, total, created, updated, errs int) string {
	line := fmt.Sprintf("Processed %d/%d · new %d · updated %d", processed, total, created, updated)
	out := v.styles.Normal.Render(line)
	if errs > 0 {
		out += v.styles.Error.Render(fmt.Sprintf(" · errors %d", errs))
	}
	return out
}

func (v *View) summary() string {
	var b strings.Builder
	if v.session == nil {
		if v.err != nil {
			b.WriteString(v.styles.Error.Render("Scan failed: " + v.err.Error()))
			b.WriteString("\n")
		}
		return b.String()
	}

	s := v.session
	if s.Status == domain.ScanCompleted {
		b.WriteString(v.styles.Success.Render(fmt.Sprintf("Scan completed in %s", time.Since(v.started).Round(time.Second))))
	} else {
		b.WriteString(v.styles.Error.Render("Scan failed"))
	}
	b.WriteString("\n")
	b.WriteString(v.counters(s.ProcessedFiles, s.TotalFiles, s.NewFiles, s.UpdatedFiles, len(s.Errors)))
	fmt.Fprintf(&b, "\n%s\n", v.styles.Muted.Render(fmt.Sprintf("Unchanged %d", s.SkippedFiles)))

	for i, e := range s.Errors {
		if i == maxShownErrors {
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  ... %d more", len(s.Errors)-maxShownErrors)))
			b.WriteString("\n")
			break
		}
		b.WriteString(v.styles.Error.Render("  " + shorten(e, v.width-4)))
		b.WriteString("\n")
	}
	return b.String()
}

func phaseLabel(p domain.ScanPhase) string {
	switch p {
	case domain.PhaseScanning:
		return "Discovering files..."
	case domain.PhaseProcessing:
		return "Processing..."
	case domain.PhaseIndexing:
		return "Indexing..."
	case domain.PhaseCompleted:
		return "Completed"
	case domain.PhaseFailed:
		return "Failed"
	}
	return string(p)
}

// shorten keeps the tail of a long path, which carries the file name.
func shorten(s string, width int) string {
	if width < 20 {
		width = 20
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	tail := string(runes[len(runes)-(width-4):])
	if i := strings.IndexRune(tail, filepath.Separator); i > 0 {
		tail = tail[i:]
	}
	return "..." + tail
}

// Session returns the finished session, or nil while running.
func (v *View) Session() *domain.ScanSession {
	return v.session
}

// Err returns the error the scan finished with.
func (v *View) Err() error {
	return v.err
}

// Done reports whether the scan has finished.
func (v *View) Done() bool {
	return v.done
}

// Cancelled reports whether the user asked to stop the scan.
func (v *View) Cancelled() bool {
	return v.cancelled
}

package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docsift/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docsift/internal/adapters/driving/tui/views/scan"
	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driving"
)

// ScanRequest describes a scan to run under the progress view.
type ScanRequest struct {
	Root    string
	Options domain.ScanOptions

	// Output defaults to the process terminal. When Output is set, keys are
	// read from Input, and a nil Input disables keyboard handling.
	Output io.Writer
	Input  io.Reader
}

// RunScan runs a scan while rendering its progress. ctrl+c cancels the
// scan; the partially completed session is still returned.
func RunScan(
	ctx context.Context,
	orchestrator driving.ScanOrchestrator,
	req ScanRequest,
) (*domain.ScanSession, error) {
	if orchestrator == nil {
		return nil, ErrMissingScanOrchestrator
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	view := scan.NewView(nil, req.Root, cancel)
	opts := []tea.ProgramOption{}
	if req.Output != nil {
		opts = append(opts, tea.WithOutput(req.Output), tea.WithInput(req.Input))
	}
	p := tea.NewProgram(view, opts...)

	type outcome struct {
		session *domain.ScanSession
		err     error
	}
	done := make(chan outcome, 1)

	go func() {
		session, err := orchestrator.Scan(ctx, req.Root, req.Options, func(pr domain.ScanProgress) {
			p.Send(messages.ScanProgressed{Progress: pr})
		})
		done <- outcome{session: session, err: err}
		p.Send(messages.ScanFinished{Session: session, Err: err})
	}()

	_, runErr := p.Run()
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		cancel()
		res := <-done
		return res.session, fmt.Errorf("progress view: %w", runErr)
	}
	res := <-done
	return res.session, res.err
}

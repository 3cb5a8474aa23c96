package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ledongthuc/pdf"
)

// NativeExtractor reads the text layer with the pure-Go PDF reader.
type NativeExtractor struct{}

// Name implements Extractor.
func (NativeExtractor) Name() string { return "ledongthuc-pdf" }

// Extract implements Extractor. Malformed files can panic inside the
// reader; those panics are converted to errors.
func (NativeExtractor) Extract(ctx context.Context, path string) (ex Extraction, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return Extraction{}, err
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return Extraction{}, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return Extraction{}, fmt.Errorf("read text layer: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return Extraction{}, fmt.Errorf("read text layer: %w", err)
	}

	return Extraction{Text: buf.String(), Pages: r.NumPage()}, nil
}

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found: install poppler-utils to enable the second PDF engine")

// CommandRunner executes external commands.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// PopplerExtractor shells out to poppler's pdftotext.
type PopplerExtractor struct {
	runner   CommandRunner
	lookPath func(string) (string, error)
}

// NewPopplerExtractor creates an extractor that runs the system pdftotext.
func NewPopplerExtractor() *PopplerExtractor {
	return NewPopplerExtractorWithRunner(execRunner{}, exec.LookPath)
}

// NewPopplerExtractorWithRunner creates an extractor with a custom command
// runner and binary lookup (useful for testing).
func NewPopplerExtractorWithRunner(runner CommandRunner, lookPath func(string) (string, error)) *PopplerExtractor {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	return &PopplerExtractor{runner: runner, lookPath: lookPath}
}

// Name implements Extractor.
func (e *PopplerExtractor) Name() string { return "pdftotext" }

// Available reports whether pdftotext can be found on PATH.
func (e *PopplerExtractor) Available() bool {
	_, err := e.lookPath("pdftotext")
	return err == nil
}

// Extract implements Extractor. Pages are counted from the form feeds
// pdftotext emits between pages.
func (e *PopplerExtractor) Extract(ctx context.Context, path string) (Extraction, error) {
	if !e.Available() {
		return Extraction{}, ErrPDFToolNotFound
	}

	out, err := e.runner.Run(ctx, "pdftotext", "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		return Extraction{}, fmt.Errorf("pdftotext: %w", err)
	}

	text := string(out)
	pages := strings.Count(text, "\f")
	if pages == 0 && strings.TrimSpace(text) != "" {
		pages = 1
	}
	return Extraction{Text: strings.ReplaceAll(text, "\f", "\n"), Pages: pages}, nil
}

// InstallInstructions returns platform hints for installing pdftotext.
func InstallInstructions() string {
	return `pdftotext is provided by poppler:
  macOS:         brew install poppler
  Debian/Ubuntu: apt install poppler-utils
  Fedora:        dnf install poppler-utils`
}

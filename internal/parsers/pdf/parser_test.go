package pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubExtractor returns a fixed result.
type stubExtractor struct {
	name  string
	text  string
	pages int
	err   error
	calls int
}

func (s *stubExtractor) Name() string { return s.name }

func (s *stubExtractor) Extract(_ context.Context, _ string) (Extraction, error) {
	s.calls++
	return Extraction{Text: s.text, Pages: s.pages}, s.err
}

// mockRunner records the command and returns canned output.
type mockRunner struct {
	output []byte
	err    error
	name   string
	args   []string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	return m.output, m.err
}

func found(string) (string, error)   { return "/usr/bin/pdftotext", nil }
func missing(string) (string, error) { return "", errors.New("not found") }

var longText = strings.Repeat("quarterly revenue grew in every region ", 3)

func TestParse_FirstTierUsed(t *testing.T) {
	tier1 := &stubExtractor{name: "one", text: longText, pages: 4}
	tier2 := &stubExtractor{name: "two", text: longText}
	p := NewWithExtractors(50, tier1, tier2)

	doc, err := p.Parse(context.Background(), "/docs/Annual Report.pdf")

	require.NoError(t, err)
	assert.Equal(t, "Annual Report", doc.Title)
	assert.Equal(t, strings.TrimSpace(longText), doc.Content)
	assert.Equal(t, "one", doc.Metadata["parser"])
	assert.Equal(t, 4, doc.Metadata["pageCount"])
	assert.Equal(t, 18, doc.Metadata["wordCount"])
	assert.Equal(t, 0, tier2.calls)
}

func TestParse_ShortTextFallsThroughToSecondTier(t *testing.T) {
	tier1 := &stubExtractor{name: "one", text: "   scanned   "}
	tier2 := &stubExtractor{name: "two", text: longText, pages: 2}
	p := NewWithExtractors(50, tier1, tier2)

	doc, err := p.Parse(context.Background(), "/docs/scan.pdf")

	require.NoError(t, err)
	assert.Equal(t, "two", doc.Metadata["parser"])
	assert.Equal(t, 1, tier1.calls)
	assert.Equal(t, 1, tier2.calls)
}

func TestParse_ErrorFallsThroughToSecondTier(t *testing.T) {
	tier1 := &stubExtractor{name: "one", err: errors.New("boom")}
	tier2 := &stubExtractor{name: "two", text: longText}
	p := NewWithExtractors(50, tier1, tier2)

	doc, err := p.Parse(context.Background(), "/docs/broken.pdf")

	require.NoError(t, err)
	assert.Equal(t, "two", doc.Metadata["parser"])
	_, hasPages := doc.Metadata["pageCount"]
	assert.False(t, hasPages)
}

func TestParse_AllTiersFailReturnsPlaceholder(t *testing.T) {
	p := NewWithExtractors(50,
		&stubExtractor{name: "one", text: "x"},
		&stubExtractor{name: "two", err: errors.New("no tool")},
	)

	doc, err := p.Parse(context.Background(), "/docs/Invoice 2024.pdf")

	require.NoError(t, err)
	assert.Equal(t, "Invoice 2024", doc.Title)
	assert.Contains(t, doc.Content, "Original file name: Invoice 2024")
	assert.Equal(t, FallbackParserName, doc.Metadata["parser"])
	assert.Equal(t, FallbackError, doc.Metadata["error"])
}

func TestParse_CancelledContextSkipsEngines(t *testing.T) {
	tier1 := &stubExtractor{name: "one", text: longText}
	p := NewWithExtractors(50, tier1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	doc, err := p.Parse(ctx, "/docs/a.pdf")

	require.NoError(t, err)
	assert.Equal(t, 0, tier1.calls)
	assert.Equal(t, FallbackParserName, doc.Metadata["parser"])
}

func TestParse_MissingFileNeverErrors(t *testing.T) {
	p := New()

	doc, err := p.Parse(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))

	require.NoError(t, err)
	assert.Equal(t, FallbackParserName, doc.Metadata["parser"])
}

func TestNativeExtractor_GarbageInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf at all"), 0o600))

	_, err := NativeExtractor{}.Extract(context.Background(), path)

	assert.Error(t, err)
}

func TestPopplerExtractor_RunsPdftotext(t *testing.T) {
	runner := &mockRunner{output: []byte("page one\fpage two\f")}
	e := NewPopplerExtractorWithRunner(runner, found)

	ex, err := e.Extract(context.Background(), "/tmp/a.pdf")

	require.NoError(t, err)
	assert.Equal(t, "pdftotext", runner.name)
	assert.Equal(t, []string{"-layout", "-enc", "UTF-8", "/tmp/a.pdf", "-"}, runner.args)
	assert.Equal(t, 2, ex.Pages)
	assert.Equal(t, "page one\npage two\n", ex.Text)
}

func TestPopplerExtractor_ToolMissing(t *testing.T) {
	runner := &mockRunner{}
	e := NewPopplerExtractorWithRunner(runner, missing)

	_, err := e.Extract(context.Background(), "/tmp/a.pdf")

	assert.ErrorIs(t, err, ErrPDFToolNotFound)
	assert.Empty(t, runner.name)
	assert.False(t, e.Available())
}

func TestPopplerExtractor_CommandFails(t *testing.T) {
	e := NewPopplerExtractorWithRunner(&mockRunner{err: errors.New("exit status 1")}, found)

	_, err := e.Extract(context.Background(), "/tmp/a.pdf")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdftotext")
}

func TestInstallInstructions(t *testing.T) {
	out := InstallInstructions()
	assert.Contains(t, out, "brew install poppler")
	assert.Contains(t, out, "apt install poppler-utils")
}

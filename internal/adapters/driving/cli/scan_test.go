package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsift/internal/core/domain"
)

func TestScanCmd_Use(t *testing.T) {
	assert.Equal(t, "scan [path]", scanCmd.Use)

	types := scanCmd.Flags().Lookup("types")
	require.NotNil(t, types)
	assert.Equal(t, "t", types.Shorthand)
	assert.NotNil(t, scanCmd.Flags().Lookup("profile"))
	assert.NotNil(t, scanCmd.Flags().Lookup("plain"))
}

func TestScanCmd_PlainOutput(t *testing.T) {
	svc, cleanup := setupTestServices()
	defer cleanup()
	root := t.TempDir()

	out, err := execute("scan", root, "--types", "pdf,DOCX", "--hidden")
	require.NoError(t, err)

	require.Len(t, svc.scan.roots, 1)
	assert.Equal(t, root, svc.scan.roots[0])
	assert.Equal(t, []domain.FileType{domain.FileTypePDF, domain.FileTypeDOCX}, svc.scan.opts[0].FileTypes)
	assert.True(t, svc.scan.opts[0].IncludeHidden)

	assert.Contains(t, out, "Scanning "+root)
	assert.Contains(t, out, "processing 1/2")
	assert.Contains(t, out, "Scan completed")
	assert.Contains(t, out, "New:       1")
	assert.Contains(t, out, "Unchanged: 1")
}

func TestScanCmd_Profile(t *testing.T) {
	svc, cleanup := setupTestServices()
	defer cleanup()
	root := t.TempDir()
	profile := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(profile, []byte("exclude: [\"*.tmp\"]\nfile_types: [txt]\ntimeout: 30s\n"), 0o600))

	_, err := execute("scan", root, "--profile", profile, "--timeout", "10s")
	require.NoError(t, err)

	opts := svc.scan.opts[0]
	assert.Equal(t, []string{"*.tmp"}, opts.Exclude)
	assert.Equal(t, []domain.FileType{domain.FileTypeText}, opts.FileTypes)
	assert.Equal(t, 10*time.Second, opts.Timeout)
}

func TestScanCmd_UnknownType(t *testing.T) {
	svc, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("scan", t.TempDir(), "-t", "mp3")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, svc.scan.roots)
}

func TestScanCmd_MissingRoot(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("scan", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestScanCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("scan", t.TempDir(), "--json")
	require.NoError(t, err)

	var session domain.ScanSession
	require.NoError(t, json.Unmarshal(bytes.TrimSpace([]byte(out)), &session))
	assert.Equal(t, "session-1", session.ID)
}

func TestScanCmd_FailureStillPrintsSummary(t *testing.T) {
	svc, cleanup := setupTestServices()
	defer cleanup()
	svc.scan.session = &domain.ScanSession{
		Status: domain.ScanFailed,
		Errors: []string{"a.pdf: parse: broken xref"},
	}
	svc.scan.err = errors.New("cancelled")

	out, err := execute("scan", t.TempDir())
	require.Error(t, err)

	assert.Contains(t, out, "Scan failed")
	assert.Contains(t, out, "a.pdf: parse: broken xref")
}

func TestPrintScanSummary_CapsErrors(t *testing.T) {
	buf := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(buf)

	s := &domain.ScanSession{Status: domain.ScanCompleted}
	for i := 0; i < maxListedErrors+3; i++ {
		s.Errors = append(s.Errors, "broken")
	}
	printScanSummary(cmd, s)

	assert.Contains(t, buf.String(), "... 3 more")
}

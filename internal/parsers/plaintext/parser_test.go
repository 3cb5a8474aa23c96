package plaintext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsift/internal/core/domain"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestParse_UTF8(t *testing.T) {
	path := writeFile(t, "meeting notes.txt", []byte("  line one\nline two  \n"))

	doc, err := New().Parse(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "meeting notes", doc.Title)
	assert.Equal(t, "line one\nline two", doc.Content)
	assert.Equal(t, "utf-8", doc.Metadata["encoding"])
	assert.Equal(t, 4, doc.Metadata["wordCount"])
	assert.Equal(t, 2, doc.Metadata["lineCount"])
}

func TestDecode_ByteOrderMarks(t *testing.T) {
	tests := []struct {
		name     string
		raw      []byte
		want     string
		encoding string
	}{
		{"utf-8 bom", []byte{0xEF, 0xBB, 0xBF, 'h', 'i'}, "hi", "utf-8-bom"},
		{"utf-16le", []byte{0xFF, 0xFE, 'h', 0x00, 'i', 0x00}, "hi", "utf-16le"},
		{"utf-16be", []byte{0xFE, 0xFF, 0x00, 'h', 0x00, 'i'}, "hi", "utf-16be"},
		{"utf-16le cjk", []byte{0xFF, 0xFE, 0x2D, 0x4E, 0x87, 0x65}, "中文", "utf-16le"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, enc, err := Decode(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.encoding, enc)
		})
	}
}

func TestDecode_GB18030Fallback(t *testing.T) {
	// "中文" in GB18030
	got, enc, err := Decode([]byte{0xD6, 0xD0, 0xCE, 0xC4})

	require.NoError(t, err)
	assert.Equal(t, "中文", got)
	assert.Equal(t, "gb18030", enc)
}

func TestDecode_BinaryRejected(t *testing.T) {
	_, _, err := Decode([]byte{'a', 0x00, 'b'})
	assert.ErrorIs(t, err, domain.ErrUnreadable)
}

func TestParse_MissingFile(t *testing.T) {
	_, err := New().Parse(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, domain.ErrUnreadable)
}

func TestParse_MarkdownStripped(t *testing.T) {
	md := "# Release Plan\n\nSee [the board](https://example.com) for **details**.\n\n" +
		"- first item\n- second item\n\n```go\nfmt.Println(1)\n```\n"
	path := writeFile(t, "plan.md", []byte(md))

	doc, err := New().Parse(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "markdown", doc.Metadata["format"])
	assert.Equal(t,
		"Release Plan\n\nSee the board for details.\n\nfirst item\nsecond item\n\nfmt.Println(1)",
		doc.Content)
}

func TestParse_MarkdownKeptWhenDisabled(t *testing.T) {
	path := writeFile(t, "plan.md", []byte("# Title"))

	doc, err := (&Parser{}).Parse(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "# Title", doc.Content)
}

func TestIsTextFile(t *testing.T) {
	assert.True(t, isTextFile("/a/b/readme.MD"))
	assert.True(t, isTextFile("main.go"))
	assert.True(t, isTextFile("/repo/.gitignore"))
	assert.False(t, isTextFile("photo.png"))
	assert.False(t, isTextFile("Makefile"))
}

func TestParse_RejectsNonTextExtension(t *testing.T) {
	path := writeFile(t, "photo.png", []byte("plain words"))

	_, err := New().Parse(context.Background(), path)

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestParse_SourceFile(t *testing.T) {
	path := writeFile(t, "main.go", []byte("package main\n"))

	doc, err := New().Parse(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "package main", doc.Content)
}

package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsift/internal/core/domain"
)

func TestResolveRoot(t *testing.T) {
	dir := t.TempDir()
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.Mkdir(filepath.Join(home, "docs"), 0755))
	file := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "absolute path", input: dir, want: dir},
		{name: "file URI", input: "file://" + dir, want: dir},
		{name: "trailing slash cleaned", input: dir + "/", want: dir},
		{name: "home expansion", input: "~/docs", want: filepath.Join(home, "docs")},
		{name: "bare home", input: "~", want: home},
		{name: "empty", input: "  ", wantErr: true},
		{name: "missing", input: filepath.Join(dir, "nope"), wantErr: true},
		{name: "regular file", input: file, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveRoot(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

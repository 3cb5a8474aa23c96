package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/docsift/internal/core/domain"
)

// ResolveRoot turns user input into an absolute, cleaned directory path.
// It accepts file:// URIs and a leading ~ for the home directory.
func ResolveRoot(input string) (string, error) {
	p := strings.TrimSpace(input)
	p = strings.TrimPrefix(p, "file://")
	if p == "" {
		return "", fmt.Errorf("%w: empty root path", domain.ErrInvalidInput)
	}

	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home directory: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve root path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: root path error: %v", domain.ErrInvalidInput, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: root path is not a directory: %s", domain.ErrInvalidInput, abs)
	}
	return abs, nil
}

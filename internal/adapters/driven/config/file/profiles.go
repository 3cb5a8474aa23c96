package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/docsift/internal/core/domain"
)

// LoadScanProfile reads scan options from a YAML file such as:
//
//	include_hidden: false
//	exclude: ["*.tmp", "drafts"]
//	file_types: [pdf, docx]
//	timeout: 90s
func LoadScanProfile(path string) (domain.ScanOptions, error) {
	var opts domain.ScanOptions

	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("read scan profile: %w", err)
	}

	var raw struct {
		IncludeHidden bool     `yaml:"include_hidden"`
		Exclude       []string `yaml:"exclude"`
		FileTypes     []string `yaml:"file_types"`
		Timeout       string   `yaml:"timeout"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return opts, fmt.Errorf("%w: parse scan profile %s: %v", domain.ErrInvalidInput, path, err)
	}

	opts.IncludeHidden = raw.IncludeHidden
	for _, pattern := range raw.Exclude {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return opts, fmt.Errorf("%w: bad exclude pattern %q", domain.ErrInvalidInput, pattern)
		}
		opts.Exclude = append(opts.Exclude, pattern)
	}
	for _, ft := range raw.FileTypes {
		t := domain.FileType(ft)
		if !t.IsValid() {
			return opts, fmt.Errorf("%w: unknown file type %q", domain.ErrInvalidInput, ft)
		}
		opts.FileTypes = append(opts.FileTypes, t)
	}
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil || d <= 0 {
			return opts, fmt.Errorf("%w: bad timeout %q", domain.ErrInvalidInput, raw.Timeout)
		}
		opts.Timeout = d
	}
	return opts, nil
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docsift/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docsift/internal/adapters/driving/tui"
	"github.com/custodia-labs/docsift/internal/connectors/filesystem"
	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driving"
	"github.com/custodia-labs/docsift/internal/logger"
)

// maxListedErrors caps the per-file errors printed after a scan.
const maxListedErrors = 10

var (
	scanProfile string
	scanHidden  bool
	scanExclude []string
	scanTypes   []string
	scanTimeout time.Duration
	scanPlain   bool
	scanJSON    bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a folder and ingest new or changed documents",
	Long: `Walks the folder recursively and ingests every supported file that is new
or whose content changed since the last scan. Each document is parsed,
summarised, classified and pushed to the full-text index and vector store.

When stdout is a terminal a live progress view is shown; ctrl+c cancels the
scan and keeps what was already ingested.

A YAML scan profile can preset the options:

  include_hidden: false
  exclude: ["*.tmp", "drafts"]
  file_types: [pdf, docx]
  timeout: 60s`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanProfile, "profile", "", "YAML scan profile")
	scanCmd.Flags().BoolVar(&scanHidden, "hidden", false, "include hidden files and directories")
	scanCmd.Flags().StringSliceVar(&scanExclude, "exclude", nil, "glob patterns of names to skip")
	scanCmd.Flags().StringSliceVarP(&scanTypes, "types", "t", nil, "restrict to file types (pdf, docx, xlsx, pptx, txt, image, ofd)")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 0, "per-file processing limit (default 2m)")
	scanCmd.Flags().BoolVar(&scanPlain, "plain", false, "print line based progress instead of the live view")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "output the session as JSON")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanOrchestrator == nil {
		return errors.New("scan orchestrator not configured")
	}

	root, err := filesystem.ResolveRoot(args[0])
	if err != nil {
		return err
	}
	opts, err := scanOptions(cmd)
	if err != nil {
		return err
	}

	var session *domain.ScanSession
	if !scanPlain && !scanJSON && isTerminal(cmd.OutOrStdout()) {
		session, err = tui.RunScan(cmd.Context(), scanOrchestrator, tui.ScanRequest{Root: root, Options: opts})
	} else {
		if !scanJSON {
			cmd.Printf("Scanning %s\n", root)
		}
		session, err = scanOrchestrator.Scan(cmd.Context(), root, opts, plainProgress(cmd))
	}

	if session != nil {
		if scanJSON {
			if jerr := printJSON(cmd, session); jerr != nil {
				return jerr
			}
		} else {
			printScanSummary(cmd, session)
		}
	}
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	return nil
}

// scanOptions merges the profile, if any, with explicitly set flags.
func scanOptions(cmd *cobra.Command) (domain.ScanOptions, error) {
	var opts domain.ScanOptions
	if scanProfile != "" {
		profile, err := file.LoadScanProfile(scanProfile)
		if err != nil {
			return opts, err
		}
		opts = profile
	}

	flags := cmd.Flags()
	if flags.Changed("hidden") {
		opts.IncludeHidden = scanHidden
	}
	if flags.Changed("exclude") {
		opts.Exclude = scanExclude
	}
	if flags.Changed("timeout") {
		opts.Timeout = scanTimeout
	}
	if flags.Changed("types") {
		types, err := parseFileTypes(scanTypes)
		if err != nil {
			return opts, err
		}
		opts.FileTypes = types
	}
	return opts, nil
}

func parseFileTypes(values []string) ([]domain.FileType, error) {
	types := make([]domain.FileType, 0, len(values))
	for _, v := range values {
		ft := domain.FileType(strings.ToLower(strings.TrimSpace(v)))
		if !ft.IsValid() {
			return nil, fmt.Errorf("%w: unknown file type %q", domain.ErrInvalidInput, v)
		}
		types = append(types, ft)
	}
	return types, nil
}

// plainProgress prints one line per phase change; per-file lines are verbose only.
func plainProgress(cmd *cobra.Command) driving.ProgressFunc {
	if scanJSON {
		return nil
	}
	var last domain.ScanPhase
	return func(p domain.ScanProgress) {
		if p.Phase != last {
			last = p.Phase
			cmd.Printf("  %-10s %d/%d\n", p.Phase, p.Processed, p.Total)
		}
		if p.CurrentFile != "" {
			logger.Debug("[%d/%d] %s", p.Processed, p.Total, p.CurrentFile)
		}
	}
}

func printScanSummary(cmd *cobra.Command, s *domain.ScanSession) {
	cmd.Println()
	cmd.Printf("Scan %s: %s\n", s.Status, s.RootPath)
	cmd.Printf("  Files:     %d found, %d processed\n", s.TotalFiles, s.ProcessedFiles)
	cmd.Printf("  New:       %d\n", s.NewFiles)
	cmd.Printf("  Updated:   %d\n", s.UpdatedFiles)
	cmd.Printf("  Unchanged: %d\n", s.SkippedFiles)
	cmd.Printf("  Errors:    %d\n", len(s.Errors))
	if s.CompletedAt != nil {
		cmd.Printf("  Duration:  %s\n", s.CompletedAt.Sub(s.StartedAt).Round(time.Millisecond))
	}

	for i, e := range s.Errors {
		if i == maxListedErrors {
			cmd.Printf("    ... %d more\n", len(s.Errors)-maxListedErrors)
			break
		}
		cmd.Printf("    %s\n", e)
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

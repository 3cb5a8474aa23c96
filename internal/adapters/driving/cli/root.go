// Package cli provides the cobra command tree for docsift.
package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsift/internal/core/ports/driving"
	"github.com/custodia-labs/docsift/internal/logger"
)

// version is set at build time.
var version = "dev"

// Services aggregates the driving ports the commands call into.
type Services struct {
	Scan        driving.ScanOrchestrator
	Search      driving.SearchService
	Document    driving.DocumentService
	Settings    driving.SettingsService
	Maintenance driving.MaintenanceService

	// Accept filters watcher events down to ingestible files. Nil accepts all.
	Accept func(path string) bool
}

// Bootstrap builds the services for a data directory. An empty dataDir
// selects the default location. The returned closer releases the stores.
type Bootstrap func(ctx context.Context, dataDir string) (*Services, func() error, error)

// Service instances used by the commands.
var (
	scanOrchestrator   driving.ScanOrchestrator
	searchService      driving.SearchService
	documentService    driving.DocumentService
	settingsService    driving.SettingsService
	maintenanceService driving.MaintenanceService
	acceptFile         func(path string) bool
)

var (
	bootstrap     Bootstrap
	closeServices func() error
	verbose       bool
	dataDir       string
)

// skipBootstrap marks commands that run without opening the stores.
const skipBootstrap = "skip-bootstrap"

var rootCmd = &cobra.Command{
	Use:   "docsift",
	Short: "Local document ingestion and hybrid search",
	Long: `docsift scans local folders, extracts text from PDF, Office, text and
image files, classifies each document into a fixed set of categories and
makes the corpus searchable with combined full-text and semantic ranking.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.docsift)")
}

// SetServices installs the services used by the commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	scanOrchestrator = s.Scan
	searchService = s.Search
	documentService = s.Document
	settingsService = s.Settings
	maintenanceService = s.Maintenance
	acceptFile = s.Accept
}

// SetBootstrap registers the function that builds services once flags are parsed.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command and releases any services it opened.
func Execute(ctx context.Context) error {
	rootCmd.SetOut(os.Stdout)
	err := rootCmd.ExecuteContext(ctx)
	if closeServices != nil {
		if cerr := closeServices(); cerr != nil {
			err = errors.Join(err, cerr)
		}
		closeServices = nil
	}
	return err
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if bootstrap == nil || cmd.Annotations[skipBootstrap] == "true" {
		return nil
	}

	services, closer, err := bootstrap(cmd.Context(), dataDir)
	if err != nil {
		return err
	}
	SetServices(services)
	closeServices = closer
	return nil
}

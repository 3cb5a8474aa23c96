package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsift/internal/adapters/driving/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API over HTTP",
	Long: `Starts the HTTP API used by web front ends:

  GET    /health
  GET    /api/search?q=&mode=&category=&type=&page=&limit=
  GET    /api/search/suggestions?q=
  GET    /api/documents
  GET    /api/documents/:id
  DELETE /api/documents/:id
  POST   /api/documents/:id/ask
  GET    /api/documents/:id/download
  POST   /api/documents/:id/reveal
  GET    /api/categories
  GET    /api/stats
  POST   /api/scan
  GET    /api/scan/status
  GET    /api/scan/history
  GET    /api/settings
  PUT    /api/settings
  POST   /api/settings/test
  POST   /api/admin/reindex
  POST   /api/admin/clear`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "127.0.0.1:8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Scan:        scanOrchestrator,
		Search:      searchService,
		Document:    documentService,
		Settings:    settingsService,
		Maintenance: maintenanceService,
	})
	if err != nil {
		return err
	}

	cmd.Printf("API listening on http://%s\n", serveAddr)
	return server.Run(cmd.Context(), serveAddr)
}

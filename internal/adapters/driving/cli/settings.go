package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docsift/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the AI provider and the full-text search service.

Settings are stored in config.toml inside the data directory. A setting that
is not stored falls back to an environment variable named after the key,
for example meilisearch.host reads MEILISEARCH_HOST.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set key=value [key=value...]",
	Short: "Update settings",
	Long: `Update one or more settings.

Available keys:
  ai.mode              off, dashscope or private
  ai.classifier        rules or ai
  dashscope.api_key    DashScope API key
  private.base_url     OpenAI compatible endpoint for the private provider
  private.api_key      API key for the private provider
  private.model        model name for the private provider
  meilisearch.host     full-text search service URL
  meilisearch.api_key  full-text search service key

Pass a sensitive key without "=value" to be prompted for it without echo.
Empty values leave the stored value unchanged.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSettingsSet,
}

var settingsTestCmd = &cobra.Command{
	Use:       "test [llm|meilisearch]",
	Short:     "Check connectivity to a configured service",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"llm", "meilisearch"},
	RunE:      runSettingsTest,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsTestCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	views, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()
	for _, v := range views {
		value := v.Value
		if !v.Configured {
			value = "(not set)"
		}
		cmd.Printf("  %-20s %s\n", v.Key, value)
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	values := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok {
			if !domain.IsSettingKey(key) || !domain.IsSensitiveSetting(key) {
				return fmt.Errorf("%w: expected key=value, got %q", domain.ErrInvalidInput, arg)
			}
			cmd.Printf("%s: ", key)
			value = readPassword(cmd)
			cmd.Println()
		}
		values[key] = strings.TrimSpace(value)
	}

	updated, err := settingsService.Update(values)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	if len(updated) == 0 {
		cmd.Println("No settings changed.")
		return nil
	}
	cmd.Printf("Updated: %s\n", strings.Join(updated, ", "))
	return nil
}

func runSettingsTest(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	target := args[0]
	cmd.Printf("Testing %s... ", target)
	if err := settingsService.Test(cmd.Context(), target); err != nil {
		cmd.Println("failed")
		return fmt.Errorf("%s check failed: %w", target, err)
	}
	cmd.Println("ok")
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(cmd *cobra.Command) string {
	// Read without echo when attached to a terminal.
	if cmd.InOrStdin() == os.Stdin && term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(bufio.NewReader(cmd.InOrStdin()))
}

package driving

import (
	"context"

	"github.com/custodia-labs/docsift/internal/core/domain"
)

// SettingsService manages named string settings.
type SettingsService interface {
	// Get returns every setting in masked read-back form.
	Get() ([]domain.SettingView, error)

	// Update writes each known key whose value is present and non-empty,
	// leaving the rest unchanged. It returns the keys that were written.
	Update(values map[string]string) ([]string, error)

	// Value returns the unmasked value of a setting, falling back to the
	// environment when it has not been stored.
	Value(key string) string

	// Test checks connectivity to a named external service
	// ("llm" or "meilisearch").
	Test(ctx context.Context, target string) error
}

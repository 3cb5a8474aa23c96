// Package ai builds the chat client selected by the AI settings.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docsift/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docsift/internal/core/domain"
)

// pingTimeout is the maximum time to wait for connectivity validation.
const pingTimeout = 5 * time.Second

// Settings is the read side of the settings service.
type Settings interface {
	Value(key string) string
}

// CreateChatClient creates the chat client for the configured ai.mode.
// Returns nil when AI is off.
func CreateChatClient(settings Settings) (*openai.Client, error) {
	switch mode := settings.Value(domain.SettingAIMode); mode {
	case "", domain.AIModeOff:
		return nil, nil

	case domain.AIModeDashScope:
		return openai.New(openai.DashScopeConfig(settings.Value(domain.SettingDashScopeAPIKey)))

	case domain.AIModePrivate:
		baseURL := settings.Value(domain.SettingPrivateBaseURL)
		if baseURL == "" {
			return nil, fmt.Errorf("%w: %s is required in private mode",
				domain.ErrLLMUnavailable, domain.SettingPrivateBaseURL)
		}
		return openai.New(openai.Config{
			APIKey:  settings.Value(domain.SettingPrivateAPIKey),
			BaseURL: baseURL,
			Model:   settings.Value(domain.SettingPrivateModel),
		})

	default:
		return nil, fmt.Errorf("%w: unknown ai.mode %q", domain.ErrInvalidInput, mode)
	}
}

// ValidateChatConfig creates a client from the current settings and pings it.
func ValidateChatConfig(ctx context.Context, settings Settings) error {
	client, err := CreateChatClient(settings)
	if err != nil {
		return err
	}
	if client == nil {
		return fmt.Errorf("%w: ai.mode is off", domain.ErrLLMUnavailable)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("%w: service unreachable: %w", domain.ErrLLMUnavailable, err)
	}
	return nil
}

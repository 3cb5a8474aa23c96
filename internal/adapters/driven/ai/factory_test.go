package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsift/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docsift/internal/core/domain"
)

type mapSettings map[string]string

func (m mapSettings) Value(key string) string { return m[key] }

func TestCreateChatClient(t *testing.T) {
	tests := []struct {
		name      string
		settings  mapSettings
		wantNil   bool
		wantErr   error
		wantModel string
	}{
		{
			name:     "unset mode is off",
			settings: mapSettings{},
			wantNil:  true,
		},
		{
			name:     "off mode returns nil",
			settings: mapSettings{domain.SettingAIMode: domain.AIModeOff},
			wantNil:  true,
		},
		{
			name: "dashscope uses the preset model",
			settings: mapSettings{
				domain.SettingAIMode:          domain.AIModeDashScope,
				domain.SettingDashScopeAPIKey: "sk-test",
			},
			wantModel: openai.DashScopeModel,
		},
		{
			name:     "dashscope without key is unavailable",
			settings: mapSettings{domain.SettingAIMode: domain.AIModeDashScope},
			wantNil:  true,
			wantErr:  domain.ErrLLMUnavailable,
		},
		{
			name: "private uses the configured model",
			settings: mapSettings{
				domain.SettingAIMode:         domain.AIModePrivate,
				domain.SettingPrivateBaseURL: "http://llm.internal/v1",
				domain.SettingPrivateAPIKey:  "key",
				domain.SettingPrivateModel:   "qwen2.5-7b",
			},
			wantModel: "qwen2.5-7b",
		},
		{
			name: "private without base url is unavailable",
			settings: mapSettings{
				domain.SettingAIMode:        domain.AIModePrivate,
				domain.SettingPrivateAPIKey: "key",
			},
			wantNil: true,
			wantErr: domain.ErrLLMUnavailable,
		},
		{
			name:     "unknown mode is rejected",
			settings: mapSettings{domain.SettingAIMode: "cloud"},
			wantNil:  true,
			wantErr:  domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := CreateChatClient(tt.settings)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			if tt.wantNil {
				assert.Nil(t, client)
				return
			}
			require.NotNil(t, client)
			assert.Equal(t, tt.wantModel, client.ModelName())
		})
	}
}

func TestValidateChatConfig(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" || r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"data":[]}`)) //nolint:errcheck
	}))
	defer server.Close()

	settings := mapSettings{
		domain.SettingAIMode:         domain.AIModePrivate,
		domain.SettingPrivateBaseURL: server.URL + "/v1",
		domain.SettingPrivateAPIKey:  "good",
	}
	require.NoError(t, ValidateChatConfig(context.Background(), settings))

	settings[domain.SettingPrivateAPIKey] = "bad"
	assert.ErrorIs(t, ValidateChatConfig(context.Background(), settings), domain.ErrLLMUnavailable)
}

func TestValidateChatConfig_Off(t *testing.T) {
	err := ValidateChatConfig(context.Background(), mapSettings{})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

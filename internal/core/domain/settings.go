package domain

import "strings"

// Setting keys.
const (
	SettingAIMode             = "ai.mode"
	SettingAIClassifier       = "ai.classifier"
	SettingDashScopeAPIKey    = "dashscope.api_key"
	SettingPrivateBaseURL     = "private.base_url"
	SettingPrivateAPIKey      = "private.api_key"
	SettingPrivateModel       = "private.model"
	SettingMeilisearchHost    = "meilisearch.host"
	SettingMeilisearchAPIKey  = "meilisearch.api_key"
	defaultMaskedPlaceholder  = "********"
	maskedVisiblePrefixLength = 8
)

// AI modes.
const (
	AIModeOff       = "off"
	AIModeDashScope = "dashscope"
	AIModePrivate   = "private"
)

// Classifier modes.
const (
	ClassifierRules = "rules"
	ClassifierAI    = "ai"
)

// SettingKeys lists every named setting in display order.
var SettingKeys = []string{
	SettingAIMode,
	SettingAIClassifier,
	SettingDashScopeAPIKey,
	SettingPrivateBaseURL,
	SettingPrivateAPIKey,
	SettingPrivateModel,
	SettingMeilisearchHost,
	SettingMeilisearchAPIKey,
}

var nonSensitiveSettings = map[string]bool{
	SettingAIMode:          true,
	SettingAIClassifier:    true,
	SettingPrivateBaseURL:  true,
	SettingPrivateModel:    true,
	SettingMeilisearchHost: true,
}

// IsSettingKey reports whether key is a known setting.
func IsSettingKey(key string) bool {
	for _, k := range SettingKeys {
		if k == key {
			return true
		}
	}
	return false
}

// IsSensitiveSetting reports whether a setting must be masked on read-back.
func IsSensitiveSetting(key string) bool {
	return !nonSensitiveSettings[key]
}

// MaskSetting returns the read-back form of a setting value.
func MaskSetting(key, value string) string {
	if !IsSensitiveSetting(key) {
		return value
	}
	if value == "" {
		return ""
	}
	if len(value) <= maskedVisiblePrefixLength {
		return defaultMaskedPlaceholder
	}
	return value[:maskedVisiblePrefixLength] + "***"
}

// SettingEnvVar returns the environment variable consulted when a setting
// is not stored, e.g. meilisearch.host -> MEILISEARCH_HOST.
func SettingEnvVar(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// SettingView is the masked read-back form of one setting.
type SettingView struct {
	Key        string `json:"key"`
	Value      string `json:"value"`
	Configured bool   `json:"configured"`
	Sensitive  bool   `json:"sensitive"`
}

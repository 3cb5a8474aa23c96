package driven

// ConfigStore persists named settings. Keys are dotted, e.g. "ai.mode".
type ConfigStore interface {
	// Get returns the raw value and whether the key is stored.
	Get(key string) (any, bool)

	// GetString returns the value as a string, or "" when missing or not a string.
	GetString(key string) string

	// Set stores a value and persists it immediately.
	Set(key string, value any) error

	// Path returns the backing file path.
	Path() string
}

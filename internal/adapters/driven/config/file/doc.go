// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the docsift home directory (~/.docsift).
//
// Adapters:
//   - ConfigStore: TOML-based settings storage
//   - PromptStore: user-editable prompt templates with embedded defaults
//   - LoadScanProfile: YAML scan profiles
package file

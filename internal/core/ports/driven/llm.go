// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// ChatClient sends chat-completion requests to an OpenAI-compatible API.
// This is an optional service - when nil, AI features degrade to their
// rule-based or placeholder equivalents.
type ChatClient interface {
	// Chat sends messages and returns the first choice's text.
	// Non-2xx responses are returned as errors.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the default text model.
	ModelName() string

	// VisionModelName returns the model used for image messages.
	VisionModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string

	// Images are sent as inline data URLs alongside the text.
	Images []ImageData
}

// ImageData is a base64-encoded image payload.
type ImageData struct {
	MIMEType string
	Base64   string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// Model overrides the client's default model.
	Model string

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}

// Package openai provides a chat-completion client for OpenAI-compatible APIs,
// including DashScope's compatible mode and self-hosted gateways.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.ChatClient = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultModel       = "gpt-4o-mini"
	DefaultTimeout     = 120 * time.Second
	DefaultMaxTokens   = 1500
	DefaultTemperature = 0.3

	// DefaultRequestsPerSecond paces outgoing requests.
	DefaultRequestsPerSecond = 2.0

	DashScopeBaseURL     = "https://dashscope.aliyuncs.com/compatible-mode/v1"
	DashScopeModel       = "qwen3.5-plus"
	DashScopeFastModel   = "qwen3.5-flash"
	DashScopeVisionModel = "qwen3-vl-plus"

	maxErrorBody = 300
)

// Config holds configuration for the chat client.
type Config struct {
	// APIKey is sent as a bearer token (required).
	APIKey string

	// BaseURL is the API base URL without the /chat/completions suffix.
	BaseURL string

	// Model is the default text model.
	Model string

	// VisionModel is used for messages carrying images. Defaults to Model.
	VisionModel string

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// RequestsPerSecond paces requests. Zero uses the default.
	RequestsPerSecond float64
}

// DashScopeConfig returns the preset for DashScope's compatible mode.
func DashScopeConfig(apiKey string) Config {
	return Config{
		APIKey:      apiKey,
		BaseURL:     DashScopeBaseURL,
		Model:       DashScopeModel,
		VisionModel: DashScopeVisionModel,
	}
}

// Client talks to an OpenAI-compatible /chat/completions endpoint.
type Client struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	visionModel string
	limiter     *rate.Limiter

	mu          sync.Mutex
	pausedUntil time.Time
}

// chatCompletionRequest is the /chat/completions request format.
type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []chatCompletionMsg `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature,omitempty"`
}

// chatCompletionMsg carries either a string or a list of content parts.
type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

// chatCompletionResponse is the /chat/completions response format.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// New creates a chat client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required: %w", domain.ErrLLMUnavailable)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = cfg.Model
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}

	return &Client{
		client:      &http.Client{Timeout: cfg.Timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		visionModel: cfg.VisionModel,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}, nil
}

// Chat sends messages and returns the trimmed text of the first choice.
func (c *Client) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", fmt.Errorf("openai: waiting for rate limiter: %w", err)
	}

	reqBody := chatCompletionRequest{
		Model:       opts.Model,
		Messages:    make([]chatCompletionMsg, len(messages)),
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	if reqBody.Model == "" {
		reqBody.Model = c.model
	}
	if reqBody.MaxTokens <= 0 {
		reqBody.MaxTokens = DefaultMaxTokens
	}
	if reqBody.Temperature <= 0 {
		reqBody.Temperature = DefaultTemperature
	}
	for i, msg := range messages {
		reqBody.Messages[i] = toWire(msg)
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		c.pause(resp.Header.Get("Retry-After"))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("openai error (status %d): %s", resp.StatusCode, truncate(string(body), maxErrorBody))
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("openai error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("openai: no response choices returned")
	}
	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

// ModelName returns the default text model.
func (c *Client) ModelName() string {
	return c.model
}

// VisionModelName returns the model used for image messages.
func (c *Client) VisionModelName() string {
	return c.visionModel
}

// Ping validates the service is reachable by checking the /models endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: failed to create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("openai: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// wait blocks on the token bucket and on any server-requested pause.
func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	until := c.pausedUntil
	c.mu.Unlock()

	if d := time.Until(until); d > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
		}
	}
	return nil
}

// pause records a Retry-After header given in seconds.
func (c *Client) pause(retryAfter string) {
	secs, err := strconv.Atoi(strings.TrimSpace(retryAfter))
	if err != nil || secs <= 0 {
		return
	}
	c.mu.Lock()
	c.pausedUntil = time.Now().Add(time.Duration(secs) * time.Second)
	c.mu.Unlock()
}

// toWire converts a message, placing images ahead of the text part.
func toWire(msg driven.ChatMessage) chatCompletionMsg {
	if len(msg.Images) == 0 {
		return chatCompletionMsg{Role: msg.Role, Content: msg.Content}
	}
	parts := make([]contentPart, 0, len(msg.Images)+1)
	for _, img := range msg.Images {
		parts = append(parts, contentPart{
			Type:     "image_url",
			ImageURL: &imageURL{URL: "data:" + img.MIMEType + ";base64," + img.Base64},
		})
	}
	if msg.Content != "" {
		parts = append(parts, contentPart{Type: "text", Text: msg.Content})
	}
	return chatCompletionMsg{Role: msg.Role, Content: parts}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

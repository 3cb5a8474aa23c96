// Package assistant implements the chat-completion backed document features:
// AI classification, summaries, keyword suggestions, Q&A and image description.
//
// Every call carries its own timeout and degrades instead of failing the
// caller: summaries fall back to the rule-based summary, answers to an
// apology, keywords to none.
package assistant

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/docsift/internal/classifier"
	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driven"
	"github.com/custodia-labs/docsift/internal/logger"
)

// Ensure Assistant implements the interfaces.
var (
	_ classifier.Categoriser  = (*Assistant)(nil)
	_ driven.Summariser       = (*Assistant)(nil)
	_ driven.QuestionAnswerer = (*Assistant)(nil)
	_ driven.ImageDescriber   = (*Assistant)(nil)
)

// Default limits.
const (
	DefaultChatTimeout     = 25 * time.Second
	DefaultClassifyTimeout = 40 * time.Second
	DefaultVisionTimeout   = 55 * time.Second
	DefaultLanguage        = "Chinese"

	classifyExcerpt  = 3000
	summaryExcerpt   = 4000
	keywordsExcerpt  = 3000
	answerExcerpt    = 4000
	chatMaxTokens    = 1500
	visionMaxTokens  = 1000
	chatTemperature  = 0.3
	unknownTitle     = "unknown"
	unansweredAnswer = "Sorry, this question could not be answered."
)

var keywordSeparators = regexp.MustCompile(`[,，、\n]`)

// Config tunes the assistant.
type Config struct {
	// FastModel is used for summaries and keywords. Empty uses the client default.
	FastModel string

	// Language is the language image descriptions are written in.
	Language string

	ChatTimeout     time.Duration
	ClassifyTimeout time.Duration
	VisionTimeout   time.Duration
}

// Assistant wraps a ChatClient with document-oriented prompts.
type Assistant struct {
	client  driven.ChatClient
	prompts driven.PromptStore
	cfg     Config
}

// New creates an assistant. prompts may be nil to use DefaultPrompts.
func New(client driven.ChatClient, prompts driven.PromptStore, cfg Config) *Assistant {
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.ChatTimeout == 0 {
		cfg.ChatTimeout = DefaultChatTimeout
	}
	if cfg.ClassifyTimeout == 0 {
		cfg.ClassifyTimeout = DefaultClassifyTimeout
	}
	if cfg.VisionTimeout == 0 {
		cfg.VisionTimeout = DefaultVisionTimeout
	}
	return &Assistant{client: client, prompts: prompts, cfg: cfg}
}

// Available reports whether a chat client is configured.
func (a *Assistant) Available() bool {
	return a != nil && a.client != nil
}

// Categorise asks the model for a single category id. The raw answer is
// returned; callers map unknown ids to the uncategorized bucket.
func (a *Assistant) Categorise(ctx context.Context, title, content string) (string, error) {
	if !a.Available() {
		return "", domain.ErrLLMUnavailable
	}
	if title == "" {
		title = unknownTitle
	}

	messages := []driven.ChatMessage{
		{Role: "system", Content: a.prompt(driven.PromptClassify)},
		{Role: "user", Content: fmt.Sprintf("Title: %s\n\nContent:\n%s", title, truncate(content, classifyExcerpt))},
	}

	out, err := a.chat(ctx, a.cfg.ClassifyTimeout, messages, driven.ChatOptions{})
	if err != nil {
		return "", fmt.Errorf("classify: %w", err)
	}
	return out, nil
}

// Summarise implements driven.Summariser. Any failure falls back to the
// rule-based summary.
func (a *Assistant) Summarise(ctx context.Context, content string, maxLength int) string {
	if !a.Available() {
		return classifier.Summarise(content, maxLength)
	}

	prompt := fmt.Sprintf(a.prompt(driven.PromptSummarise), maxLength, truncate(content, summaryExcerpt))
	out, err := a.chat(ctx, a.cfg.ChatTimeout,
		[]driven.ChatMessage{{Role: "user", Content: prompt}},
		driven.ChatOptions{Model: a.cfg.FastModel})
	if err != nil || out == "" {
		if err != nil {
			logger.Warn("AI summary failed, using rule-based summary: %v", err)
		}
		return classifier.Summarise(content, maxLength)
	}
	return out
}

// Keywords returns up to count model-suggested keywords, or none on failure.
func (a *Assistant) Keywords(ctx context.Context, content string, count int) []string {
	if !a.Available() {
		return nil
	}

	prompt := fmt.Sprintf(a.prompt(driven.PromptKeywords), count, truncate(content, keywordsExcerpt))
	out, err := a.chat(ctx, a.cfg.ChatTimeout,
		[]driven.ChatMessage{{Role: "user", Content: prompt}},
		driven.ChatOptions{Model: a.cfg.FastModel})
	if err != nil {
		logger.Warn("AI keyword extraction failed: %v", err)
		return nil
	}

	var kws []string
	for _, part := range keywordSeparators.Split(out, -1) {
		if kw := strings.TrimSpace(part); kw != "" {
			kws = append(kws, kw)
		}
		if len(kws) == count {
			break
		}
	}
	return kws
}

// Answer implements driven.QuestionAnswerer. It returns ErrLLMUnavailable
// when no client is configured and an apology when the call fails.
func (a *Assistant) Answer(ctx context.Context, question, content string) (string, error) {
	if !a.Available() {
		return "", domain.ErrLLMUnavailable
	}

	prompt := fmt.Sprintf(a.prompt(driven.PromptAnswer), truncate(content, answerExcerpt), question)
	out, err := a.chat(ctx, a.cfg.ClassifyTimeout,
		[]driven.ChatMessage{{Role: "user", Content: prompt}},
		driven.ChatOptions{})
	if err != nil {
		logger.Warn("AI answer failed: %v", err)
		return unansweredAnswer, nil
	}
	return out, nil
}

// DescribeImage implements driven.ImageDescriber.
func (a *Assistant) DescribeImage(ctx context.Context, image driven.ImageData) (string, error) {
	if !a.Available() {
		return "", domain.ErrLLMUnavailable
	}

	messages := []driven.ChatMessage{{
		Role:    "user",
		Content: fmt.Sprintf(a.prompt(driven.PromptDescribeImage), a.cfg.Language),
		Images:  []driven.ImageData{image},
	}}

	out, err := a.chat(ctx, a.cfg.VisionTimeout, messages, driven.ChatOptions{
		Model:     a.client.VisionModelName(),
		MaxTokens: visionMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("describe image: %w", err)
	}
	return out, nil
}

func (a *Assistant) chat(
	ctx context.Context,
	timeout time.Duration,
	messages []driven.ChatMessage,
	opts driven.ChatOptions,
) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if opts.MaxTokens == 0 {
		opts.MaxTokens = chatMaxTokens
	}
	if opts.Temperature == 0 {
		opts.Temperature = chatTemperature
	}

	out, err := a.client.Chat(ctx, messages, opts)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// prompt loads a template from the store, falling back to the default.
func (a *Assistant) prompt(name string) string {
	if a.prompts != nil {
		if p, err := a.prompts.Load(name); err == nil && p != "" {
			return p
		}
	}
	return DefaultPrompts[name]
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

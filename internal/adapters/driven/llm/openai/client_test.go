package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driven"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(Config{
		APIKey:            "sk-test",
		BaseURL:           srv.URL + "/",
		Model:             "text-model",
		VisionModel:       "vision-model",
		RequestsPerSecond: 1000,
	})
	require.NoError(t, err)
	return c
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestNew_Defaults(t *testing.T) {
	c, err := New(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, c.ModelName())
	assert.Equal(t, DefaultModel, c.VisionModelName())
	assert.Equal(t, DefaultBaseURL, c.baseURL)
}

func TestDashScopeConfig(t *testing.T) {
	c, err := New(DashScopeConfig("k"))
	require.NoError(t, err)
	assert.Equal(t, DashScopeModel, c.ModelName())
	assert.Equal(t, DashScopeVisionModel, c.VisionModelName())
	assert.Equal(t, DashScopeBaseURL, c.baseURL)
}

func TestChat_TextMessage(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  tech \n"}}]}`))
	})

	out, err := c.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "classify"}}, driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "tech", out)
	assert.Equal(t, "text-model", got["model"])
	assert.InDelta(t, DefaultTemperature, got["temperature"], 0.001)
	assert.InDelta(t, float64(DefaultMaxTokens), got["max_tokens"], 0.001)
	msgs := got["messages"].([]any)
	assert.Equal(t, "classify", msgs[0].(map[string]any)["content"])
}

func TestChat_ImageMessage(t *testing.T) {
	var raw struct {
		Model    string `json:"model"`
		Messages []struct {
			Content []contentPart `json:"content"`
		} `json:"messages"`
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &raw))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"a cat"}}]}`))
	})

	msg := driven.ChatMessage{
		Role:    "user",
		Content: "describe",
		Images:  []driven.ImageData{{MIMEType: "image/png", Base64: "QUJD"}},
	}
	out, err := c.Chat(context.Background(), []driven.ChatMessage{msg}, driven.ChatOptions{Model: c.VisionModelName()})
	require.NoError(t, err)
	assert.Equal(t, "a cat", out)
	assert.Equal(t, "vision-model", raw.Model)
	require.Len(t, raw.Messages[0].Content, 2)
	assert.Equal(t, "image_url", raw.Messages[0].Content[0].Type)
	assert.Equal(t, "data:image/png;base64,QUJD", raw.Messages[0].Content[0].ImageURL.URL)
	assert.Equal(t, "describe", raw.Messages[0].Content[1].Text)
}

func TestChat_NonSuccessStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	})

	_, err := c.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "x"}}, driven.ChatOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.Contains(t, err.Error(), "upstream down")
}

func TestChat_ErrorPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"message":"bad model","type":"invalid_request"}}`))
	})

	_, err := c.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "x"}}, driven.ChatOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad model")
}

func TestChat_NoChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := c.Chat(context.Background(), nil, driven.ChatOptions{})
	assert.Error(t, err)
}

func TestChat_RetryAfterPausesNextRequest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Chat(context.Background(), nil, driven.ChatOptions{})
	require.Error(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Chat(ctx, nil, driven.ChatOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestChat_ContextTimeout(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	// Runs before the server's Close cleanup.
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Chat(ctx, []driven.ChatMessage{{Role: "user", Content: "x"}}, driven.ChatOptions{})
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/models", r.URL.Path)
			_, _ = w.Write([]byte(`{"data":[]}`))
		})
		assert.NoError(t, c.Ping(context.Background()))
	})

	t.Run("unauthorised", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		err := c.Ping(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "401")
	})
}

func TestClose(t *testing.T) {
	c, err := New(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.NoError(t, c.Close())
}

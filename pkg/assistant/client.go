// Package assistant implements the CV chat subsystem: a rate-limited
// conversation loop that proxies user messages to an OpenAI-compatible
// completion endpoint with the CV content as system context.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const (
	defaultEndpoint = "https://api.openai.com/v1/chat/completions"
	defaultModel    = "gpt-3.5-turbo"

	// maxResponseBytes bounds how much of the completion body is read.
	maxResponseBytes = 1 << 16
)

// Message is one turn sent to the completion endpoint.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature"`
	MaxTokens   uint32    `json:"max_tokens"`
}

type completionResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
		Index        uint32  `json:"index"`
	} `json:"choices"`
}

// ClientConfig tunes the completion client.
type ClientConfig struct {
	Endpoint    string
	Model       string
	MaxTokens   uint32
	Temperature float32
	Timeout     time.Duration
}

// DefaultClientConfig matches the upstream chat-completions defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Endpoint:    defaultEndpoint,
		Model:       defaultModel,
		MaxTokens:   150,
		Temperature: 0.7,
		Timeout:     30 * time.Second,
	}
}

// Client talks to an OpenAI-compatible chat-completions endpoint. The API
// key lives only in memory: it is set by the operator at runtime and never
// persisted.
type Client struct {
	cfg  ClientConfig
	http *http.Client

	mu     sync.RWMutex
	apiKey string
}

// NewClient builds a client. Zero-value config fields fall back to defaults.
func NewClient(cfg ClientConfig) *Client {
	def := DefaultClientConfig()
	if cfg.Endpoint == "" {
		cfg.Endpoint = def.Endpoint
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = def.Temperature
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// SetAPIKey installs or replaces the completion API key.
func (c *Client) SetAPIKey(key string) {
	c.mu.Lock()
	c.apiKey = key
	c.mu.Unlock()
}

// HasAPIKey reports whether a key is installed.
func (c *Client) HasAPIKey() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey != ""
}

// Complete sends the message sequence and returns the first choice's
// content.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	c.mu.RLock()
	key := c.apiKey
	c.mu.RUnlock()
	if key == "" {
		return "", fmt.Errorf("assistant: no API key configured")
	}

	body, err := json.Marshal(completionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("assistant: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("assistant: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("assistant: completion request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("assistant: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("assistant: API error: %s", string(data))
	}

	var parsed completionResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("assistant: parse response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("assistant: no response generated")
	}
	return parsed.Choices[0].Message.Content, nil
}

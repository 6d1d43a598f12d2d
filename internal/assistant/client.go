// Package assistant is a thin proxy in front of an OpenAI-compatible chat
// gateway. It pins the business system prompt, requests a streamed
// completion, and relays the SSE body to the caller untouched.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Error texts surfaced to the visitor for upstream quota failures. Every
// other upstream failure is reported generically.
const (
	MsgRateLimited      = "Rate limit exceeded. Please try again in a moment."
	MsgCreditsExhausted = "AI credits exhausted. Please add credits to continue."
)

var (
	ErrRateLimited      = errors.New(MsgRateLimited)
	ErrCreditsExhausted = errors.New(MsgCreditsExhausted)
)

// Client calls an OpenAI-compatible /v1/chat/completions endpoint.
// Works with vLLM, LiteLLM, OpenRouter, self-hosted models, etc.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient builds an assistant client. baseURL should include the /v1
// prefix, e.g. "https://gateway.example.com/v1". apiKey can be empty for
// local models that do not require authentication.
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		model:   strings.TrimSpace(model),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// StreamChat sends the conversation upstream with the business system
// prompt prepended and returns the raw SSE body for relaying. The caller
// must close the returned reader.
func (c *Client) StreamChat(ctx context.Context, messages []Message) (io.ReadCloser, error) {
	if c.model == "" {
		return nil, fmt.Errorf("assistant model required")
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("at least one message required")
	}

	full := make([]Message, 0, len(messages)+1)
	full = append(full, Message{Role: "system", Content: systemPrompt})
	for _, m := range messages {
		// Client-supplied system turns are demoted so the pinned prompt
		// stays authoritative.
		if m.Role == "system" {
			m.Role = "user"
		}
		full = append(full, m)
	}

	body, err := json.Marshal(chatRequest{Model: c.model, Messages: full, Stream: true})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("assistant request: %w", err)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return nil, ErrRateLimited
		case http.StatusPaymentRequired:
			return nil, ErrCreditsExhausted
		default:
			return nil, fmt.Errorf("assistant api error: %s", resp.Status)
		}
	}
	return resp.Body, nil
}

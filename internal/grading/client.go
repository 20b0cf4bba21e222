// Package grading runs LLM passes over a deck: scoring answer quality
// and rewriting answers for concision. The LLM is an external
// collaborator reached through a chat-completions endpoint; one blocking
// request is issued per batch of cards, sequentially, with no retries.
package grading

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/alexjbarnes/mochi-sync/internal/config"
	mserrors "github.com/alexjbarnes/mochi-sync/internal/errors"
)

// Client calls an OpenRouter-compatible chat-completions endpoint.
type Client struct {
	httpClient *http.Client
	url        string
	apiKey     string
	model      string
	logger     *slog.Logger
}

// NewClient creates an LLM client from the loaded configuration.
// If httpClient is nil, a client with the configured LLM timeout is used.
func NewClient(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.LLMTimeout}
	}
	return &Client{
		httpClient: httpClient,
		url:        cfg.OpenRouterURL,
		apiKey:     cfg.OpenRouterAPIKey,
		model:      cfg.Model,
		logger:     logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

// Complete sends one prompt and returns the completion text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	req := chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}
	req.ResponseFormat.Type = "json_object"

	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshalling completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating completion request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sending completion request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading completion response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &mserrors.RemoteError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	content := gjson.GetBytes(body, "choices.0.message.content")
	if !content.Exists() {
		return "", &mserrors.GradingParseError{Detail: "completion response has no choices[0].message.content"}
	}

	return content.String(), nil
}

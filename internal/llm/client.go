// Package llm is the passthrough to the local AI completion server.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/normanking/pia/internal/apperr"
)

// Client talks to a llama.cpp-style completion server.
type Client struct {
	baseURL string
	enabled bool
	client  *http.Client
}

// New creates a client for the server at baseURL. enabled mirrors the
// llm_enabled config toggle; a disabled client rejects queries locally.
func New(baseURL string, enabled bool) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		enabled: enabled,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether the AI backend is enabled in configuration.
func (c *Client) Enabled() bool {
	return c.enabled
}

// Ping checks if the completion server answers on its API root.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1", nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindUnreachable, "AI server unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperr.New(apperr.KindUnreachable, fmt.Sprintf("AI server unhealthy: status %d", resp.StatusCode))
	}
	return nil
}

type completionRequest struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	TopK        int     `json:"top_k"`
	TopP        float64 `json:"top_p"`
}

type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

// Query sends prompt to the completion endpoint and returns the model's
// text. Failures come back classified: disabled, unreachable or upstream.
func (c *Client) Query(ctx context.Context, prompt string) (string, error) {
	if !c.enabled {
		return "", apperr.New(apperr.KindDisabled, "AI is disabled")
	}
	if err := c.Ping(ctx); err != nil {
		return "", apperr.Wrap(apperr.KindUnreachable, fmt.Sprintf("AI error: server unreachable at %s", c.baseURL), err)
	}

	body, err := json.Marshal(completionRequest{
		Prompt:      prompt,
		MaxTokens:   50,
		Temperature: 0.7,
		TopK:        40,
		TopP:        0.95,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnreachable, "AI request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", apperr.New(apperr.KindUpstream, fmt.Sprintf("AI error: %s", strings.TrimSpace(string(respBody))))
	}

	var completion completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", apperr.Wrap(apperr.KindUpstream, "AI returned an unreadable response", err)
	}
	if len(completion.Choices) == 0 {
		return "", apperr.New(apperr.KindUpstream, "AI returned no completion")
	}

	answer := strings.TrimSpace(completion.Choices[0].Text)
	if answer == "" {
		return "", apperr.New(apperr.KindUpstream, "AI returned no completion")
	}
	return answer, nil
}

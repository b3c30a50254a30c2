// ABOUTME: Client for the external text-generation service producing task suggestions
// ABOUTME: Speaks an OpenAI-compatible chat completions API over HTTP

package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/taskdeck/taskdeck/internal/store"
)

// Suggestion is a single proposed task for a project.
type Suggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Generator defines the narrow interface the web layer uses to reach the
// text-generation service. It is invoked only after session verification and
// the ownership guard have both passed for the target project.
type Generator interface {
	TaskSuggestions(ctx context.Context, title, description string) ([]Suggestion, error)
	Analyze(ctx context.Context, title string, tasks []*store.Task) (string, error)
}

// Config holds the client configuration.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client implements Generator against an OpenAI-compatible chat completions
// endpoint. The HTTP client carries the caller-side timeout; the core does
// not retry.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new text-generation client.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: slog.Default().With("component", "suggest"),
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// TaskSuggestions asks the model for task proposals for a project. Only the
// project's title and description are sent upstream.
func (c *Client) TaskSuggestions(ctx context.Context, title, description string) ([]Suggestion, error) {
	prompt := fmt.Sprintf(`Suggest 5 concrete tasks for the following project.
Respond with a JSON array only, each element an object with "title" and "description" fields.

Project: %s
Description: %s`, title, description)

	content, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var suggestions []Suggestion
	if err := json.Unmarshal([]byte(extractJSONArray(content)), &suggestions); err != nil {
		return nil, fmt.Errorf("parsing suggestions: %w", err)
	}

	return suggestions, nil
}

// Analyze asks the model to assess project progress from its task list.
// The response is free-form markdown.
func (c *Client) Analyze(ctx context.Context, title string, tasks []*store.Task) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Analyze the state of the project %q and give a short progress assessment with recommendations, in markdown.\n\nTasks:\n", title)
	for _, t := range tasks {
		fmt.Fprintf(&sb, "- [%s/%s] %s\n", t.Status, t.Priority, t.Title)
	}
	if len(tasks) == 0 {
		sb.WriteString("(no tasks yet)\n")
	}

	return c.complete(ctx, sb.String())
}

// complete sends a single-message chat completion request and returns the
// assistant's reply text.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling text-generation service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Warn("text-generation service error", "status", resp.StatusCode, "body", string(respBody))
		return "", fmt.Errorf("text-generation service returned status %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("text-generation service returned no choices")
	}

	return chatResp.Choices[0].Message.Content, nil
}

// extractJSONArray trims surrounding prose or code fences the model may wrap
// around a JSON array.
func extractJSONArray(s string) string {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

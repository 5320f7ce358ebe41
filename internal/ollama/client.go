package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

const defaultBaseURL = "http://localhost:11434"

// Message represents a chat message in the Ollama API format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options are the sampling parameters forwarded with a chat request.
// Zero values are omitted so the model defaults apply.
type Options struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// PullProgress is one line of the streamed pull response.
type PullProgress struct {
	Status    string
	Total     int64
	Completed int64
}

// Client communicates with a local Ollama instance through the official API client.
type Client struct {
	baseURL string
	api     *api.Client
}

// New creates a Client targeting the given Ollama base URL. An unparsable
// URL falls back to the default local address.
func New(baseURL string) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		baseURL = defaultBaseURL
		u, _ = url.Parse(defaultBaseURL)
	}
	return &Client{
		baseURL: baseURL,
		api:     api.NewClient(u, &http.Client{}),
	}
}

// BaseURL returns the address the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// IsRunning reports whether the Ollama server answers its heartbeat.
func (c *Client) IsRunning(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.api.Heartbeat(ctx) == nil
}

// ListModels returns the names of all models available in the local Ollama instance.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := c.api.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("requesting model list: %w", err)
	}

	names := make([]string, len(resp.Models))
	for i, m := range resp.Models {
		names[i] = m.Name
	}
	return names, nil
}

// HasModel reports whether the given model name is present locally.
func (c *Client) HasModel(ctx context.Context, name string) bool {
	models, err := c.ListModels(ctx)
	if err != nil {
		return false
	}
	for _, m := range models {
		// Ollama reports "llama2:latest" for a pull of "llama2".
		if m == name || strings.HasPrefix(m, name+":") {
			return true
		}
	}
	return false
}

// PullModel downloads a model, reading the streamed progress to completion.
// The optional progress callback receives each progress line; pass nil to ignore.
func (c *Client) PullModel(ctx context.Context, name string, onProgress func(PullProgress)) error {
	err := c.api.Pull(ctx, &api.PullRequest{Model: name}, func(p api.ProgressResponse) error {
		if onProgress != nil {
			onProgress(PullProgress{Status: p.Status, Total: p.Total, Completed: p.Completed})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("pulling model %s: %w", name, err)
	}
	return nil
}

// Chat sends messages to the given model and returns the assistant's response.
func (c *Client) Chat(ctx context.Context, model string, messages []Message, opts Options) (string, error) {
	msgs := make([]api.Message, len(messages))
	for i, m := range messages {
		msgs[i] = api.Message{Role: m.Role, Content: m.Content}
	}

	stream := false
	req := &api.ChatRequest{
		Model:    model,
		Messages: msgs,
		Stream:   &stream,
		Options:  opts.toMap(),
	}

	var content strings.Builder
	err := c.api.Chat(ctx, req, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	return content.String(), nil
}

func (o Options) toMap() map[string]any {
	m := make(map[string]any, 3)
	if o.Temperature > 0 {
		m["temperature"] = o.Temperature
	}
	if o.TopP > 0 {
		m["top_p"] = o.TopP
	}
	if o.MaxTokens > 0 {
		m["num_predict"] = o.MaxTokens
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

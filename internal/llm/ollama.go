package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

// OllamaBaseURL is where a local Ollama server listens by default.
const OllamaBaseURL = "http://localhost:11434"

// OllamaClient uses the /api/chat endpoint of a local Ollama server.
type OllamaClient struct {
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	http        *resty.Client
}

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// NewOllamaClient creates a client for cfg.Model on cfg.BaseURL.
func NewOllamaClient(cfg Config) *OllamaClient {
	cfg = cfg.withDefaults()
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = OllamaBaseURL
	}
	return &OllamaClient{
		baseURL:     baseURL,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		http:        resty.New().SetTimeout(cfg.Timeout),
	}
}

// Invoke sends messages with stream=false and returns the reply.
func (c *OllamaClient) Invoke(ctx context.Context, messages []Message) (string, error) {
	body := ollamaChatRequest{
		Model:    c.model,
		Messages: make([]chatMessage, 0, len(messages)),
		Options: map[string]any{
			"temperature": c.temperature,
			"num_predict": c.maxTokens,
		},
	}
	for _, m := range messages {
		body.Messages = append(body.Messages, chatMessage{Role: string(m.Role), Content: m.Text})
	}

	var out ollamaChatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&out).
		Post(strings.TrimRight(c.baseURL, "/") + "/api/chat")
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	if resp.IsError() {
		return "", &StatusError{Backend: BackendOllama, Code: resp.StatusCode(), Body: resp.String()}
	}

	if out.Message.Content == "" {
		return "", fmt.Errorf("ollama: %w", ErrEmptyResponse)
	}
	return out.Message.Content, nil
}

package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Default endpoints of the OpenAI-compatible backends.
const (
	DeepSeekBaseURL   = "https://api.deepseek.com"
	OpenAIBaseURL     = "https://api.openai.com/v1"
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
)

// OpenAIClient talks to any OpenAI-compatible /chat/completions endpoint:
// DeepSeek, OpenAI and OpenRouter.
type OpenAIClient struct {
	backend     Backend
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	headers     map[string]string
	http        *resty.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewOpenAIClient creates a client for cfg.Backend, which must be one of the
// OpenAI-compatible backends.
func NewOpenAIClient(cfg Config) (*OpenAIClient, error) {
	cfg = cfg.withDefaults()

	c := &OpenAIClient{
		backend:     cfg.Backend,
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		headers:     map[string]string{},
		http:        resty.New().SetTimeout(cfg.Timeout),
	}

	switch cfg.Backend {
	case BackendDeepSeek:
		if c.baseURL == "" {
			c.baseURL = DeepSeekBaseURL
		}
	case BackendOpenAI:
		if c.baseURL == "" {
			c.baseURL = OpenAIBaseURL
		}
	case BackendOpenRouter:
		if c.baseURL == "" {
			c.baseURL = OpenRouterBaseURL
		}
		c.headers["HTTP-Referer"] = "https://github.com/valpere/frametran"
		c.headers["X-Title"] = "FrameTran"
	default:
		return nil, fmt.Errorf("%w: %s is not OpenAI-compatible", ErrUnknownBackend, cfg.Backend)
	}

	return c, nil
}

// Invoke sends messages as a single non-streaming chat completion.
func (c *OpenAIClient) Invoke(ctx context.Context, messages []Message) (string, error) {
	body := chatRequest{
		Model:       c.model,
		Messages:    make([]chatMessage, 0, len(messages)),
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	for _, m := range messages {
		body.Messages = append(body.Messages, chatMessage{Role: string(m.Role), Content: m.Text})
	}

	var out chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetHeaders(c.headers).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&out).
		Post(strings.TrimRight(c.baseURL, "/") + "/chat/completions")
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", c.backend, err)
	}
	if resp.IsError() {
		return "", &StatusError{Backend: c.backend, Code: resp.StatusCode(), Body: resp.String()}
	}

	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%s: %w", c.backend, ErrEmptyResponse)
	}
	return out.Choices[0].Message.Content, nil
}

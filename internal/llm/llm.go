// Package llm is the language-model capability used by the workflow: an
// ordered list of role-tagged messages goes in, generated text comes out.
//
// Each hosted model family has its own Client implementation. New picks one
// from configuration once, at startup; nothing downstream branches on the
// backend.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrMissingCredentials means the selected backend needs an API key and none was configured.
	ErrMissingCredentials = errors.New("missing model credentials")
	// ErrUnknownBackend means the configured backend name is not recognised.
	ErrUnknownBackend = errors.New("unknown model backend")
	// ErrEmptyResponse means the backend answered without any text.
	ErrEmptyResponse = errors.New("empty response from model")
)

// Role tags a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a conversation.
type Message struct {
	Role Role   `json:"role" yaml:"role"`
	Text string `json:"content" yaml:"content"`
}

// System returns a system message.
func System(text string) Message { return Message{Role: RoleSystem, Text: text} }

// User returns a user message.
func User(text string) Message { return Message{Role: RoleUser, Text: text} }

// Assistant returns an assistant message.
func Assistant(text string) Message { return Message{Role: RoleAssistant, Text: text} }

// Client invokes a model synchronously.
type Client interface {
	Invoke(ctx context.Context, messages []Message) (string, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, messages []Message) (string, error)

// Invoke calls f.
func (f ClientFunc) Invoke(ctx context.Context, messages []Message) (string, error) {
	return f(ctx, messages)
}

// Backend names a hosted model family.
type Backend string

const (
	BackendDeepSeek   Backend = "deepseek"
	BackendOpenAI     Backend = "openai"
	BackendOpenRouter Backend = "openrouter"
	BackendOllama     Backend = "ollama"
	BackendAnthropic  Backend = "anthropic"
	BackendGemini     Backend = "gemini"
)

// Backends lists every supported backend.
var Backends = []Backend{BackendDeepSeek, BackendOpenAI, BackendOpenRouter, BackendOllama, BackendAnthropic, BackendGemini}

// ParseBackend validates a backend name.
func ParseBackend(s string) (Backend, error) {
	b := Backend(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Backends {
		if b == known {
			return b, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
}

// InferBackend guesses the backend from a model name.
func InferBackend(model string) Backend {
	m := strings.ToLower(model)
	switch {
	case strings.Contains(m, "deepseek"):
		return BackendDeepSeek
	case strings.Contains(m, "claude"):
		return BackendAnthropic
	case strings.Contains(m, "gemini"):
		return BackendGemini
	default:
		return BackendOpenAI
	}
}

// CredentialEnv is the conventional environment variable holding the API key
// for b, or "" when b needs none.
func (b Backend) CredentialEnv() string {
	switch b {
	case BackendDeepSeek:
		return "DEEPSEEK_API_KEY"
	case BackendOpenAI:
		return "OPENAI_API_KEY"
	case BackendOpenRouter:
		return "OPENROUTER_API_KEY"
	case BackendAnthropic:
		return "ANTHROPIC_API_KEY"
	case BackendGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// NeedsCredentials reports whether b requires an API key.
func (b Backend) NeedsCredentials() bool { return b.CredentialEnv() != "" }

// Config selects and parameterises a backend.
type Config struct {
	Backend     Backend
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	// MaxAttempts is the total number of tries per call; 1 disables retry.
	MaxAttempts int
}

// Default values applied by New when a field is zero.
const (
	DefaultModel       = "deepseek-chat"
	DefaultTemperature = 0.1
	DefaultMaxTokens   = 2048
	DefaultTimeout     = 120 * time.Second
)

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Backend == "" {
		c.Backend = InferBackend(c.Model)
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 1
	}
	return c
}

// Validate reports configuration errors: an unknown backend or a missing key.
func (c Config) Validate() error {
	if _, err := ParseBackend(string(c.Backend)); err != nil {
		return err
	}
	if c.Backend.NeedsCredentials() && strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: backend %s requires an API key (set model.api_key or %s)",
			ErrMissingCredentials, c.Backend, c.Backend.CredentialEnv())
	}
	return nil
}

// StatusError is a non-2xx answer from a backend.
type StatusError struct {
	Backend Backend
	Code    int
	Body    string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 300 {
		body = body[:300] + "..."
	}
	if body == "" {
		return fmt.Sprintf("%s returned status %d", e.Backend, e.Code)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Backend, e.Code, body)
}

// Transient reports whether the status is worth retrying.
func (e *StatusError) Transient() bool {
	return e.Code == 429 || e.Code >= 500
}

// splitSystem separates system messages from the conversation. Backends with
// a dedicated system field send them there, joined by blank lines.
func splitSystem(messages []Message) (system string, rest []Message) {
	var parts []string
	for _, m := range messages {
		if m.Role == RoleSystem {
			parts = append(parts, m.Text)
			continue
		}
		rest = append(rest, m)
	}
	return strings.Join(parts, "\n\n"), rest
}

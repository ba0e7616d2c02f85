// Package baseline fetches a plain machine translation to show next to the
// frame-guided one. Its output is informational and never enters the workflow.
package baseline

import (
	"context"
	"fmt"
	"html"
	"time"

	translate "cloud.google.com/go/translate"
	"google.golang.org/api/option"

	"github.com/valpere/frametran/internal/lang"
)

// Result is one baseline translation.
type Result struct {
	Service     string        `json:"service" yaml:"service"`
	Translation string        `json:"translation" yaml:"translation"`
	Latency     time.Duration `json:"latency" yaml:"latency"`
}

// Translator is the capability the CLI needs from a baseline service.
type Translator interface {
	Translate(ctx context.Context, text string, source, target lang.Language) (Result, error)
}

// GoogleService uses the Cloud Translation v2 API.
type GoogleService struct {
	opts []option.ClientOption
}

// NewGoogleService creates a service. An empty credentialsFile falls back to
// Application Default Credentials.
func NewGoogleService(credentialsFile string, opts ...option.ClientOption) *GoogleService {
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	return &GoogleService{opts: opts}
}

// Name identifies the service in output.
func (s *GoogleService) Name() string { return "google" }

// Translate translates text from source to target.
func (s *GoogleService) Translate(ctx context.Context, text string, source, target lang.Language) (Result, error) {
	res := Result{Service: s.Name()}
	start := time.Now()

	client, err := translate.NewClient(ctx, s.opts...)
	if err != nil {
		return res, fmt.Errorf("failed to create Google Translate client: %w", err)
	}
	defer client.Close()

	translations, err := client.Translate(ctx, []string{text}, target.Tag(), &translate.Options{
		Source: source.Tag(),
		Format: translate.Text,
	})
	res.Latency = time.Since(start)
	if err != nil {
		return res, fmt.Errorf("google translation failed: %w", err)
	}
	if len(translations) == 0 {
		return res, fmt.Errorf("google returned no translation")
	}

	res.Translation = html.UnescapeString(translations[0].Text)
	return res, nil
}

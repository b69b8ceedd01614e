// Package llm wraps the generative model providers used to structure search
// results into opportunities.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Provider names.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// ErrMissingAPIKey is returned by Generate when the provider has no key.
var ErrMissingAPIKey = errors.New("llm: API key not configured")

// Generator produces a text completion for a single prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Provider() string
	Model() string
}

// Options selects and configures a provider.
type Options struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string // empty uses the provider's public endpoint
	Timeout  time.Duration
}

// New returns the Generator for opts.Provider.
func New(opts Options) (Generator, error) {
	switch opts.Provider {
	case ProviderGemini:
		return NewGemini(opts), nil
	case ProviderAnthropic:
		return NewAnthropic(opts), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", opts.Provider)
	}
}

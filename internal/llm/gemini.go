package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

const defaultTimeout = 60 * time.Second

// Gemini calls the Gemini API through the genai SDK.
type Gemini struct {
	apiKey  string
	model   string
	timeout time.Duration
	client  *genai.Client
	initErr error
}

func NewGemini(opts Options) *Gemini {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	g := &Gemini{apiKey: opts.APIKey, model: opts.Model, timeout: opts.Timeout}
	if g.apiKey == "" {
		return g
	}

	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{},
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions.BaseURL = strings.TrimRight(opts.BaseURL, "/") + "/"
	}
	g.client, g.initErr = genai.NewClient(context.Background(), cfg)
	return g
}

func (g *Gemini) Provider() string { return ProviderGemini }
func (g *Gemini) Model() string    { return g.model }

// Generate sends prompt as a single user turn and returns the text of the
// first candidate.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", ErrMissingAPIKey
	}
	if g.initErr != nil {
		return "", fmt.Errorf("gemini: new client: %w", g.initErr)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("gemini: prompt blocked: %s", resp.PromptFeedback.BlockReason)
		}
		return "", errors.New("gemini: no candidates returned")
	}
	return resp.Text(), nil
}

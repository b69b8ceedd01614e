package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 8192

// Anthropic calls the Messages API through the official SDK.
type Anthropic struct {
	apiKey string
	model  string
	client anthropic.Client
}

func NewAnthropic(opts Options) *Anthropic {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithRequestTimeout(opts.Timeout),
		option.WithMaxRetries(1),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	return &Anthropic{
		apiKey: opts.APIKey,
		model:  opts.Model,
		client: anthropic.NewClient(reqOpts...),
	}
}

func (a *Anthropic) Provider() string { return ProviderAnthropic }
func (a *Anthropic) Model() string    { return a.model }

// Generate sends prompt as a single user message and joins the text blocks
// of the reply.
func (a *Anthropic) Generate(ctx context.Context, prompt string) (string, error) {
	if a.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

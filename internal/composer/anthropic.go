package composer

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
)

type anthropicModel struct {
	client *anthropic.Client
	model  anthropic.Model
}

// NewAnthropic returns a composer backed by the Anthropic Messages API.
func NewAnthropic(apiKey, model string, fallback *TemplateComposer, opts ...anthropicopt.RequestOption) *ModelComposer {
	return NewModelComposer("anthropic", func(context.Context) (ChatModel, error) {
		return newAnthropicModel(apiKey, model, opts...), nil
	}, fallback)
}

func newAnthropicModel(apiKey, model string, opts ...anthropicopt.RequestOption) *anthropicModel {
	client := anthropic.NewClient(append([]anthropicopt.RequestOption{anthropicopt.WithAPIKey(apiKey)}, opts...)...)
	return &anthropicModel{client: &client, model: anthropic.Model(model)}
}

func (a *anthropicModel) Generate(ctx context.Context, system, prompt string) (string, error) {
	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       a.model,
		MaxTokens:   600,
		Temperature: anthropic.Float(0.2),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no text in anthropic response")
	}
	return b.String(), nil
}

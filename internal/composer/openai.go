package composer

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
)

type openAIModel struct {
	client *openai.Client
	model  openai.ChatModel
}

// NewOpenAI returns a composer backed by the OpenAI chat completions API.
func NewOpenAI(apiKey, model string, fallback *TemplateComposer, opts ...openaiopt.RequestOption) *ModelComposer {
	return NewModelComposer("openai", func(context.Context) (ChatModel, error) {
		return newOpenAIModel(apiKey, model, opts...), nil
	}, fallback)
}

func newOpenAIModel(apiKey, model string, opts ...openaiopt.RequestOption) *openAIModel {
	client := openai.NewClient(append([]openaiopt.RequestOption{openaiopt.WithAPIKey(apiKey)}, opts...)...)
	return &openAIModel{client: &client, model: openai.ChatModel(model)}
}

func (o *openAIModel) Generate(ctx context.Context, system, prompt string) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.2),
		MaxTokens:   openai.Int(600),
	})
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}
	return resp.Choices[0].Message.Content, nil
}

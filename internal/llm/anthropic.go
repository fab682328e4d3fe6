package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient implements the Client interface using Claude's vision input.
// The photo goes in as a base64 image block next to a short text instruction.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicClient creates a new Claude-powered captioner.
func NewAnthropicClient(apiKey string, model string, opts ...option.RequestOption) *AnthropicClient {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := anthropic.NewClient(opts...)
	return &AnthropicClient{
		client: &client,
		model:  model,
	}
}

func (a *AnthropicClient) ProviderName() string { return "anthropic" }
func (a *AnthropicClient) ModelName() string     { return a.model }

func (a *AnthropicClient) GenerateCaption(ctx context.Context, req CaptionRequest) (string, error) {
	if len(req.PhotoJPEG) == 0 {
		return "", fmt.Errorf("no photo to caption")
	}

	photo := base64.StdEncoding.EncodeToString(req.PhotoJPEG)
	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(maxTokens(req)),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt(req.Voice.Prompt)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64("image/jpeg", photo),
				anthropic.NewTextBlock(userPrompt),
			),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call: %w", err)
	}

	// Claude may split its answer over several text blocks.
	var sb strings.Builder
	for _, block := range message.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(text.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("Claude returned no caption for voice %s", req.Voice.ID)
	}
	return sb.String(), nil
}

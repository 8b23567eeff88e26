// Package anthropic wraps the official anthropic-sdk-go behind the
// small generation surface the compliance core needs.
package anthropic

import (
	"context"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DefaultModel is the generation model used when none is configured.
const DefaultModel = "claude-haiku-4-5-20251001"

// Client defines the Anthropic operations used by the core.
type Client interface {
	// Generate produces text for a prompt, bounded by maxTokens.
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// sdkClient implements Client using the official SDK.
type sdkClient struct {
	client sdk.Client
	model  string
}

// NewClient creates an Anthropic client. The API key is required; a
// missing key fails here rather than on first use.
func NewClient(apiKey, model string) (Client, error) {
	if apiKey == "" {
		return nil, eris.New("anthropic: missing api key")
	}
	if model == "" {
		model = DefaultModel
	}
	return &sdkClient{
		client: sdk.NewClient(
			option.WithAPIKey(apiKey),
		),
		model: model,
	}, nil
}

func (c *sdkClient) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "anthropic: create message")
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	zap.L().Debug("anthropic: generation complete",
		zap.String("model", string(msg.Model)),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
	)

	return text, nil
}

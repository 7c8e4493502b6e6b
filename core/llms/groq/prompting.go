package groq

import (
	"context"
	"strings"

	"github.com/koscakluka/ema-helpline/core/llms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type requestBody struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Stream      bool      `json:"stream"`
	MaxTokens   int       `json:"max_completion_tokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
}

func (c *Client) Generate(ctx context.Context, prompt string, opts ...llms.GenerateOption) (string, error) {
	ctx, span := tracer.Start(ctx, "prompt llm")
	defer span.End()

	options := llms.ApplyGenerateOptions(opts...)
	span.SetAttributes(attribute.String("request.model", c.model))

	resp, err := c.post(ctx, span, requestBody{
		Model:       c.model,
		Messages:    toMessages(options.Instructions, prompt),
		MaxTokens:   options.MaxOutputTokens,
		Temperature: options.Temperature,
	})
	if err != nil {
		return "", err
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		span.RecordError(llms.ErrEmptyResponse)
		span.SetStatus(codes.Error, llms.ErrEmptyResponse.Error())
		return "", llms.ErrEmptyResponse
	}
	return content, nil
}

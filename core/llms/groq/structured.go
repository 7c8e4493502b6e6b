package groq

import (
	"context"

	"github.com/invopop/jsonschema"
	"github.com/koscakluka/ema-helpline/core/llms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// GenerateJSON asks for a JSON document matching schema, using strict
// json_schema response formatting.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, schema llms.OutputSchema, opts ...llms.GenerateOption) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "prompt llm structured")
	defer span.End()

	options := llms.ApplyGenerateOptions(opts...)

	reqBody := schemaRequestBody{
		requestBody: requestBody{
			Model:       c.model,
			Messages:    toMessages(options.Instructions, prompt),
			MaxTokens:   options.MaxOutputTokens,
			Temperature: options.Temperature,
		},
		ResponseFormat: &ChatResponseFormat{
			Type: "json_schema",
			JSONSchema: &JSONSchema{
				Name:   schema.Name,
				Schema: schema.Schema,
				Strict: true,
			},
		},
	}

	span.SetAttributes(attribute.String("request.model", c.model))
	if schemaString, err := schema.Schema.MarshalJSON(); err == nil {
		span.SetAttributes(attribute.String("request.schema", string(schemaString)))
	}

	resp, err := c.post(ctx, span, reqBody)
	if err != nil {
		return nil, err
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		span.RecordError(llms.ErrEmptyResponse)
		span.SetStatus(codes.Error, llms.ErrEmptyResponse.Error())
		return nil, llms.ErrEmptyResponse
	}
	return []byte(content), nil
}

type schemaRequestBody struct {
	requestBody
	ResponseFormat *ChatResponseFormat `json:"response_format,omitempty"`
}

type ChatResponseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *JSONSchema `json:"json_schema,omitempty"`
}

type JSONSchema struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Schema      *jsonschema.Schema `json:"schema"`
	// Strict makes the API reject output that does not match Schema.
	Strict bool `json:"strict"`
}

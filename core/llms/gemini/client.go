// Package gemini generates replies with the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/koscakluka/ema-helpline/core/llms"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

var ErrMissingAPIKey = errors.New("gemini api key is empty")

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Client struct {
	models contentGenerator
	model  string
}

type ClientOptions struct {
	Model   string
	BaseURL string
}

type ClientOption func(*ClientOptions)

func WithModel(model string) ClientOption {
	return func(o *ClientOptions) {
		if model != "" {
			o.Model = model
		}
	}
}

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(baseURL string) ClientOption {
	return func(o *ClientOptions) { o.BaseURL = baseURL }
}

func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	options := ClientOptions{Model: DefaultModel}
	for _, opt := range opts {
		opt(&options)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		HTTPOptions: genai.HTTPOptions{BaseURL: options.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{models: client.Models, model: options.Model}, nil
}

// Generate returns the text of the first candidate.
func (c *Client) Generate(ctx context.Context, prompt string, opts ...llms.GenerateOption) (string, error) {
	ctx, span := tracer.Start(ctx, "prompt llm")
	defer span.End()

	options := llms.ApplyGenerateOptions(opts...)
	span.SetAttributes(attribute.String("request.model", c.model))

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), toConfig(options))
	if err != nil {
		err = fmt.Errorf("failed to generate content: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		err := llms.ErrEmptyResponse
		if len(resp.Candidates) > 0 {
			span.SetAttributes(attribute.String("response.finish_reason", string(resp.Candidates[0].FinishReason)))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	if resp.UsageMetadata != nil {
		span.SetAttributes(
			attribute.Int("response.prompt_tokens", int(resp.UsageMetadata.PromptTokenCount)),
			attribute.Int("response.output_tokens", int(resp.UsageMetadata.CandidatesTokenCount)),
		)
	}

	return text, nil
}

// GenerateJSON asks for a JSON document matching schema.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, schema llms.OutputSchema, opts ...llms.GenerateOption) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "prompt llm structured")
	defer span.End()

	options := llms.ApplyGenerateOptions(opts...)
	config := toConfig(options)
	config.ResponseMIMEType = "application/json"
	config.ResponseJsonSchema = schema.Schema

	span.SetAttributes(
		attribute.String("request.model", c.model),
		attribute.String("request.schema_name", schema.Name),
	)

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		err = fmt.Errorf("failed to generate structured content: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		span.RecordError(llms.ErrEmptyResponse)
		span.SetStatus(codes.Error, llms.ErrEmptyResponse.Error())
		return nil, llms.ErrEmptyResponse
	}
	logger.DebugContext(ctx, "structured response received", "schema", schema.Name, "length", len(text))

	return []byte(text), nil
}

func toConfig(options llms.GenerateOptions) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if options.Instructions != "" {
		config.SystemInstruction = genai.NewContentFromText(options.Instructions, genai.RoleUser)
	}
	if options.MaxOutputTokens > 0 {
		config.MaxOutputTokens = int32(options.MaxOutputTokens)
	}
	if options.Temperature != nil {
		config.Temperature = genai.Ptr(float32(*options.Temperature))
	}
	return config
}

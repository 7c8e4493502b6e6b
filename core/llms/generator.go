package llms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
)

var ErrEmptyResponse = errors.New("language model returned an empty response")

// Generator produces a single, complete text reply for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error)
}

// OutputSchema describes the JSON document a StructuredGenerator must
// produce.
type OutputSchema struct {
	Name   string
	Schema *jsonschema.Schema
}

// StructuredGenerator produces a JSON document matching a schema.
type StructuredGenerator interface {
	GenerateJSON(ctx context.Context, prompt string, schema OutputSchema, opts ...GenerateOption) ([]byte, error)
}

// ReflectSchema builds the output schema for T. Definitions are inlined
// since not every provider resolves references.
func ReflectSchema[T any]() OutputSchema {
	reflector := jsonschema.Reflector{DoNotReference: true}
	outputType := reflect.TypeFor[T]()
	for outputType.Kind() == reflect.Ptr {
		outputType = outputType.Elem()
	}
	schema := reflector.ReflectFromType(outputType)
	schema.Version = ""
	schema.ID = ""
	return OutputSchema{Name: outputType.Name(), Schema: schema}
}

// GenerateStructured asks generator for a T and decodes the answer.
func GenerateStructured[T any](ctx context.Context, generator StructuredGenerator, prompt string, opts ...GenerateOption) (*T, error) {
	content, err := generator.GenerateJSON(ctx, prompt, ReflectSchema[T](), opts...)
	if err != nil {
		return nil, err
	}

	var output T
	if err := json.Unmarshal(stripCodeFence(content), &output); err != nil {
		return nil, fmt.Errorf("failed to unmarshal structured response: %w", err)
	}
	return &output, nil
}

// stripCodeFence returns the contents of the first fenced block, if any.
// Some models wrap JSON in a fence even when asked for raw JSON.
func stripCodeFence(content []byte) []byte {
	split := strings.Split(string(content), "```")
	if len(split) < 3 {
		return content
	}
	block := strings.TrimPrefix(split[1], "json")
	return []byte(strings.TrimSpace(block))
}

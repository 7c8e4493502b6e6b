package llms

import "github.com/koscakluka/ema-helpline/internal/utils"

// GenerateOptions holds the request settings shared by all providers.
type GenerateOptions struct {
	Instructions    string
	MaxOutputTokens int
	// Temperature is left to the provider default when nil.
	Temperature *float64
}

type GenerateOption func(*GenerateOptions)

// WithSystemPrompt sets the instructions sent ahead of the prompt.
// Repeating this option will overwrite the previous system prompt.
func WithSystemPrompt(prompt string) GenerateOption {
	return func(opts *GenerateOptions) {
		opts.Instructions = prompt
	}
}

func WithMaxOutputTokens(maxTokens int) GenerateOption {
	return func(opts *GenerateOptions) {
		opts.MaxOutputTokens = maxTokens
	}
}

func WithTemperature(temperature float64) GenerateOption {
	return func(opts *GenerateOptions) {
		opts.Temperature = utils.Ptr(temperature)
	}
}

func ApplyGenerateOptions(opts ...GenerateOption) GenerateOptions {
	options := GenerateOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

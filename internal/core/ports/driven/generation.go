package driven

import "context"

// GenerationService produces text completions for the Drafter stage.
//
// Implementations may include:
//   - OpenAI (chat completions)
//   - Ollama (local models)
type GenerationService interface {
	// Generate produces a completion for the prompt and reports the
	// token usage of the call.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (*GenerationResult, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}

// GenerationResult is the outcome of one generation call.
type GenerationResult struct {
	// Text is the generated completion.
	Text string

	// InputTokens is the prompt token count reported by the provider.
	InputTokens int

	// OutputTokens is the completion token count reported by the provider.
	OutputTokens int
}

package llm

import (
	"context"
)

// Provider is the interface for all LLM providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions transforms raw instructions into model-specific formats
	AdaptInstructions(rawInstructions string) string
}

// Compile-time interface checks.
var (
	_ Provider = (*GeminiProvider)(nil)
	_ Provider = (*DeepSeekProvider)(nil)
)

// TextGenerator adapts a Provider to the narrower system/user prompt
// surface that validation and repair callers expect.
type TextGenerator struct {
	Provider Provider
	Options  map[string]interface{}
}

func (g TextGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return g.Provider.GenerateResponse(ctx, userPrompt, systemPrompt, g.Options)
}

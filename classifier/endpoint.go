package classifier

import (
	"context"
	"strings"
)

// GenerationConfig constrains the model's output.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
}

// DefaultGeneration keeps answers short and near-deterministic.
var DefaultGeneration = GenerationConfig{
	Temperature:     0.1,
	MaxOutputTokens: 10,
	TopP:            0.95,
	TopK:            40,
}

// Request is a single generation call.
type Request struct {
	Model      string
	APIKey     string
	Input      string
	Generation GenerationConfig
}

// Endpoint sends one prompt to a model and returns its trimmed text answer.
type Endpoint interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Router sends OpenAI model names to OpenAI and everything else to Gemini.
type Router struct {
	Gemini Endpoint
	OpenAI Endpoint
}

func (r *Router) Generate(ctx context.Context, req Request) (string, error) {
	if r.OpenAI != nil && IsOpenAIModel(req.Model) {
		return r.OpenAI.Generate(ctx, req)
	}
	return r.Gemini.Generate(ctx, req)
}

// IsOpenAIModel reports whether model names an OpenAI model.
func IsOpenAIModel(model string) bool {
	m := strings.ToLower(model)
	for _, p := range []string{"gpt-", "chatgpt-", "o1", "o3", "o4"} {
		if strings.HasPrefix(m, p) {
			return true
		}
	}
	return false
}

// Package oracle sends evaluation prompts to a hosted language model.
package oracle

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"screener/internal/config"
)

// Request is a single non-streaming completion.
type Request struct {
	System      string
	User        string
	Temperature float64
	// JSON asks the provider for a JSON object reply.
	JSON bool
}

// Oracle completes prompts.
type Oracle interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Func adapts a function to Oracle.
type Func func(ctx context.Context, req Request) (string, error)

// Complete calls f.
func (f Func) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// HTTPDoer abstracts HTTP clients used by providers.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Provider names accepted in inference_controls.provider.
const (
	ProviderCerebras   = "cerebras"
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
)

const fallbackKeyEnv = "LLM_API_KEY"

var providerKeyEnv = map[string]string{
	ProviderCerebras:   "CEREBRAS_KEY",
	ProviderOpenRouter: "OPENROUTER_API_KEY",
	ProviderOpenAI:     "OPENAI_API_KEY",
	ProviderGemini:     "GEMINI_API_KEY",
}

var providerBaseURL = map[string]string{
	ProviderCerebras:   "https://api.cerebras.ai/v1",
	ProviderOpenRouter: "https://openrouter.ai/api/v1",
	ProviderOpenAI:     "https://api.openai.com/v1",
}

// APIKey returns the key for provider from its own variable or LLM_API_KEY.
func APIKey(provider string) (string, error) {
	name, ok := providerKeyEnv[provider]
	if !ok {
		return "", fmt.Errorf("unsupported provider %q", provider)
	}
	if key := strings.TrimSpace(os.Getenv(name)); key != "" {
		return key, nil
	}
	if key := strings.TrimSpace(os.Getenv(fallbackKeyEnv)); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%s or %s is required for provider %s", name, fallbackKeyEnv, provider)
}

// FromConfig builds the oracle named by inference_controls.
func FromConfig(ctx context.Context, controls config.InferenceControls, client HTTPDoer) (Oracle, error) {
	key, err := APIKey(controls.Provider)
	if err != nil {
		return nil, err
	}
	if controls.Provider == ProviderGemini {
		return NewGemini(ctx, controls.Model, key, controls.BaseURL)
	}
	baseURL := controls.BaseURL
	if strings.TrimSpace(baseURL) == "" {
		baseURL = providerBaseURL[controls.Provider]
	}
	return NewChat(controls.Provider, controls.Model, key, baseURL, client)
}

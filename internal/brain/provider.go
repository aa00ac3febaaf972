package brain

import (
	"context"
	"fmt"
	"strings"
)

// StreamRequest is the normalized request sent to the generation backend.
type StreamRequest struct {
	Prompt            string `json:"prompt"`
	SystemInstruction string `json:"system_instruction"`
	Model             string `json:"model"`
}

// Response is the final response after streaming deltas.
type Response struct {
	Text    string   `json:"text"`
	Sources []string `json:"sources,omitempty"`
}

// DeltaHandler receives streaming text fragments. Returning an error stops
// consumption; the provider must not call the handler again afterwards.
type DeltaHandler func(delta string) error

// Provider bridges the debate runtime with a text generation backend. The
// stream is finite and non-restartable; mid-stream transport faults surface
// as the FaultSentinel fragment rather than a raw error, so the consumer
// never has to translate backend failures for the UI.
type Provider interface {
	Stream(ctx context.Context, req StreamRequest, onDelta DeltaHandler) (Response, error)
	Generate(ctx context.Context, req StreamRequest) (Response, error)
}

// FaultSentinel is substituted for the remainder of a stream that died
// mid-flight.
const FaultSentinel = "...signal lost..."

// Config controls provider construction.
type Config struct {
	Mode    string
	APIKey  string
	BaseURL string
}

func NewProvider(cfg Config) (Provider, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.APIKey) != "" {
			return NewGeminiProvider(cfg.APIKey, cfg.BaseURL), nil
		}
		return NewMockProvider(), nil
	case "gemini":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, fmt.Errorf("gemini api key is required for gemini mode")
		}
		return NewGeminiProvider(cfg.APIKey, cfg.BaseURL), nil
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported brain provider mode %q", cfg.Mode)
	}
}

package brain

import (
	"context"
	"fmt"
	"strings"
)

// MockProvider produces deterministic local replies when no Gemini key is
// configured. Replies echo the input so the loop stays watchable offline.
type MockProvider struct{}

func NewMockProvider() *MockProvider { return &MockProvider{} }

func (p *MockProvider) Stream(ctx context.Context, req StreamRequest, onDelta DeltaHandler) (Response, error) {
	select {
	case <-ctx.Done():
		return Response{}, ctx.Err()
	default:
	}

	text := buildMockReply(req)
	// Deliver word by word so consumers exercise real fragment handling.
	var out strings.Builder
	words := strings.Fields(text)
	for i, w := range words {
		delta := w
		if i < len(words)-1 {
			delta += " "
		}
		out.WriteString(delta)
		if onDelta != nil {
			if err := onDelta(delta); err != nil {
				return Response{}, err
			}
		}
	}
	return Response{Text: out.String()}, nil
}

func (p *MockProvider) Generate(ctx context.Context, req StreamRequest) (Response, error) {
	select {
	case <-ctx.Done():
		return Response{}, ctx.Err()
	default:
	}
	return Response{Text: buildMockReply(req)}, nil
}

func buildMockReply(req StreamRequest) string {
	base := strings.TrimSpace(req.Prompt)
	if base == "" {
		return "I am thinking."
	}
	if i := strings.LastIndex(base, "\n"); i >= 0 {
		base = strings.TrimSpace(base[i+1:])
	}
	return fmt.Sprintf("Interesting. Let me consider that. You said: %s.", base)
}

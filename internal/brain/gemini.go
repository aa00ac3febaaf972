package brain

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiProvider streams generated text from the Gemini REST API.
type GeminiProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client

	// Temperatures match the tuning of the debate loop: hotter for the
	// conversational stream, cooler for single-shot generation.
	streamTemperature   float64
	generateTemperature float64
}

func NewGeminiProvider(apiKey, baseURL string) *GeminiProvider {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	return &GeminiProvider{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		streamTemperature:   0.9,
		generateTemperature: 0.8,
	}
}

type geminiRequest struct {
	Contents          []geminiContent  `json:"contents"`
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature float64 `json:"temperature"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web *struct {
					URI string `json:"uri"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
}

// Stream consumes the server-sent event stream fragment by fragment. A
// transport fault after the stream has started yields the FaultSentinel
// fragment and a nil error: the turn keeps whatever arrived plus the
// sentinel, and the loop moves on.
func (p *GeminiProvider) Stream(ctx context.Context, req StreamRequest, onDelta DeltaHandler) (Response, error) {
	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse&key=%s", p.baseURL, req.Model, p.apiKey)
	res, err := p.send(ctx, url, req, p.streamTemperature)
	if err != nil {
		return Response{}, err
	}
	defer res.Body.Close()

	scanner := bufio.NewScanner(res.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var out strings.Builder
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if line == "" || line == "[DONE]" {
			continue
		}

		var chunk geminiResponse
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			continue
		}
		delta := chunkText(chunk)
		if delta == "" {
			continue
		}
		out.WriteString(delta)
		if onDelta != nil {
			if err := onDelta(delta); err != nil {
				return Response{}, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return Response{}, ctx.Err()
		}
		// Mid-stream fault: substitute the sentinel instead of surfacing a
		// transport error to the conversation layer.
		if onDelta != nil {
			if derr := onDelta(FaultSentinel); derr != nil {
				return Response{}, derr
			}
		}
		out.WriteString(FaultSentinel)
	}

	return Response{Text: out.String()}, nil
}

// Generate performs a single-shot generation with search grounding and
// returns any grounding source URLs alongside the text.
func (p *GeminiProvider) Generate(ctx context.Context, req StreamRequest) (Response, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.baseURL, req.Model, p.apiKey)
	res, err := p.send(ctx, url, req, p.generateTemperature)
	if err != nil {
		return Response{}, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}

	out := Response{Text: chunkText(parsed)}
	if len(parsed.Candidates) > 0 && parsed.Candidates[0].GroundingMetadata != nil {
		for _, gc := range parsed.Candidates[0].GroundingMetadata.GroundingChunks {
			if gc.Web != nil && strings.TrimSpace(gc.Web.URI) != "" {
				out.Sources = append(out.Sources, gc.Web.URI)
			}
		}
	}
	return out, nil
}

func (p *GeminiProvider) send(ctx context.Context, url string, req StreamRequest, temperature float64) (*http.Response, error) {
	payload := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: req.Prompt}}},
		},
		GenerationConfig: &geminiGenConfig{Temperature: temperature},
	}
	if strings.TrimSpace(req.SystemInstruction) != "" {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.SystemInstruction}}}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		res.Body.Close()
		return nil, fmt.Errorf("gemini http status %d: %s", res.StatusCode, string(body))
	}
	return res, nil
}

func chunkText(res geminiResponse) string {
	if len(res.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}

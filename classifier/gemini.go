package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const GeminiBaseURL = "https://generativelanguage.googleapis.com"

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// GeminiEndpoint calls the generateContent method of the Gemini REST API.
type GeminiEndpoint struct {
	BaseURL string
	Client  *http.Client
}

// NewGeminiEndpoint returns an endpoint for baseURL (GeminiBaseURL when
// empty) with the given request timeout.
func NewGeminiEndpoint(baseURL string, timeout time.Duration) *GeminiEndpoint {
	if baseURL == "" {
		baseURL = GeminiBaseURL
	}
	return &GeminiEndpoint{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

func (g *GeminiEndpoint) Generate(ctx context.Context, req Request) (string, error) {
	body := geminiRequest{
		Contents:         []geminiContent{{Parts: []geminiPart{{Text: req.Input}}}},
		GenerationConfig: req.Generation,
	}
	b, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		g.BaseURL, url.PathEscape(req.Model), url.QueryEscape(req.APIKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", &EndpointError{Provider: "gemini", Model: req.Model, Err: fmt.Errorf("%w: %v", ErrEndpoint, err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &EndpointError{Provider: "gemini", Model: req.Model, Err: fmt.Errorf("%w: read body: %v", ErrEndpoint, err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &EndpointError{
			Provider:   "gemini",
			Model:      req.Model,
			StatusCode: resp.StatusCode,
			Message:    excerpt(string(raw), 200),
		}
	}

	var out geminiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: %v: %s", ErrMalformedResponse, err, excerpt(string(raw), 200))
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidate text: %s", ErrMalformedResponse, excerpt(string(raw), 200))
	}
	return strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text), nil
}

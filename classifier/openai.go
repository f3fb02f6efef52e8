package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// openAIMinOutputTokens is the smallest max_output_tokens the Responses API accepts.
const openAIMinOutputTokens = 16

// OpenAIEndpoint calls the OpenAI Responses API. The API key travels with
// each request, so one client serves every preset.
type OpenAIEndpoint struct {
	client *openai.Client
}

// NewOpenAIEndpoint builds a client for baseURL (the public API when empty).
func NewOpenAIEndpoint(baseURL string, timeout time.Duration) *OpenAIEndpoint {
	opts := []option.RequestOption{
		option.WithRequestTimeout(timeout),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAIEndpoint{client: &client}
}

func (o *OpenAIEndpoint) Generate(ctx context.Context, req Request) (string, error) {
	maxOut := int64(req.Generation.MaxOutputTokens)
	if maxOut < openAIMinOutputTokens {
		maxOut = openAIMinOutputTokens
	}

	params := responses.ResponseNewParams{
		Model:           req.Model,
		MaxOutputTokens: openai.Int(maxOut),
		Temperature:     openai.Float(req.Generation.Temperature),
		TopP:            openai.Float(req.Generation.TopP),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(req.Input, responses.EasyInputMessageRoleUser),
			},
		},
	}

	resp, err := o.client.Responses.New(ctx, params, option.WithAPIKey(req.APIKey))
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &EndpointError{
				Provider:   "openai",
				Model:      req.Model,
				StatusCode: apiErr.StatusCode,
				Message:    excerpt(apiErr.Message, 200),
			}
		}
		return "", &EndpointError{Provider: "openai", Model: req.Model, Err: fmt.Errorf("%w: %v", ErrEndpoint, err)}
	}

	text := strings.TrimSpace(resp.OutputText())
	if text == "" {
		return "", fmt.Errorf("%w: empty output from %s", ErrMalformedResponse, req.Model)
	}
	return text, nil
}

package genai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/openai/openai-go/v3/shared"
)

const (
	defaultModel       = "gpt-4o-mini"
	defaultHTTPTimeout = 60 * time.Second
	maxTransportRetry  = 2
)

// OpenAIClient implements Generator against any OpenAI-compatible
// chat-completions endpoint.
type OpenAIClient struct {
	client openaigo.Client
	model  string
}

// NewOpenAIClient creates a generation client. baseURL may be empty to use
// the default OpenAI endpoint; model may be empty to use the default model.
func NewOpenAIClient(apiKey, baseURL, model string) (*OpenAIClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("generation api key is required")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(apiKey)),
		option.WithHTTPClient(&http.Client{Timeout: defaultHTTPTimeout}),
		option.WithMaxRetries(maxTransportRetry),
		option.WithRequestTimeout(defaultHTTPTimeout),
	}
	if u := strings.TrimRight(strings.TrimSpace(baseURL), "/"); u != "" {
		opts = append(opts, option.WithBaseURL(u))
	}

	return &OpenAIClient{
		client: openaigo.NewClient(opts...),
		model:  strings.TrimSpace(model),
	}, nil
}

// Generate performs one chat completion and returns the raw response text.
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	messages := make([]openaigo.ChatCompletionMessageParamUnion, 0, 2)
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, openaigo.SystemMessage(strings.TrimSpace(req.System)))
	}
	messages = append(messages, openaigo.UserMessage(req.Prompt))

	params := openaigo.ChatCompletionNewParams{
		Model:    openaigo.ChatModel(c.model),
		Messages: messages,
	}
	if req.SchemaName != "" && req.Schema != nil {
		params.ResponseFormat = openaigo.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   req.SchemaName,
					Schema: req.Schema,
					Strict: param.NewOpt(true),
				},
			},
		}
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

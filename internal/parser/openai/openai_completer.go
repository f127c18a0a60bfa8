package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"invoicex/internal/config"
	"invoicex/internal/parser"
	"invoicex/internal/port"
)

const (
	providerName = "openai"
	defaultModel = "gpt-4o-mini"
)

// Completer implements port.StructuredCompleter using OpenAI structured outputs
// (response_format json_schema, strict mode).
type Completer struct {
	client      *goopenai.Client
	model       string
	temperature float32
}

// NewCompleter creates an OpenAI completer from a provider config.
func NewCompleter(cfg *config.ParserProviderConfig) *Completer {
	return newCompleter(cfg, "")
}

// NewCompleterWithEndpoint creates a completer pointing at a custom base URL (for testing).
func NewCompleterWithEndpoint(cfg *config.ParserProviderConfig, baseURL string) *Completer {
	return newCompleter(cfg, baseURL)
}

func newCompleter(cfg *config.ParserProviderConfig, baseURL string) *Completer {
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if baseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Completer{
		client:      goopenai.NewClientWithConfig(clientCfg),
		model:       model,
		temperature: cfg.Temperature,
	}
}

func (c *Completer) Complete(ctx context.Context, req port.CompletionRequest) (*port.CompletionOutput, error) {
	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: req.SystemInstruction},
			{Role: goopenai.ChatMessageRoleUser, Content: req.UserText},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &goopenai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.SchemaName,
				Schema: req.Schema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return nil, mapError(err)
	}

	out := &port.CompletionOutput{ModelUsed: c.model, Provider: providerName}
	if len(resp.Choices) == 0 {
		return out, nil
	}

	choice := resp.Choices[0]
	out.FinishReason = string(choice.FinishReason)
	if choice.Message.Refusal != "" || choice.FinishReason == goopenai.FinishReasonLength {
		return out, nil
	}
	out.Parsed = parser.ParsedPayload(choice.Message.Content)
	return out, nil
}

// mapError converts go-openai errors into the parser error taxonomy.
func mapError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return parser.NewRateLimitError(providerName, err, 0)
		}
		return &parser.APIError{Provider: providerName, StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusTooManyRequests {
			return parser.NewRateLimitError(providerName, err, 0)
		}
		return &parser.APIError{Provider: providerName, StatusCode: reqErr.HTTPStatusCode, Body: reqErr.Error()}
	}
	return fmt.Errorf("calling openai API: %w", err)
}

package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"invoicex/internal/config"
	"invoicex/internal/parser"
	"invoicex/internal/port"
)

const (
	apiURL       = "https://api.anthropic.com/v1/messages"
	apiVersion   = "2023-06-01"
	providerName = "claude"
	defaultModel = "claude-sonnet-4-20250514"
)

// Completer implements port.StructuredCompleter using the Anthropic Messages API.
// The output schema is declared as the input schema of a single forced tool, so the
// tool_use block carries the structured payload.
type Completer struct {
	apiKey      string
	model       string
	temperature float32
	endpoint    string
	client      *http.Client
}

// NewCompleter creates a Claude completer from a provider config.
func NewCompleter(cfg *config.ParserProviderConfig) *Completer {
	return newCompleter(cfg, apiURL)
}

// NewCompleterWithEndpoint creates a completer pointing at a custom API endpoint (for testing).
func NewCompleterWithEndpoint(cfg *config.ParserProviderConfig, endpoint string) *Completer {
	return newCompleter(cfg, endpoint)
}

func newCompleter(cfg *config.ParserProviderConfig, endpoint string) *Completer {
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Completer{
		apiKey:      cfg.APIKey,
		model:       model,
		temperature: cfg.Temperature,
		endpoint:    endpoint,
		client:      &http.Client{Timeout: timeout},
	}
}

func (c *Completer) Complete(ctx context.Context, req port.CompletionRequest) (*port.CompletionOutput, error) {
	toolName := "record_" + req.SchemaName
	reqBody := map[string]interface{}{
		"model":       c.model,
		"max_tokens":  8192,
		"temperature": c.temperature,
		"system":      req.SystemInstruction,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": req.UserText,
			},
		},
		"tools": []map[string]interface{}{
			{
				"name":         toolName,
				"description":  "Record the data extracted from the invoice.",
				"input_schema": req.Schema,
			},
		},
		"tool_choice": map[string]interface{}{
			"type": "tool",
			"name": toolName,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling anthropic API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parser.StatusError(providerName, resp.StatusCode, respBody, resp.Header.Get("Retry-After"))
	}

	return parseResponse(respBody, c.model, toolName)
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type  string          `json:"type"`
		Name  string          `json:"name"`
		Text  string          `json:"text"`
		Input json.RawMessage `json:"input"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func parseResponse(body []byte, model, toolName string) (*port.CompletionOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	out := &port.CompletionOutput{ModelUsed: model, Provider: providerName, FinishReason: resp.StopReason}
	if resp.StopReason == "max_tokens" {
		return out, nil
	}
	for _, block := range resp.Content {
		if block.Type == "tool_use" && block.Name == toolName {
			out.Parsed = parser.ParsedPayload(string(block.Input))
			break
		}
	}
	return out, nil
}

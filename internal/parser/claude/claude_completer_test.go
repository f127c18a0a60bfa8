package claude_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicex/internal/config"
	"invoicex/internal/parser"
	"invoicex/internal/parser/claude"
	"invoicex/internal/port"
)

func newTestCompleter(serverURL string) *claude.Completer {
	cfg := &config.ParserProviderConfig{
		Provider:     "claude",
		APIKey:       "test-api-key",
		DefaultModel: "claude-sonnet-4-20250514",
		TimeoutSecs:  30,
	}
	return claude.NewCompleterWithEndpoint(cfg, serverURL)
}

var testRequest = port.CompletionRequest{
	SystemInstruction: "system prompt",
	UserText:          "FACTURA FV-001",
	SchemaName:        "invoice",
	Schema:            json.RawMessage(`{"type":"object"}`),
}

func TestClaudeCompleter_Complete_ToolUse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-api-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "claude-sonnet-4-20250514", reqBody["model"])
		assert.Equal(t, "system prompt", reqBody["system"])

		messages := reqBody["messages"].([]interface{})
		assert.Len(t, messages, 1)
		assert.Equal(t, "FACTURA FV-001", messages[0].(map[string]interface{})["content"])

		tools := reqBody["tools"].([]interface{})
		assert.Len(t, tools, 1)
		tool := tools[0].(map[string]interface{})
		assert.Equal(t, "record_invoice", tool["name"])
		assert.Equal(t, map[string]interface{}{"type": "object"}, tool["input_schema"])

		choice := reqBody["tool_choice"].(map[string]interface{})
		assert.Equal(t, "tool", choice["type"])
		assert.Equal(t, "record_invoice", choice["name"])

		_, _ = w.Write([]byte(`{
			"content": [{"type": "tool_use", "name": "record_invoice", "input": {"numero_factura": "FV-001"}}],
			"stop_reason": "tool_use"
		}`))
	}))
	defer server.Close()

	out, err := newTestCompleter(server.URL).Complete(context.Background(), testRequest)

	require.NoError(t, err)
	assert.Equal(t, "claude", out.Provider)
	assert.Equal(t, "tool_use", out.FinishReason)
	assert.JSONEq(t, `{"numero_factura":"FV-001"}`, string(out.Parsed))
}

func TestClaudeCompleter_Complete_NoToolUse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content": [{"type": "text", "text": "Sorry."}], "stop_reason": "end_turn"}`))
	}))
	defer server.Close()

	out, err := newTestCompleter(server.URL).Complete(context.Background(), testRequest)

	require.NoError(t, err)
	assert.Nil(t, out.Parsed)
}

func TestClaudeCompleter_Complete_MaxTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"content": [{"type": "tool_use", "name": "record_invoice", "input": {"numero_factura": "FV"}}],
			"stop_reason": "max_tokens"
		}`))
	}))
	defer server.Close()

	out, err := newTestCompleter(server.URL).Complete(context.Background(), testRequest)

	require.NoError(t, err)
	assert.Nil(t, out.Parsed)
}

func TestClaudeCompleter_Complete_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "15")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	_, err := newTestCompleter(server.URL).Complete(context.Background(), testRequest)

	var rlErr *parser.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, "claude", rlErr.Provider)
	assert.Equal(t, 15.0, rlErr.RetryAfter.Seconds())
}

func TestClaudeCompleter_Complete_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	_, err := newTestCompleter(server.URL).Complete(context.Background(), testRequest)

	var apiErr *parser.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream down", apiErr.Body)
}

package port

import (
	"context"
	"encoding/json"
)

// CompletionRequest is a two-message structured completion: a fixed system
// instruction, the raw user text, and the JSON schema the output must follow.
type CompletionRequest struct {
	SystemInstruction string
	UserText          string
	SchemaName        string
	Schema            json.RawMessage
}

// CompletionOutput carries the provider's parsed payload.
type CompletionOutput struct {
	Parsed       json.RawMessage // nil when the model produced nothing conforming
	ModelUsed    string
	Provider     string
	FinishReason string
}

// StructuredCompleter abstracts a schema-constrained LLM completion endpoint.
type StructuredCompleter interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionOutput, error)
}

package parser

import (
	"encoding/json"
	"strings"
)

// ParsedPayload returns the model text as raw JSON, or nil when the text is
// empty or not a JSON object.
func ParsedPayload(text string) json.RawMessage {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "{") || !json.Valid([]byte(text)) {
		return nil
	}
	return json.RawMessage(text)
}

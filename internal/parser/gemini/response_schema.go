package gemini

import (
	"encoding/json"
	"fmt"
	"strings"
)

// responseSchema converts a JSON schema into the OpenAPI subset accepted by
// generationConfig.responseSchema. Union types with "null" become nullable and
// keywords Gemini rejects (additionalProperties) are dropped.
func responseSchema(raw json.RawMessage) (map[string]any, error) {
	var schema map[string]any
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("decoding schema: %w", err)
	}
	return convertNode(schema), nil
}

func convertNode(node map[string]any) map[string]any {
	out := make(map[string]any, len(node))
	for key, val := range node {
		switch key {
		case "additionalProperties", "$schema":
			continue
		case "type":
			typ, nullable := schemaType(val)
			if typ != "" {
				out["type"] = typ
			}
			if nullable {
				out["nullable"] = true
			}
		case "properties":
			props, _ := val.(map[string]any)
			converted := make(map[string]any, len(props))
			for name, p := range props {
				if child, ok := p.(map[string]any); ok {
					converted[name] = convertNode(child)
				}
			}
			out["properties"] = converted
		case "items":
			if child, ok := val.(map[string]any); ok {
				out["items"] = convertNode(child)
			}
		default:
			out[key] = val
		}
	}
	return out
}

// schemaType maps "string" or ["string","null"] to the upper-case OpenAPI type.
func schemaType(val any) (string, bool) {
	switch t := val.(type) {
	case string:
		return strings.ToUpper(t), false
	case []any:
		var typ string
		nullable := false
		for _, v := range t {
			s, _ := v.(string)
			if s == "null" {
				nullable = true
				continue
			}
			typ = strings.ToUpper(s)
		}
		return typ, nullable
	}
	return "", false
}

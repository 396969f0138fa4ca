package inference

import (
	"encoding/json"
	"fmt"
)

// ExtractCompletion pulls the review text out of a generate reply. It tries
// the top-level "response" field, then results[0].content, and finally falls
// back to the JSON text of the whole payload so callers always get some text.
func ExtractCompletion(raw []byte) (Completion, error) {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Completion{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	if text, ok := payload["response"].(string); ok {
		return Completion{Text: text, Source: SourceDirect}, nil
	}

	if results, ok := payload["results"].([]any); ok && len(results) > 0 {
		if first, ok := results[0].(map[string]any); ok {
			if content, ok := first["content"]; ok {
				return Completion{Text: stringify(content), Source: SourceNested}, nil
			}
		}
	}

	return Completion{Text: string(raw), Source: SourceRawFallback}, nil
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

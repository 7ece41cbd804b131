package radar

import (
	"encoding/json"
	"errors"
	"strings"

	"radar-backend/internal/llm"
)

// JSONParser is the default parse capability: it unwraps content
// fragments or quoted strings, locates the embedded JSON object and
// unmarshals it into a keyed document.
type JSONParser struct{}

// Parse implements llm.Parser.
func (JSONParser) Parse(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, errors.New("empty response")
	}

	// Objects pass through directly.
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err == nil {
		return doc, nil
	}

	// Strings and fragment arrays carry the object as embedded text.
	text := RenderText(raw)
	object := extractObject(text)
	if object == "" {
		return nil, errors.New("no JSON object in response")
	}
	if err := json.Unmarshal([]byte(object), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// extractObject returns the outermost {...} span of the text, tolerating
// surrounding prose and markdown fences.
func extractObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

var _ llm.Parser = JSONParser{}

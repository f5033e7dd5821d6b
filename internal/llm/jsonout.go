package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is a compiled JSON schema that model replies must satisfy.
type Schema struct {
	schema *gojsonschema.Schema
}

// MustSchema compiles src and panics if it is not a valid schema.
func MustSchema(src string) *Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("llm: compile schema: %v", err))
	}
	return &Schema{schema: s}
}

// SchemaError lists why a reply did not match its schema.
type SchemaError struct {
	Issues []string
}

func (e *SchemaError) Error() string {
	return "model reply does not match schema: " + strings.Join(e.Issues, "; ")
}

// Check validates a JSON document against the schema.
func (s *Schema) Check(doc string) error {
	result, err := s.schema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return fmt.Errorf("validate model reply: %w", err)
	}
	if result.Valid() {
		return nil
	}
	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}
	return &SchemaError{Issues: issues}
}

// Decode extracts the JSON payload of a reply, checks it against schema when
// one is given and unmarshals it into T.
func Decode[T any](reply string, schema *Schema) (T, error) {
	var out T
	payload := ExtractJSON(reply)
	if payload == "" {
		return out, fmt.Errorf("model reply contains no JSON")
	}
	if schema != nil {
		if err := schema.Check(payload); err != nil {
			return out, err
		}
	}
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return out, fmt.Errorf("failed to parse model reply: %w", err)
	}
	return out, nil
}

// ExtractJSON strips markdown fences and surrounding prose from a reply and
// returns the outermost JSON object or array.
func ExtractJSON(text string) string {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return ""
	}

	start := firstOf(strings.Index(clean, "["), strings.Index(clean, "{"))
	if start == -1 {
		return clean
	}
	end := max(strings.LastIndex(clean, "]"), strings.LastIndex(clean, "}"))
	if end <= start {
		return clean
	}
	return strings.TrimSpace(clean[start : end+1])
}

// firstOf returns the smaller non-negative index, or -1.
func firstOf(a, b int) int {
	switch {
	case a == -1:
		return b
	case b == -1:
		return a
	default:
		return min(a, b)
	}
}

package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildPayloadJSONSchema describes the serialized Payload shape. The
// repository stores the payload as opaque JSON, so this is the last guard
// against persisting a malformed record.
func BuildPayloadJSONSchema() map[string]any {
	party := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":    map[string]any{"type": []string{"string", "null"}},
			"address": map[string]any{"type": []string{"string", "null"}},
		},
	}
	productLine := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"quantity":   map[string]any{"type": "number", "minimum": 0},
			"name":       map[string]any{"type": "string", "minLength": 1},
			"unit_price": map[string]any{"type": []string{"number", "null"}},
			"line_total": map[string]any{"type": []string{"number", "null"}},
		},
		"required": []string{"quantity", "name"},
	}
	invoice := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"customer": map[string]any{"oneOf": []any{party, map[string]any{"type": "null"}}},
			"supplier": map[string]any{"oneOf": []any{party, map[string]any{"type": "null"}}},
			"number":   map[string]any{"type": []string{"string", "null"}},
			"date":     map[string]any{"type": []string{"string", "null"}},
			"lines":    map[string]any{"type": []string{"array", "null"}, "items": productLine},
			"total":    map[string]any{"type": []string{"number", "null"}},
		},
	}
	information := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description": map[string]any{"type": "string"},
			"summary":     map[string]any{"type": "string"},
			"sentiment":   map[string]any{"enum": []string{SentimentPositive, SentimentNegative, SentimentNeutral}},
		},
		"required": []string{"description", "summary", "sentiment"},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"document_type": map[string]any{"enum": []string{"FACTURA", "INFORMACION"}},
			"invoice":       invoice,
			"information":   information,
			"raw_text":      map[string]any{"type": "string", "maxLength": MaxTextLength},
		},
		"required": []string{"document_type", "raw_text"},
		"oneOf": []any{
			map[string]any{"required": []string{"invoice"}, "not": map[string]any{"required": []string{"information"}}},
			map[string]any{"required": []string{"information"}, "not": map[string]any{"required": []string{"invoice"}}},
		},
	}
}

// ValidatePayloadJSON validates serialized payload bytes against the
// payload schema.
func ValidatePayloadJSON(data []byte) error {
	return validateJSONAgainstSchema(BuildPayloadJSONSchema(), data)
}

// validateJSONAgainstSchema validates "data" against "schemaMap".
func validateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

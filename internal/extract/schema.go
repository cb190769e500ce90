package extract

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ResultSchema returns the JSON schema of a marshalled Result.
// confidence is an unbounded heuristic score, not a probability.
func ResultSchema(formatIDs []string) map[string]any {
	fields := map[string]any{
		"issuerId":           nullableString(),
		"issuerName":         nullableString(),
		"recipientId":        nullableString(),
		"recipientName":      nullableString(),
		"documentDate":       nullableString(),
		"documentNumber":     nullableString(),
		"totalAmount":        nullableNumber(),
		"netAmount":          nullableNumber(),
		"secondaryTaxAmount": nullableNumber(),
		"description":        nullableString(),
		"extras": map[string]any{
			"type":                 "object",
			"additionalProperties": map[string]any{"type": "number"},
		},
	}
	formatID := map[string]any{"type": "string", "minLength": 1}
	if len(formatIDs) > 0 {
		formatID["enum"] = formatIDs
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"formatId", "confidence", "fields"},
		"properties": map[string]any{
			"formatId":   formatID,
			"confidence": map[string]any{"type": "number"},
			"fields": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties":           fields,
				"required": []string{
					"issuerId", "issuerName", "recipientId", "recipientName",
					"documentDate", "documentNumber", "totalAmount", "netAmount",
					"secondaryTaxAmount", "description",
				},
			},
			"candidates": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []string{"formatId", "score"},
					"properties": map[string]any{
						"formatId": map[string]any{"type": "string"},
						"score":    map[string]any{"type": "number"},
					},
				},
			},
		},
	}
}

func nullableString() map[string]any {
	return map[string]any{"type": []string{"string", "null"}}
}

func nullableNumber() map[string]any {
	return map[string]any{"type": []string{"number", "null"}}
}

// CompileSchema compiles a schema map built by ResultSchema.
func CompileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("result.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("result.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// ValidateResult checks the JSON form of res against schema.
func ValidateResult(schema *jsonschema.Schema, res Result) ([]byte, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return nil, fmt.Errorf("result does not match schema: %w", err)
	}
	return data, nil
}

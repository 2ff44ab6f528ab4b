package auditor

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// buildAuditSchema returns the JSON-Schema the model's reply is expected to
// match. financial_exposure is deliberately unconstrained: the model returns
// either a bare scalar or a nested breakdown and both are legitimate.
func buildAuditSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"compliance_score": map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
			"risk_level":       map[string]any{"type": "string"},
			"red_flags":        map[string]any{"type": "array"},
		},
		"required": []string{"compliance_score", "risk_level", "red_flags"},
	}
}

// validateShape validates a parsed model reply against the audit schema.
// Callers treat a failure as a warning, never as a request failure.
func validateShape(data []byte) error {
	b, err := json.Marshal(buildAuditSchema())
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

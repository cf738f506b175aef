package evaluate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const verdictSchemaURL = "mem://screener/verdict.schema.json"

// compileVerdictSchema builds a schema requiring every field as a string and
// priority as one of the allowed labels.
func compileVerdictSchema(fields, allowed []string) (*jsonschema.Schema, error) {
	properties := make(map[string]interface{}, len(fields)+1)
	for _, field := range fields {
		properties[field] = map[string]interface{}{"type": "string"}
	}
	priority := map[string]interface{}{"type": "string"}
	if len(allowed) > 0 {
		priority["enum"] = allowed
	}
	properties["priority"] = priority
	doc := map[string]interface{}{
		"$schema":    "https://json-schema.org/draft/2020-12/schema",
		"type":       "object",
		"required":   fields,
		"properties": properties,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(verdictSchemaURL, strings.NewReader(string(data))); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(verdictSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// validateVerdict checks verdict against the schema for fields and allowed.
func validateVerdict(verdict map[string]string, fields, allowed []string) error {
	schema, err := compileVerdictSchema(fields, allowed)
	if err != nil {
		return err
	}
	doc := make(map[string]interface{}, len(verdict))
	for key, value := range verdict {
		doc[key] = value
	}
	return schema.Validate(doc)
}

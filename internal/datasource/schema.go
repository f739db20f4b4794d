package datasource

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

const diagramSchemaURL = "https://nereid.dev/schemas/sequence.json"

// diagramSchemaJSON checks document structure only. Block membership is
// checked by the renderer.
const diagramSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://nereid.dev/schemas/sequence.json",
  "type": "object",
  "required": ["participants", "messages"],
  "properties": {
    "diagram_id": { "type": "string", "pattern": "^[^/]+$" },
    "participants": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {
          "id": { "$ref": "#/$defs/id" },
          "name": { "type": "string" }
        },
        "additionalProperties": false
      }
    },
    "messages": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "from", "to"],
        "properties": {
          "id": { "$ref": "#/$defs/id" },
          "from": { "type": "string", "minLength": 1 },
          "to": { "type": "string", "minLength": 1 },
          "kind": { "type": "string", "enum": ["sync", "async", "return"] },
          "text": { "type": "string" },
          "order": { "type": "integer" }
        },
        "additionalProperties": false
      }
    },
    "blocks": {
      "type": "array",
      "items": { "$ref": "#/$defs/block" }
    }
  },
  "additionalProperties": false,
  "$defs": {
    "id": { "type": "string", "pattern": "^[^/]+$" },
    "block": {
      "type": "object",
      "required": ["id", "kind", "sections"],
      "properties": {
        "id": { "$ref": "#/$defs/id" },
        "kind": { "type": "string", "enum": ["alt", "opt", "loop", "par"] },
        "header": { "type": "string" },
        "sections": {
          "type": "array",
          "items": { "$ref": "#/$defs/section" }
        },
        "blocks": {
          "type": "array",
          "items": { "$ref": "#/$defs/block" }
        }
      },
      "additionalProperties": false
    },
    "section": {
      "type": "object",
      "required": ["id", "messages"],
      "properties": {
        "id": { "$ref": "#/$defs/id" },
        "kind": { "type": "string", "enum": ["main", "else", "and"] },
        "header": { "type": "string" },
        "messages": {
          "type": "array",
          "items": { "type": "string" }
        }
      },
      "additionalProperties": false
    }
  }
}`

// ValidationError lists every schema violation of a diagram document.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return "invalid diagram: " + e.Violations[0]
	}
	return fmt.Sprintf("invalid diagram: %d violations: %s", len(e.Violations), strings.Join(e.Violations, "; "))
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(diagramSchemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("unmarshal diagram schema: %w", err)
			return
		}
		if err := c.AddResource(diagramSchemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add diagram schema resource: %w", err)
			return
		}
		schema, schemaErr = c.Compile(diagramSchemaURL)
	})
	return schema, schemaErr
}

// validate checks a JSON document against the diagram schema.
func validate(raw []byte) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		return &ValidationError{Violations: collectViolations(verr)}
	}
	return nil
}

// collectViolations walks a ValidationError tree and collects the leaf
// messages with their instance locations.
func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}
	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}

package parser

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// candidateSchema is the validation gate applied to raw provider JSON before
// sanitising. Identifiers may arrive as numbers; strings must not be blank.
const candidateSchema = `{
  "type": "object",
  "required": ["vendor", "invoice"],
  "properties": {
    "vendor": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name": {"type": "string", "pattern": "\\S"}
      }
    },
    "invoice": {
      "type": "object",
      "required": ["number", "date", "lineItems"],
      "properties": {
        "number": {"type": ["string", "number"], "pattern": "\\S"},
        "date": {"type": "string", "pattern": "\\S"},
        "lineItems": {"type": "array"}
      }
    }
  }
}`

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("candidate.json", strings.NewReader(candidateSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("candidate.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
})

// ValidateCandidate checks decoded provider JSON against the candidate gate.
func ValidateCandidate(v interface{}) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

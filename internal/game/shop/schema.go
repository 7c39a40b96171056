package shop

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.schema.json
var defaultSchema string

// SchemaValidator checks raw catalog documents against a JSON schema before
// they are decoded into records. It is safe for concurrent use.
type SchemaValidator struct {
	schema *jsonschema.Schema
}

// DefaultSchema returns a validator for the built-in catalog schema.
//
// Postcondition: Returns a non-nil validator or a non-nil error.
func DefaultSchema() (*SchemaValidator, error) {
	s, err := jsonschema.CompileString("catalog.schema.json", defaultSchema)
	if err != nil {
		return nil, fmt.Errorf("compiling built-in catalog schema: %w", err)
	}
	return &SchemaValidator{schema: s}, nil
}

// LoadSchema compiles the JSON schema stored at path.
//
// Precondition: path must name a readable JSON schema document.
// Postcondition: Returns a non-nil validator or a non-nil error.
func LoadSchema(path string) (*SchemaValidator, error) {
	s, err := jsonschema.Compile(path)
	if err != nil {
		return nil, fmt.Errorf("compiling catalog schema %s: %w", path, err)
	}
	return &SchemaValidator{schema: s}, nil
}

// ValidateJSON validates a JSON catalog document.
func (v *SchemaValidator) ValidateJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("parsing catalog JSON: %w", err)
	}
	return v.validate(doc)
}

// ValidateYAML validates a YAML catalog document by re-encoding it as JSON.
func (v *SchemaValidator) ValidateYAML(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing catalog YAML: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("converting catalog YAML: %w", err)
	}
	return v.ValidateJSON(raw)
}

func (v *SchemaValidator) validate(doc any) error {
	if err := v.schema.Validate(doc); err != nil {
		return fmt.Errorf("catalog schema: %w", err)
	}
	return nil
}

package ir

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "https://github.com/jcormont/expression-runner/ir.schema.json"

var getSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add IR schema: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// Schema returns the JSON Schema that describes serialized programs.
func Schema() string {
	return schemaJSON
}

// Validate checks JSON encoded IR against the program schema. It returns a
// *ValidationError describing the first failing location.
func Validate(data []byte) error {
	schema, err := getSchema()
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("ir: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			leaf := ve
			for len(leaf.Causes) > 0 {
				leaf = leaf.Causes[0]
			}
			return &ValidationError{Location: leaf.InstanceLocation, Message: leaf.Message, cause: ve}
		}
		return err
	}
	return nil
}

// ValidationError reports IR that does not match the program schema.
type ValidationError struct {
	Location string
	Message  string
	cause    *jsonschema.ValidationError
}

func (e *ValidationError) Error() string {
	if e.Location == "" {
		return "ir: invalid program: " + e.Message
	}
	return fmt.Sprintf("ir: invalid program at %s: %s", e.Location, e.Message)
}

// Detail returns the full schema validation report.
func (e *ValidationError) Detail() string {
	if e.cause == nil {
		return e.Error()
	}
	return fmt.Sprintf("%#v", e.cause)
}

package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed dataset.schema.json
var datasetSchema []byte

const datasetSchemaURL = "dataset.schema.json"

// Validator checks raw dataset payloads against the dataset JSON schema
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the embedded dataset schema
func NewValidator() (*Validator, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(datasetSchemaURL, bytes.NewReader(datasetSchema)); err != nil {
		return nil, fmt.Errorf("add dataset schema: %w", err)
	}
	s, err := c.Compile(datasetSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile dataset schema: %w", err)
	}
	return &Validator{schema: s}, nil
}

// Validate checks that data is a structurally valid dataset payload
func (v *Validator) Validate(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse dataset: %w", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return fmt.Errorf("invalid dataset: %w", err)
	}
	return nil
}

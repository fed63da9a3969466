// Package validation checks serialized domain and index documents against
// the JSON Schemas published with them.
package validation

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema resource names.
const (
	DomainSchemaName = "domain.v1.json"
	IndexSchemaName  = "search-index.v1.json"
)

var (
	ErrSchemaInvalid    = errors.New("schema invalid")
	ErrSchemaValidation = errors.New("schema validation failed")
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	compiledMu sync.Mutex
	compiled   = map[string]*jsonschema.Schema{}
)

// SchemaDocument returns the raw JSON Schema for name.
func SchemaDocument(name string) ([]byte, error) {
	return schemaFS.ReadFile("schemas/" + name)
}

// CompileSchema compiles a draft 2020-12 schema with format assertions on.
func CompileSchema(name string, raw []byte) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return schema, nil
}

// ValidateDomainJSON checks a serialized domain document.
func ValidateDomainJSON(payload []byte) error {
	return validateDocument(DomainSchemaName, payload)
}

// ValidateIndexJSON checks a serialized search index.
func ValidateIndexJSON(payload []byte) error {
	return validateDocument(IndexSchemaName, payload)
}

func validateDocument(name string, payload []byte) error {
	schema, err := embeddedSchema(name)
	if err != nil {
		return err
	}

	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()
	var doc any
	err = decoder.Decode(&doc)
	if err == nil && decoder.More() {
		err = errors.New("trailing data after JSON document")
	}
	if err != nil {
		return &DocumentError{Schema: name, Issues: []Issue{{Message: "invalid JSON: " + err.Error()}}, Cause: err}
	}

	if err := schema.Validate(doc); err != nil {
		return &DocumentError{Schema: name, Issues: Issues(err), Cause: err}
	}
	return nil
}

func embeddedSchema(name string) (*jsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if schema, ok := compiled[name]; ok {
		return schema, nil
	}
	raw, err := SchemaDocument(name)
	if err != nil {
		return nil, err
	}
	schema, err := CompileSchema(name, raw)
	if err != nil {
		return nil, err
	}
	compiled[name] = schema
	return schema, nil
}

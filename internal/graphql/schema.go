package graphql

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/validator"
)

//go:embed schema.graphql
var storeAPISchema string

// ValidationError reports a request the upstream schema would reject.
type ValidationError struct {
	OperationName string
	Err           error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request %q: %v", e.OperationName, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Schema validates requests against the store API schema before they leave the process.
type Schema struct {
	schema *ast.Schema
}

// LoadSchema parses and validates an SDL document.
func LoadSchema(name, sdl string) (*Schema, error) {
	schema, err := gqlparser.LoadSchema(&ast.Source{Name: name, Input: sdl})
	if err != nil {
		return nil, fmt.Errorf("load schema %s: %w", name, err)
	}
	return &Schema{schema: schema}, nil
}

// LoadStoreSchema loads the embedded store API schema.
func LoadStoreSchema() (*Schema, error) {
	return LoadSchema("schema.graphql", storeAPISchema)
}

// Validate parses the request document, runs the standard validation rules and
// coerces the variables against the operation's variable definitions.
func (s *Schema) Validate(req Request) error {
	if req.Query == "" {
		return &ValidationError{OperationName: req.OperationName, Err: errors.New("no query string supplied")}
	}

	doc, errs := gqlparser.LoadQuery(s.schema, req.Query)
	if len(errs) > 0 {
		return &ValidationError{OperationName: req.OperationName, Err: errs}
	}

	op := doc.Operations.ForName(req.OperationName)
	if op == nil {
		return &ValidationError{
			OperationName: req.OperationName,
			Err:           fmt.Errorf("operation %q is not present in the document", req.OperationName),
		}
	}

	if _, err := validator.VariableValues(s.schema, op, req.Variables); err != nil {
		return &ValidationError{OperationName: req.OperationName, Err: err}
	}
	return nil
}

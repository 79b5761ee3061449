package store

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Makepad-fr/tada/internal/model"
)

//go:embed todos.schema.json
var schemaJSON string

var todosSchema = jsonschema.MustCompileString("todos.schema.json", schemaJSON)

// EmptyDocument is what a backend is bootstrapped with.
const EmptyDocument = "[]"

// Decode parses a stored document. The result is never nil.
// Shape violations are reported with the JSON path of the first offending value.
func Decode(b []byte) ([]model.Todo, error) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if err := todosSchema.Validate(doc); err != nil {
		return nil, schemaError(err)
	}
	todos := []model.Todo{}
	if err := json.Unmarshal(b, &todos); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return todos, nil
}

// Encode renders todos the way every backend stores them.
// Output is deterministic, so Encode(Decode(b)) is stable.
func Encode(todos []model.Todo) ([]byte, error) {
	if todos == nil {
		todos = []model.Todo{}
	}
	b, err := json.MarshalIndent(todos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return b, nil
}

func schemaError(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return fmt.Errorf("schema: %w", err)
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := ve.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return fmt.Errorf("schema: %s: %s", loc, ve.Message)
}

package problemset

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed sets.schema.json
var setsSchema []byte

const setsSchemaURL = "schema://sets.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func setsValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(setsSchema))
		if err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(setsSchemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(setsSchemaURL)
	})
	return compiled, compileErr
}

// validateSets checks raw JSON against the set document schema and decodes it.
func validateSets(raw []byte) ([]MathSet, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSetDocument, err)
	}

	schema, err := setsValidator()
	if err != nil {
		return nil, fmt.Errorf("compile set schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSetDocument, err)
	}

	var sets []MathSet
	if err := json.Unmarshal(raw, &sets); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSetDocument, err)
	}
	return sets, nil
}

package action

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

func init() {
	if err := compileContracts(); err != nil {
		panic(err)
	}
}

// compileContracts compiles the parameter schema of every command in the
// table and stores it on the handler.
func compileContracts() error {
	c := jsonschema.NewCompiler()
	for name, h := range handlers {
		compiled, err := compileContract(c, name, h.schema)
		if err != nil {
			return fmt.Errorf("command %s: %w", name, err)
		}
		h.contract = compiled
		handlers[name] = h
	}
	return nil
}

func compileContract(c *jsonschema.Compiler, name string, doc json.RawMessage) (*jsonschema.Schema, error) {
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	loc := "kenkudeck://commands/" + name + ".json"
	if err := c.AddResource(loc, parsed); err != nil {
		return nil, err
	}
	return c.Compile(loc)
}

// checkParams validates params against the command's contract. Absent
// parameters validate as an empty object.
func (h handler) checkParams(params Params) error {
	instance := map[string]any(params)
	if instance == nil {
		instance = map[string]any{}
	}
	return h.contract.Validate(instance)
}

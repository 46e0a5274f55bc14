package action

import (
	"encoding/json"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

func TestCommandContracts_AllCompiled(t *testing.T) {
	if len(handlers) == 0 {
		t.Fatal("command table is empty")
	}
	for name, h := range handlers {
		if h.contract == nil {
			t.Errorf("%s: contract not compiled", name)
		}
	}
}

func TestCommandContracts_CompileFromScratch(t *testing.T) {
	c := jsonschema.NewCompiler()
	for name, h := range handlers {
		if _, err := compileContract(c, name, h.schema); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestCheckParams_Volume(t *testing.T) {
	h := handlers[PlaylistVolume]

	if err := h.checkParams(Params{"volume": 0.4}); err != nil {
		t.Errorf("expected valid payload, got: %v", err)
	}
	if err := h.checkParams(Params{"volume": -0.1}); err == nil {
		t.Error("expected validation error for negative volume")
	}
	if err := h.checkParams(Params{}); err == nil {
		t.Error("expected validation error for missing volume")
	}
}

func TestCheckParams_StepIsOptional(t *testing.T) {
	h := handlers[PlaylistVolumeUp]

	if err := h.checkParams(Params{}); err != nil {
		t.Errorf("increment should be optional, got: %v", err)
	}
	if err := h.checkParams(Params{"increment": float64(0)}); err == nil {
		t.Error("expected validation error for zero increment")
	}
}

func TestCheckParams_NilIsEmptyObject(t *testing.T) {
	if err := handlers[PlaylistNext].checkParams(nil); err != nil {
		t.Errorf("nil params should validate as {}, got: %v", err)
	}
	if err := handlers[PlaylistNext].checkParams(Params{"extra": 1.0}); err == nil {
		t.Error("expected validation error for unexpected parameter")
	}
}

func TestCompileContract_BadSchema(t *testing.T) {
	c := jsonschema.NewCompiler()
	if _, err := compileContract(c, "broken", json.RawMessage(`{"type": 12`)); err == nil {
		t.Error("expected error for malformed schema")
	}
	if _, err := compileContract(c, "wrong_type", json.RawMessage(`{"type": 12}`)); err == nil {
		t.Error("expected error for invalid schema keyword")
	}
}

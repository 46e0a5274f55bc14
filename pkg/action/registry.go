package action

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/kenkudeck/pkg/config"
	"github.com/urmzd/kenkudeck/pkg/deck"
)

// Params holds a command's arguments. It is never nil inside a Registry.
type Params map[string]any

// String returns the string parameter key, or "" when absent.
func (p Params) String(key string) string {
	v, _ := p[key].(string)
	return v
}

// Bool returns the boolean parameter key, or false when absent.
func (p Params) Bool(key string) bool {
	v, _ := p[key].(bool)
	return v
}

// Float returns the numeric parameter key, or def when absent.
func (p Params) Float(key string, def float64) float64 {
	if v, ok := p[key].(float64); ok {
		return v
	}
	return def
}

// Command is one step of a binding.
type Command struct {
	Name   string `json:"name"`
	Params Params `json:"params"`
}

func (c Command) String() string {
	if len(c.Params) == 0 {
		return c.Name
	}
	encoded, _ := json.Marshal(c.Params)
	return c.Name + string(encoded)
}

// Binding maps an instruction code to the commands it runs, in order.
type Binding struct {
	Code        byte      `json:"-"`
	Description string    `json:"description,omitempty"`
	Commands    []Command `json:"commands"`
}

// Registry resolves instruction codes to command sequences. It is immutable
// once built and safe for concurrent use.
type Registry struct {
	bindings map[byte]Binding
}

// NewRegistry validates bindings and builds a Registry. Unknown command
// names, unusable codes and duplicate codes are ErrConfiguration.
// Parameters are checked later, when a command executes.
func NewRegistry(bindings []Binding) (*Registry, error) {
	r := &Registry{
		bindings: make(map[byte]Binding, len(bindings)),
	}

	for _, b := range bindings {
		if err := checkCode(b.Code); err != nil {
			return nil, err
		}
		if _, dup := r.bindings[b.Code]; dup {
			return nil, fmt.Errorf("%w: code %q bound twice", ErrConfiguration, b.Code)
		}

		commands := make([]Command, 0, len(b.Commands))
		for i, cmd := range b.Commands {
			if !Known(cmd.Name) {
				return nil, fmt.Errorf("%w: code %q step %d: unknown command %q", ErrConfiguration, b.Code, i+1, cmd.Name)
			}
			params, err := normalizeParams(cmd.Params)
			if err != nil {
				return nil, fmt.Errorf("%w: code %q step %d: %v", ErrConfiguration, b.Code, i+1, err)
			}
			commands = append(commands, Command{Name: cmd.Name, Params: params})
		}

		b.Commands = commands
		r.bindings[b.Code] = b
	}

	log.Debug().Int("bindings", len(r.bindings)).Msg("Action registry built")
	return r, nil
}

// FromConfig converts the configured key table into a Registry.
func FromConfig(keys map[string]config.Key) (*Registry, error) {
	bindings := make([]Binding, 0, len(keys))
	for code, key := range keys {
		if len(code) != 1 {
			return nil, fmt.Errorf("%w: key %q must be a single ASCII character", ErrConfiguration, code)
		}
		b := Binding{Code: code[0], Description: key.Description}
		for _, step := range key.Commands {
			b.Commands = append(b.Commands, Command{Name: step.Name, Params: step.Params})
		}
		bindings = append(bindings, b)
	}
	return NewRegistry(bindings)
}

// Resolve returns the commands bound to code. The slice must not be modified.
func (r *Registry) Resolve(code byte) ([]Command, error) {
	b, ok := r.bindings[code]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCode, code)
	}
	return b.Commands, nil
}

// Bindings lists every binding ordered by code.
func (r *Registry) Bindings() []Binding {
	out := make([]Binding, 0, len(r.bindings))
	for _, b := range r.bindings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Len returns the number of bound codes.
func (r *Registry) Len() int {
	return len(r.bindings)
}

// Execute checks cmd's parameters against its contract and runs it on t.
// A contract violation is ErrConfiguration; remote failures pass through.
func (r *Registry) Execute(ctx context.Context, t Target, cmd Command) error {
	h, ok := handlers[cmd.Name]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", ErrConfiguration, cmd.Name)
	}
	if err := h.checkParams(cmd.Params); err != nil {
		return fmt.Errorf("%w: %s parameters: %v", ErrConfiguration, cmd.Name, err)
	}
	return h.run(ctx, t, cmd.Params)
}

func checkCode(code byte) error {
	switch {
	case code < 0x21 || code > 0x7E:
		return fmt.Errorf("%w: code 0x%02x is not a printable ASCII character", ErrConfiguration, code)
	case code == deck.HeartbeatMarker:
		return fmt.Errorf("%w: code %q is reserved for heartbeats", ErrConfiguration, code)
	}
	return nil
}

// normalizeParams turns decoded configuration values into plain JSON values
// (float64, string, bool, []any, map[string]any) and never returns nil.
func normalizeParams(in map[string]any) (Params, error) {
	out := Params{}
	if len(in) == 0 {
		return out, nil
	}
	encoded, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode parameters: %w", err)
	}
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil, fmt.Errorf("decode parameters: %w", err)
	}
	for k := range out {
		if strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("empty parameter name")
		}
	}
	return out, nil
}

// Package tools exposes the todo store as a set of named tools that take a
// JSON argument object and return a JSON-serializable result.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/nhle/mcp-todo/internal/model"
	"github.com/nhle/mcp-todo/internal/store"
	"github.com/nhle/mcp-todo/internal/validator"
)

// ErrUnknownTool is returned by Call for a name that is not registered.
var ErrUnknownTool = errors.New("unknown tool")

// Backend is the storage the tools operate on.
type Backend interface {
	store.ListStore
	store.ItemStore
	GetTags(ctx context.Context) ([]model.Tag, error)
}

// Param describes one argument of a tool.
type Param struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
}

// Tool is a registered operation.
type Tool struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"params"`

	handler func(ctx context.Context, args json.RawMessage) (any, error)
}

// Registry holds the tools in registration order.
type Registry struct {
	backend  Backend
	validate *validator.Validator
	tools    map[string]*Tool
	order    []string
}

// NewRegistry creates a registry with every todo tool registered.
func NewRegistry(backend Backend, v *validator.Validator) *Registry {
	if v == nil {
		v = validator.New()
	}
	r := &Registry{
		backend:  backend,
		validate: v,
		tools:    make(map[string]*Tool),
	}
	r.registerListTools()
	r.registerItemTools()
	return r
}

// List returns the registered tools in registration order.
func (r *Registry) List() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, *r.tools[name])
	}
	return out
}

// Call runs the named tool. Invalid arguments are reported as
// validator.ValidationErrors.
func (r *Registry) Call(ctx context.Context, name string, args json.RawMessage) (any, error) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return tool.handler(ctx, args)
}

// defaulter is implemented by inputs that fill in omitted arguments.
type defaulter interface {
	applyDefaults()
}

// register adds a tool whose arguments decode into In.
func register[In any](r *Registry, name, description string, fn func(ctx context.Context, in In) (any, error)) {
	var zero In
	r.tools[name] = &Tool{
		Name:        name,
		Description: description,
		Params:      describe(reflect.TypeOf(zero)),
		handler: func(ctx context.Context, args json.RawMessage) (any, error) {
			var in In
			if trimmed := bytes.TrimSpace(args); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
				if err := json.Unmarshal(trimmed, &in); err != nil {
					return nil, validator.Invalid("arguments", "json", fmt.Sprintf("arguments are not valid: %v", err))
				}
			}
			if d, ok := any(&in).(defaulter); ok {
				d.applyDefaults()
			}
			if err := r.validate.Validate(in); err != nil {
				return nil, err
			}
			return fn(ctx, in)
		},
	}
	r.order = append(r.order, name)
}

// describe lists the JSON arguments of an input struct.
func describe(t reflect.Type) []Param {
	params := []Param{}
	for i := range t.NumField() {
		f := t.Field(i)
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		params = append(params, Param{
			Name:        name,
			Type:        jsonType(f.Type),
			Required:    strings.HasPrefix(f.Tag.Get("validate"), "required"),
			Description: f.Tag.Get("desc"),
		})
	}
	return params
}

func jsonType(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct && strings.HasPrefix(t.Name(), "Field[") {
		if f, ok := t.FieldByName("Value"); ok {
			return jsonType(f.Type)
		}
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int64:
		return "integer"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice:
		return "array"
	default:
		return "object"
	}
}

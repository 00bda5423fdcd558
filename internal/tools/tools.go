// Package tools defines the tool registry shared by all domain handlers.
package tools

import (
	"context"
)

// Tool represents a callable tool. Tools are a closed, statically declared
// abstraction: the registry operates only over this struct, never over
// ad-hoc attribute probing.
type Tool struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Parameters  map[string]string `json:"parameters,omitempty"` // name -> type hint
	Handler     func(ctx context.Context, input string) (string, error) `json:"-"`
}

// Registry holds available tools. Registration order is preserved because
// it determines how the catalog is presented to the model; dispatch itself
// is order-independent.
type Registry struct {
	order []*Tool
	byName map[string]*Tool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Tool),
	}
}

// Register adds a tool to the registry. Registering a second tool with the
// same name returns a DuplicateToolError; registries are assembled once at
// startup, so a duplicate is a fatal misconfiguration rather than a
// per-request condition.
func (r *Registry) Register(t *Tool) error {
	if _, exists := r.byName[t.Name]; exists {
		return &DuplicateToolError{ToolName: t.Name}
	}
	r.byName[t.Name] = t
	r.order = append(r.order, t)
	return nil
}

// MustRegister is Register for startup wiring; it panics on duplicates.
func (r *Registry) MustRegister(t *Tool) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (*Tool, error) {
	t, ok := r.byName[name]
	if !ok {
		return nil, &ToolNotFoundError{ToolName: name}
	}
	return t, nil
}

// List returns all tools in registration order.
func (r *Registry) List() []*Tool {
	out := make([]*Tool, len(r.order))
	copy(out, r.order)
	return out
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	for i, t := range r.order {
		names[i] = t.Name
	}
	return names
}

// Execute runs a tool by name with the given input.
func (r *Registry) Execute(ctx context.Context, name, input string) (string, error) {
	t, err := r.Get(name)
	if err != nil {
		return "", err
	}
	return t.Handler(ctx, input)
}

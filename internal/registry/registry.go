// Package registry maps operator names to the callable capabilities that
// task nodes invoke. Operator packages plug in through the Module interface;
// lookup failure is a typed error, distinct from a missing graph key.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

// ErrNotFound indicates a string-named operator absent from the registry.
var ErrNotFound = errors.New("registry: operator not found")

// NotFoundError reports the operator name that failed lookup.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v: %q", ErrNotFound, e.Name)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Call carries everything an operator receives for one task invocation:
// the output identifier, the positional arguments with references already
// resolved to values, and the literal named options.
type Call struct {
	// Key is the identifier whose value the operator is producing.
	Key any
	// Args are the positional arguments in declaration order. Reference
	// arguments arrive as the resolved values of their identifiers.
	Args []any
	// Kwargs are literal named options from the task definition.
	Kwargs map[string]any
}

// Kwarg returns the named option, or fallback when absent.
func (c *Call) Kwarg(name string, fallback any) any {
	if v, ok := c.Kwargs[name]; ok {
		return v
	}
	return fallback
}

// Operator is the single capability signature all operators share. Operators
// must not mutate shared graph state; the executor assumes they are
// side-effect-free with respect to the graph.
type Operator func(ctx context.Context, call *Call) (any, error)

// Module is the interface operator packages implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the operators registered for one engine instance.
type Registry struct {
	ops map[string]Operator
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{ops: make(map[string]Operator)}
}

// Register adds op under name. Registering the same name twice is a
// programming error and panics.
func (r *Registry) Register(name string, op Operator) {
	if _, exists := r.ops[name]; exists {
		panic(fmt.Sprintf("operator %q already registered", name))
	}
	slog.Debug("Registering operator.", "name", name)
	r.ops[name] = op
}

// Install registers every module in order.
func (r *Registry) Install(modules ...Module) {
	for _, m := range modules {
		m.Register(r)
	}
}

// Lookup returns the operator registered under name.
func (r *Registry) Lookup(name string) (Operator, error) {
	op, ok := r.ops[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return op, nil
}

// Names returns the registered operator names, sorted, for diagnostics.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.ops))
	for name := range r.ops {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

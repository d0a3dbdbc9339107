package computer

import (
	"errors"
	"fmt"

	"github.com/vk/calcgrid/internal/graph"
	"github.com/vk/calcgrid/internal/key"
	"github.com/vk/calcgrid/internal/registry"
)

// ErrNoDefaultKey indicates Get called with an empty identifier and no
// default key configured.
var ErrNoDefaultKey = errors.New("computer: no default key set")

// ComputationError wraps an operator failure with the identifier and
// operator context needed to diagnose it without re-running.
type ComputationError struct {
	ID  string
	Op  string
	Err error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("computer: computing %s with operator %q: %v", e.ID, e.Op, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }

// Computer describes and executes computations over a graph of keyed tasks.
type Computer struct {
	graph      *graph.Graph
	reg        *registry.Registry
	workers    int
	cache      *Cache
	defaultKey any
}

// Option configures a Computer at construction.
type Option func(*Computer)

// WithWorkers sets the number of workers used to run independent plan
// branches. Values below 2 keep execution serial.
func WithWorkers(n int) Option {
	return func(c *Computer) { c.workers = n }
}

// WithCache installs a cross-Get result cache. Without one, results are
// memoized only within a single Get call.
func WithCache(cache *Cache) Option {
	return func(c *Computer) { c.cache = cache }
}

// WithDefaultKey sets the identifier Get resolves when called with nil.
func WithDefaultKey(id any) Option {
	return func(c *Computer) { c.defaultKey = id }
}

// New creates a Computer with an empty graph and the given operator
// registry.
func New(reg *registry.Registry, opts ...Option) *Computer {
	c := &Computer{graph: graph.New(), reg: reg, workers: 1}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Graph exposes the underlying graph for direct inspection.
func (c *Computer) Graph() *graph.Graph { return c.graph }

// SetDefaultKey sets the identifier Get resolves when called with nil.
func (c *Computer) SetDefaultKey(id any) { c.defaultKey = id }

// AddOption configures a single insertion.
type AddOption func(*addOptions)

type addOptions struct {
	strict bool
}

// Strict makes the insertion fail if the identifier already exists or if
// any identifier referenced by the node is absent, instead of the default
// overwrite-and-resolve-lazily behavior.
func Strict() AddOption {
	return func(o *addOptions) { o.strict = true }
}

// AddSingle adds one node definition at id and returns the identifier it
// was stored under. Without Strict, insertion never fails for missing
// dependencies and a later add at the same identifier wins.
func (c *Computer) AddSingle(id any, n graph.Node, opts ...AddOption) (any, error) {
	var o addOptions
	for _, opt := range opts {
		opt(&o)
	}
	var err error
	if o.strict {
		err = c.graph.SetStrict(id, n)
	} else {
		err = c.graph.Set(id, n)
	}
	if err != nil {
		return nil, err
	}
	return id, nil
}

// AddLiteral stores a constant at id.
func (c *Computer) AddLiteral(id any, v any, opts ...AddOption) (any, error) {
	return c.AddSingle(id, graph.Literal(v), opts...)
}

// AddAlias redirects id to target.
func (c *Computer) AddAlias(id, target any, opts ...AddOption) (any, error) {
	return c.AddSingle(id, graph.Alias(target), opts...)
}

// AddTask stores a task at id computing op over args.
func (c *Computer) AddTask(id any, op string, args ...graph.Arg) (any, error) {
	return c.AddSingle(id, graph.TaskNode(graph.NewTask(op, args...)))
}

// Keys returns every identifier defined in the graph.
func (c *Computer) Keys() []any { return c.graph.Keys() }

// Has reports whether id is defined, in any dimension order.
func (c *Computer) Has(id any) bool { return c.graph.Has(id) }

// FullKey returns the full-dimensionality key recorded for the quantity
// name of id.
func (c *Computer) FullKey(id any) (key.Key, error) {
	k, ok := c.graph.FullKey(id)
	if !ok {
		return key.Key{}, &graph.MissingKeyError{IDs: []string{graph.DisplayID(id)}}
	}
	return k, nil
}

// CheckKeys verifies that each of ids is defined and returns them in their
// stored form. A missing identifier yields MissingKeyError naming every
// absent id.
func (c *Computer) CheckKeys(ids ...any) ([]any, error) {
	out := make([]any, 0, len(ids))
	var missing []string
	for _, id := range ids {
		stored, ok := c.graph.UnsortedKey(id)
		if !ok {
			if full, haveFull := c.graph.FullKey(id); haveFull {
				out = append(out, full)
				continue
			}
			missing = append(missing, graph.DisplayID(id))
			continue
		}
		out = append(out, stored)
	}
	if len(missing) > 0 {
		return nil, &graph.MissingKeyError{IDs: missing}
	}
	return out, nil
}

// InferKeys completes each of ids to its stored or fullest-dimension form;
// unknown identifiers pass through unchanged.
func (c *Computer) InferKeys(ids ...any) []any {
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.graph.Infer(id))
	}
	return out
}

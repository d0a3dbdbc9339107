package computer

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/calcgrid/internal/ctxlog"
	"github.com/vk/calcgrid/internal/graph"
	"github.com/vk/calcgrid/internal/registry"
)

// planStep is one node scheduled for resolution: the node definition plus
// the canonical identifiers it depends on.
type planStep struct {
	canon string
	id    any
	node  graph.Node
	deps  []string
}

// plan is a minimal, topologically ordered execution plan for one target.
// Every identifier appears at most once, which is what guarantees a shared
// dependency is computed a single time per Get.
type plan struct {
	target string
	steps  []*planStep
}

// buildPlan walks the graph depth-first backward from id, resolving alias
// chains, collecting task dependencies, and detecting cycles through the
// in-progress resolution stack. Steps are appended after their
// dependencies, so the resulting order is a valid execution order.
func (c *Computer) buildPlan(id any) (*plan, error) {
	target, err := graph.CanonicalID(id)
	if err != nil {
		return nil, err
	}

	p := &plan{target: target}
	seen := make(map[string]bool)
	onStack := make(map[string]bool)
	var chain []string

	var walk func(ref any) error
	walk = func(ref any) error {
		canon, err := graph.CanonicalID(ref)
		if err != nil {
			return err
		}
		if seen[canon] {
			return nil
		}
		if onStack[canon] {
			// Close the loop in the reported chain at the repeated id.
			start := 0
			for i, c := range chain {
				if c == canon {
					start = i
					break
				}
			}
			return &graph.CycleError{Chain: append(append([]string(nil), chain[start:]...), canon)}
		}

		node, storedID, ok := c.graph.Get(ref)
		if !ok {
			return &graph.MissingKeyError{IDs: []string{graph.DisplayID(ref)}}
		}

		onStack[canon] = true
		chain = append(chain, canon)

		refs := node.Refs()
		deps := make([]string, 0, len(refs))
		depSet := make(map[string]bool, len(refs))
		for _, dep := range refs {
			if err := walk(dep); err != nil {
				return err
			}
			depCanon, err := graph.CanonicalID(dep)
			if err != nil {
				return err
			}
			if !depSet[depCanon] {
				depSet[depCanon] = true
				deps = append(deps, depCanon)
			}
		}

		delete(onStack, canon)
		chain = chain[:len(chain)-1]
		seen[canon] = true
		p.steps = append(p.steps, &planStep{canon: canon, id: storedID, node: node, deps: deps})
		return nil
	}

	if err := walk(id); err != nil {
		return nil, err
	}
	return p, nil
}

// valueStore holds resolved values for one Get call, keyed by canonical
// identifier. It is shared between workers during parallel runs.
type valueStore struct {
	mu sync.RWMutex
	m  map[string]any
}

func newValueStore() *valueStore {
	return &valueStore{m: make(map[string]any)}
}

func (s *valueStore) get(canon string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[canon]
	return v, ok
}

func (s *valueStore) put(canon string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[canon] = v
}

// evalNode computes the value of one node given the already-resolved values
// of its dependencies. The switch over node kinds is exhaustive.
func (c *Computer) evalNode(ctx context.Context, id any, n graph.Node, values *valueStore) (any, error) {
	switch n.Kind() {
	case graph.KindLiteral:
		return n.Value(), nil

	case graph.KindAlias:
		canon, err := graph.CanonicalID(n.AliasTarget())
		if err != nil {
			return nil, err
		}
		v, ok := values.get(canon)
		if !ok {
			return nil, &graph.MissingKeyError{IDs: []string{graph.DisplayID(n.AliasTarget())}}
		}
		return v, nil

	case graph.KindTask:
		return c.evalTask(ctx, id, n.Task(), values)

	case graph.KindList:
		out := make([]any, 0, len(n.List()))
		for _, elem := range n.List() {
			v, err := c.evalNode(ctx, id, elem, values)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	return nil, fmt.Errorf("computer: unknown node kind %v at %s", n.Kind(), graph.DisplayID(id))
}

// evalTask resolves the task's arguments, consults the cross-Get cache when
// one is installed, and invokes the operator. Operator failures are wrapped
// with the identifier and operator name.
func (c *Computer) evalTask(ctx context.Context, id any, t *graph.Task, values *valueStore) (any, error) {
	logger := ctxlog.FromContext(ctx)

	op, err := c.reg.Lookup(t.Op)
	if err != nil {
		return nil, err
	}

	args := make([]any, 0, len(t.Args))
	for _, a := range t.Args {
		if !a.IsRef() {
			args = append(args, a.Literal())
			continue
		}
		canon, err := graph.CanonicalID(a.RefID())
		if err != nil {
			return nil, err
		}
		v, ok := values.get(canon)
		if !ok {
			return nil, &graph.MissingKeyError{IDs: []string{graph.DisplayID(a.RefID())}}
		}
		args = append(args, v)
	}

	var fp string
	if c.cache != nil {
		fp = fingerprint(t.Op, args, t.Kwargs)
		if v, ok := c.cache.get(fp); ok {
			logger.Debug("Cache hit.", "key", graph.DisplayID(id), "op", t.Op)
			return v, nil
		}
	}

	logger.Debug("Running task.", "key", graph.DisplayID(id), "op", t.Op)
	v, err := op(ctx, &registry.Call{Key: id, Args: args, Kwargs: t.Kwargs})
	if err != nil {
		return nil, &ComputationError{ID: graph.DisplayID(id), Op: t.Op, Err: err}
	}

	if c.cache != nil {
		c.cache.put(fp, v)
	}
	return v, nil
}

// runSerial executes the plan in order on the calling goroutine.
func (c *Computer) runSerial(ctx context.Context, p *plan, values *valueStore) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		v, err := c.evalNode(ctx, step.id, step.node, values)
		if err != nil {
			return err
		}
		values.put(step.canon, v)
	}
	return nil
}

// Get executes and returns the value of the computation at id, resolving
// only id and its transitive dependencies. A nil id resolves the configured
// default key. Get either fully succeeds or returns an error; results from
// completed sibling branches are discarded on failure.
func (c *Computer) Get(ctx context.Context, id any) (any, error) {
	logger := ctxlog.FromContext(ctx)

	if id == nil {
		if c.defaultKey == nil {
			return nil, ErrNoDefaultKey
		}
		id = c.defaultKey
	}

	checked, err := c.CheckKeys(id)
	if err != nil {
		return nil, err
	}
	id = checked[0]

	p, err := c.buildPlan(id)
	if err != nil {
		return nil, err
	}
	logger.Debug("Execution plan built.",
		"target", graph.DisplayID(id), "steps", len(p.steps), "graph_size", c.graph.Len())

	values := newValueStore()
	if c.workers > 1 && len(p.steps) > 1 {
		err = c.runParallel(ctx, p, values)
	} else {
		err = c.runSerial(ctx, p, values)
	}
	if err != nil {
		return nil, err
	}

	v, ok := values.get(p.target)
	if !ok {
		return nil, &graph.MissingKeyError{IDs: []string{graph.DisplayID(id)}}
	}
	return v, nil
}
